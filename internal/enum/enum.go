package enum

// ── Order lifecycle (backend owned, forward-only) ──

const (
	OrderStatusPending   = "Pending"
	OrderStatusConfirmed = "Confirmed"
	OrderStatusCompleted = "Completed"
	OrderStatusPaid      = "Paid"
)

// ── WebSocket event types pushed to screens ──

const (
	EventOrderCreated = "order_created"
	EventOrderUpdated = "order_updated"
)

// ── Local storage keys (one durable JSON record each) ──

const (
	StorageKeyCart    = "cart"
	StorageKeyCooking = "cooking"
)

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed,
		OrderStatusCompleted, OrderStatusPaid:
		return true
	}
	return false
}

// NextStatus returns the only status an order in the given status may
// move to. The lifecycle is linear: Confirmed → Completed → Paid.
// Returns "" when there is no forward transition.
func NextStatus(s string) string {
	switch s {
	case OrderStatusConfirmed:
		return OrderStatusCompleted
	case OrderStatusCompleted:
		return OrderStatusPaid
	}
	return ""
}
