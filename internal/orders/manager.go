// Package orders moves an order through its lifecycle. The backend is
// authoritative for every status; the manager's job is to never issue a
// request the lifecycle graph does not allow, and to keep local state
// (the cart) consistent with what the backend has accepted.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/lutong-pos/terminal/internal/backend"
	"github.com/lutong-pos/terminal/internal/cart"
	"github.com/lutong-pos/terminal/internal/enum"
)

// Errors returned by the manager.
var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTable      = errors.New("table number must be a positive integer")
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrOrderRejected     = errors.New("backend rejected the order")
)

// UpdateError is a failed status update; it names the order so the
// caller can retry or report it.
type UpdateError struct {
	OrderID int64
	Err     error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("update order %d: %v", e.OrderID, e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }

// API is the slice of the backend client the manager needs.
// Satisfied by *backend.Client; narrow interface for testability.
type API interface {
	CreateOrder(ctx context.Context, req backend.CreateOrderRequest) (backend.Order, error)
	ListOrdersByStatus(ctx context.Context, status string) ([]backend.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) (backend.Order, error)
}

// Notifier receives lifecycle events for live screen updates.
// Satisfied by *ws.Hub.
type Notifier interface {
	OrderEvent(eventType string, order backend.Order)
}

// Manager coordinates order submission and status transitions.
type Manager struct {
	api      API
	cart     *cart.Store
	notifier Notifier
}

// New creates a Manager. notifier may be nil.
func New(api API, c *cart.Store, notifier Notifier) *Manager {
	return &Manager{api: api, cart: c, notifier: notifier}
}

// Submit turns the current cart into a new order at the given table.
// Validation failures return before any backend call. The cart is
// cleared only after the backend has accepted the order; a rejected or
// failed submit leaves it untouched for the retry.
func (m *Manager) Submit(ctx context.Context, tableRaw string) (backend.Order, error) {
	lines := m.cart.Lines()
	if len(lines) == 0 {
		return backend.Order{}, ErrEmptyCart
	}

	tableID, err := strconv.Atoi(tableRaw)
	if err != nil || tableID <= 0 {
		return backend.Order{}, ErrInvalidTable
	}

	// A quantity field still mid-edit resolves to 1, same as ending the
	// edit by hand.
	for _, l := range lines {
		if l.Pending {
			m.cart.ResolvePending(l.ProductID)
		}
	}
	lines = m.cart.Lines()

	items := make([]backend.CreateOrderItem, len(lines))
	for i, l := range lines {
		items[i] = backend.CreateOrderItem{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	order, err := m.api.CreateOrder(ctx, backend.CreateOrderRequest{
		TableID: tableID,
		Items:   items,
	})
	if err != nil {
		var se *backend.StatusError
		if errors.As(err, &se) {
			return backend.Order{}, fmt.Errorf("%w: %v", ErrOrderRejected, err)
		}
		return backend.Order{}, fmt.Errorf("create order: %w", err)
	}

	m.cart.Clear()
	m.notify(enum.EventOrderCreated, order)
	return order, nil
}

// ListByStatus returns the backend's view of orders in one status. No
// client-side filtering beyond the status itself.
func (m *Manager) ListByStatus(ctx context.Context, status string) ([]backend.Order, error) {
	if !enum.ValidStatus(status) {
		return nil, ErrUnknownStatus
	}
	orders, err := m.api.ListOrdersByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list %s orders: %w", status, err)
	}
	return orders, nil
}

// Transition moves one order forward. Only Completed and Paid are ever
// requested; the lifecycle has no backward edges and no cancellation.
// Failures carry the order id so the caller can retry on user action.
func (m *Manager) Transition(ctx context.Context, orderID int64, newStatus string) (backend.Order, error) {
	switch newStatus {
	case enum.OrderStatusCompleted, enum.OrderStatusPaid:
	default:
		return backend.Order{}, ErrInvalidTransition
	}

	order, err := m.api.UpdateOrderStatus(ctx, orderID, newStatus)
	if err != nil {
		return backend.Order{}, &UpdateError{OrderID: orderID, Err: err}
	}

	m.notify(enum.EventOrderUpdated, order)
	return order, nil
}

func (m *Manager) notify(eventType string, order backend.Order) {
	if m.notifier != nil {
		m.notifier.OrderEvent(eventType, order)
	}
}
