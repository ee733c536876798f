package backend

import "github.com/shopspring/decimal"

// Product is the catalog entry as the backend serves it. The terminal
// treats it as a read-only snapshot; stock and isActive are only as
// fresh as the last refresh.
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	IsActive  bool            `json:"isActive"`
	ImagePath string          `json:"imagePath"`
}

// Order is backend-owned. Total is authoritative: the terminal never
// recomputes it, only displays and aggregates it.
type Order struct {
	ID      int64           `json:"id"`
	TableID *int            `json:"tableId"`
	Status  string          `json:"orderStatus"`
	Items   []OrderItem     `json:"orderItems"`
	Total   decimal.Decimal `json:"total"`
}

// OrderItem carries name and unit price snapshots taken at order time,
// so later catalog edits don't rewrite history.
type OrderItem struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// CreateOrderItem is one (product, quantity) pair in a creation request.
type CreateOrderItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// CreateOrderRequest is the order creation payload.
type CreateOrderRequest struct {
	TableID int               `json:"tableId"`
	Items   []CreateOrderItem `json:"items"`
}
