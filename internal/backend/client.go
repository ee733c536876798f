// Package backend is the typed HTTP client for the catalog/order
// service. It owns no business rules: every method is a thin request
// wrapper, and the backend stays the sole authority on stock, totals
// and order state.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatusError is a non-2xx reply from the backend.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Body)
}

// Client talks to the catalog/order backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given base URL, e.g. "http://pos-api:5000/api".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// ListProducts returns the full catalog, active or not. Callers filter.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, "", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateOrder submits a new order. The Idempotency-Key header carries a
// fresh UUID so a retry after a timed-out create cannot double-book.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/orders", req, uuid.NewString(), &order); err != nil {
		return Order{}, err
	}
	return order, nil
}

// ListOrdersByStatus returns orders in the given lifecycle status.
func (c *Client) ListOrdersByStatus(ctx context.Context, status string) ([]Order, error) {
	var orders []Order
	path := "/orders/status/" + status
	if err := c.do(ctx, http.MethodGet, path, nil, "", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus patches a single order's status.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (Order, error) {
	body := struct {
		OrderStatus string `json:"orderStatus"`
	}{OrderStatus: status}

	var order Order
	path := fmt.Sprintf("/orders/%d", orderID)
	if err := c.do(ctx, http.MethodPatch, path, body, "", &order); err != nil {
		return Order{}, err
	}
	return order, nil
}

// --- Catalog management passthrough (product screen) ---

// ProductInput is the writable subset of a product. Nil fields are
// omitted so the backend treats them as "unchanged" on update; Stock is
// a pointer so an explicit zero still serializes.
type ProductInput struct {
	Name      *string          `json:"name,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Stock     *int             `json:"stock,omitempty"`
	ImagePath *string          `json:"imagePath,omitempty"`
}

// CreateProduct adds a catalog entry.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodPost, "/products", in, "", &p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// UpdateProduct patches a catalog entry.
func (c *Client) UpdateProduct(ctx context.Context, id int64, in ProductInput) (Product, error) {
	var p Product
	path := fmt.Sprintf("/products/%d", id)
	if err := c.do(ctx, http.MethodPatch, path, in, "", &p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// DeleteProduct removes a catalog entry.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, "", nil)
}

// do issues one request and decodes the JSON reply into out (skipped
// when out is nil). Non-2xx replies become *StatusError.
func (c *Client) do(ctx context.Context, method, path string, body any, idempotencyKey string, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
