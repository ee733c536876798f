package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lutong-pos/terminal/internal/backend"
	"github.com/lutong-pos/terminal/internal/enum"
	"github.com/lutong-pos/terminal/internal/orders"
)

// OrderManager is the slice of the lifecycle manager order handlers
// need. Satisfied by *orders.Manager.
type OrderManager interface {
	Submit(ctx context.Context, tableRaw string) (backend.Order, error)
	ListByStatus(ctx context.Context, status string) ([]backend.Order, error)
}

// OrdersHandler exposes order submission and listing.
type OrdersHandler struct {
	mgr OrderManager
}

// NewOrdersHandler creates a new OrdersHandler.
func NewOrdersHandler(mgr OrderManager) *OrdersHandler {
	return &OrdersHandler{mgr: mgr}
}

// RegisterRoutes registers order endpoints. Mounted at /api/orders.
func (h *OrdersHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Submit)
	r.Get("/", h.List)
}

// --- Request / Response types ---

// submitOrderRequest carries the table number as typed, so "abc" and
// "0" can be rejected with a message instead of a decode error.
type submitOrderRequest struct {
	Table string `json:"table"`
}

type orderResponse struct {
	ID      int64               `json:"id"`
	TableID *int                `json:"tableId"`
	Status  string              `json:"status"`
	Items   []orderItemResponse `json:"items"`
	Total   string              `json:"total"`
}

type orderItemResponse struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	LineTotal   string `json:"lineTotal"`
}

func toOrderResponse(o backend.Order) orderResponse {
	resp := orderResponse{
		ID:      o.ID,
		TableID: o.TableID,
		Status:  o.Status,
		Items:   make([]orderItemResponse, len(o.Items)),
		Total:   o.Total.StringFixed(2),
	}
	for i, item := range o.Items {
		resp.Items[i] = orderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			LineTotal:   item.LineTotal.StringFixed(2),
		}
	}
	return resp
}

func toOrderResponses(list []backend.Order) []orderResponse {
	resp := make([]orderResponse, len(list))
	for i, o := range list {
		resp[i] = toOrderResponse(o)
	}
	return resp
}

// --- Handlers ---

// Submit handles POST /api/orders: the Confirm Order button.
func (h *OrdersHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.mgr.Submit(r.Context(), req.Table)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, toOrderResponse(order))
	case errors.Is(err, orders.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cart is empty"})
	case errors.Is(err, orders.ErrInvalidTable):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "please enter a valid table number"})
	case errors.Is(err, orders.ErrOrderRejected):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "order was rejected, check stock and try again"})
	default:
		log.Printf("ERROR: submit order: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to place order, please try again"})
	}
}

// List handles GET /api/orders?status=Confirmed.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = enum.OrderStatusConfirmed
	}

	list, err := h.mgr.ListByStatus(r.Context(), status)
	if err != nil {
		if errors.Is(err, orders.ErrUnknownStatus) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status"})
			return
		}
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to load orders"})
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(list))
}
