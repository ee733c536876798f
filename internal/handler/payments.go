package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lutong-pos/terminal/internal/backend"
	"github.com/lutong-pos/terminal/internal/enum"
	"github.com/lutong-pos/terminal/internal/payment"
)

// PaymentManager is the slice of the lifecycle manager payment handlers
// need. Satisfied by *orders.Manager.
type PaymentManager interface {
	ListByStatus(ctx context.Context, status string) ([]backend.Order, error)
	Transition(ctx context.Context, orderID int64, newStatus string) (backend.Order, error)
}

// PaymentsHandler exposes per-table settlement of Completed orders.
type PaymentsHandler struct {
	mgr PaymentManager
}

// NewPaymentsHandler creates a new PaymentsHandler.
func NewPaymentsHandler(mgr PaymentManager) *PaymentsHandler {
	return &PaymentsHandler{mgr: mgr}
}

// RegisterRoutes registers payment endpoints. Mounted at /api/payments.
func (h *PaymentsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tables", h.ListTables)
	r.Post("/tables/{key}", h.PayTable)
}

// --- Response types ---

type tableBucketResponse struct {
	Key    string          `json:"key"`
	TableID *int           `json:"tableId"`
	Orders []orderResponse `json:"orders"`
	Total  string          `json:"total"`
}

func toBucketResponse(b payment.Bucket) tableBucketResponse {
	return tableBucketResponse{
		Key:     b.Key,
		TableID: b.TableID,
		Orders:  toOrderResponses(b.Orders),
		Total:   payment.TableTotal(b).StringFixed(2),
	}
}

// --- Handlers ---

// ListTables handles GET /api/payments/tables: Completed orders grouped
// by table with the amount due per table.
func (h *PaymentsHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	completed, err := h.mgr.ListByStatus(r.Context(), enum.OrderStatusCompleted)
	if err != nil {
		log.Printf("ERROR: list completed orders: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to load orders"})
		return
	}

	buckets := payment.GroupByTable(completed)
	resp := make([]tableBucketResponse, len(buckets))
	for i, b := range buckets {
		resp[i] = toBucketResponse(b)
	}
	writeJSON(w, http.StatusOK, resp)
}

// PayTable handles POST /api/payments/tables/{key}. The bucket is
// rebuilt from a fresh Completed list so orders settled from another
// screen since the last refresh are not paid twice. A partial failure
// reports the orders left unpaid; the rest stand as paid.
func (h *PaymentsHandler) PayTable(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	completed, err := h.mgr.ListByStatus(r.Context(), enum.OrderStatusCompleted)
	if err != nil {
		log.Printf("ERROR: list completed orders: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to load orders"})
		return
	}

	buckets := payment.GroupByTable(completed)
	var bucket *payment.Bucket
	for i := range buckets {
		if buckets[i].Key == key {
			bucket = &buckets[i]
			break
		}
	}
	if bucket == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no completed orders for this table"})
		return
	}

	if err := payment.PayTable(r.Context(), h.mgr, *bucket); err != nil {
		var pe *payment.PartialError
		if errors.As(err, &pe) {
			log.Printf("ERROR: pay table %s: %v", key, pe)
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":    "some orders were not marked paid",
				"failed":   pe.Failed,
				"retryKey": key,
			})
			return
		}
		log.Printf("ERROR: pay table %s: %v", key, err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "payment failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"paid":  len(bucket.Orders),
		"total": payment.TableTotal(*bucket).StringFixed(2),
	})
}
