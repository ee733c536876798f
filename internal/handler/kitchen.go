package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lutong-pos/terminal/internal/enum"
	"github.com/lutong-pos/terminal/internal/kitchen"
	"github.com/lutong-pos/terminal/internal/orders"
)

// KitchenHandler exposes the Confirmed order queue with the cooking
// overlay.
type KitchenHandler struct {
	mgr     OrderManager
	tracker *kitchen.Tracker
}

// NewKitchenHandler creates a new KitchenHandler.
func NewKitchenHandler(mgr OrderManager, tracker *kitchen.Tracker) *KitchenHandler {
	return &KitchenHandler{mgr: mgr, tracker: tracker}
}

// RegisterRoutes registers kitchen endpoints. Mounted at /api/kitchen.
func (h *KitchenHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.List)
	r.Post("/orders/{id}/cooking", h.StartCooking)
	r.Delete("/orders/{id}/cooking", h.CancelCooking)
	r.Post("/orders/{id}/done", h.MarkDone)
}

// --- Response types ---

type kitchenOrderResponse struct {
	orderResponse
	Cooking bool `json:"cooking"`
}

// --- Handlers ---

// List handles GET /api/kitchen/orders. Each refresh prunes cooking
// marks for orders no longer in the Confirmed list.
func (h *KitchenHandler) List(w http.ResponseWriter, r *http.Request) {
	confirmed, err := h.mgr.ListByStatus(r.Context(), enum.OrderStatusConfirmed)
	if err != nil {
		log.Printf("ERROR: list kitchen orders: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to load orders"})
		return
	}

	tracked := h.tracker.Overlay(confirmed)
	resp := make([]kitchenOrderResponse, len(tracked))
	for i, t := range tracked {
		resp[i] = kitchenOrderResponse{
			orderResponse: toOrderResponse(t.Order),
			Cooking:       t.Cooking,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// StartCooking handles POST /api/kitchen/orders/{id}/cooking.
func (h *KitchenHandler) StartCooking(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}
	h.tracker.StartCooking(id)
	w.WriteHeader(http.StatusNoContent)
}

// CancelCooking handles DELETE /api/kitchen/orders/{id}/cooking.
func (h *KitchenHandler) CancelCooking(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}
	h.tracker.CancelCooking(id)
	w.WriteHeader(http.StatusNoContent)
}

// MarkDone handles POST /api/kitchen/orders/{id}/done. On failure the
// cooking mark stays so the ticket still reads "in progress".
func (h *KitchenHandler) MarkDone(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	order, err := h.tracker.MarkDone(r.Context(), id)
	if err != nil {
		var ue *orders.UpdateError
		if errors.As(err, &ue) {
			log.Printf("ERROR: mark done: %v", ue)
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":   "failed to update order status",
				"orderId": ue.OrderID,
			})
			return
		}
		if errors.Is(err, orders.ErrInvalidTransition) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order cannot be completed"})
			return
		}
		log.Printf("ERROR: mark done: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// --- Helpers ---

func orderIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return 0, false
	}
	return id, true
}
