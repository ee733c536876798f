package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/lutong-pos/terminal/internal/backend"
	"github.com/lutong-pos/terminal/internal/enum"
	"github.com/lutong-pos/terminal/internal/handler"
	"github.com/lutong-pos/terminal/internal/kitchen"
	"github.com/lutong-pos/terminal/internal/orders"
	"github.com/lutong-pos/terminal/internal/storage"
)

// --- Mock Transitioner (for the tracker) ---

type mockTransitioner struct {
	transitionFn func(ctx context.Context, orderID int64, status string) (backend.Order, error)
}

func (m *mockTransitioner) Transition(ctx context.Context, orderID int64, status string) (backend.Order, error) {
	if m.transitionFn != nil {
		return m.transitionFn(ctx, orderID, status)
	}
	return backend.Order{ID: orderID, Status: status}, nil
}

func kitchenRouter(t *testing.T, mgr handler.OrderManager, trans kitchen.Transitioner) (chi.Router, *kitchen.Tracker) {
	t.Helper()
	tracker := kitchen.New(storage.NewMemStore(), trans)
	if err := tracker.Hydrate(); err != nil {
		t.Fatalf("hydrate tracker: %v", err)
	}
	r := chi.NewRouter()
	h := handler.NewKitchenHandler(mgr, tracker)
	r.Route("/api/kitchen", h.RegisterRoutes)
	return r, tracker
}

// --- Tests ---

func TestKitchenListOverlaysAndPrunes(t *testing.T) {
	mgr := &mockOrderManager{
		listFn: func(ctx context.Context, status string) ([]backend.Order, error) {
			if status != enum.OrderStatusConfirmed {
				t.Fatalf("got status %q", status)
			}
			return []backend.Order{{ID: 1, Status: status}, {ID: 2, Status: status}}, nil
		},
	}
	r, tracker := kitchenRouter(t, mgr, &mockTransitioner{})

	tracker.StartCooking(2)
	tracker.StartCooking(9) // stale: not in the confirmed list

	rec := doJSON(t, r, http.MethodGet, "/api/kitchen/orders", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}

	var resp []struct {
		ID      int64 `json:"id"`
		Cooking bool  `json:"cooking"`
	}
	decodeBody(t, rec, &resp)
	if len(resp) != 2 {
		t.Fatalf("got %d orders, want 2", len(resp))
	}
	if resp[0].Cooking || !resp[1].Cooking {
		t.Fatalf("unexpected cooking flags: %+v", resp)
	}
	if tracker.Cooking(9) {
		t.Fatal("stale mark must be pruned on refresh")
	}
}

func TestKitchenStartAndCancelCooking(t *testing.T) {
	r, tracker := kitchenRouter(t, &mockOrderManager{}, &mockTransitioner{})

	rec := doJSON(t, r, http.MethodPost, "/api/kitchen/orders/5/cooking", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("got status %d", rec.Code)
	}
	if !tracker.Cooking(5) {
		t.Fatal("order 5 should be cooking")
	}

	rec = doJSON(t, r, http.MethodDelete, "/api/kitchen/orders/5/cooking", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("got status %d", rec.Code)
	}
	if tracker.Cooking(5) {
		t.Fatal("order 5 should not be cooking")
	}
}

func TestKitchenMarkDone(t *testing.T) {
	trans := &mockTransitioner{
		transitionFn: func(ctx context.Context, orderID int64, status string) (backend.Order, error) {
			return backend.Order{ID: orderID, Status: enum.OrderStatusCompleted}, nil
		},
	}
	r, tracker := kitchenRouter(t, &mockOrderManager{}, trans)
	tracker.StartCooking(5)

	rec := doJSON(t, r, http.MethodPost, "/api/kitchen/orders/5/done", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, body %s", rec.Code, rec.Body.String())
	}
	if tracker.Cooking(5) {
		t.Fatal("mark must be removed after completion")
	}
}

func TestKitchenMarkDoneFailure(t *testing.T) {
	trans := &mockTransitioner{
		transitionFn: func(ctx context.Context, orderID int64, status string) (backend.Order, error) {
			return backend.Order{}, &orders.UpdateError{OrderID: orderID, Err: errors.New("backend down")}
		},
	}
	r, tracker := kitchenRouter(t, &mockOrderManager{}, trans)
	tracker.StartCooking(5)

	rec := doJSON(t, r, http.MethodPost, "/api/kitchen/orders/5/done", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("got status %d, want 502", rec.Code)
	}

	var resp struct {
		OrderID int64 `json:"orderId"`
	}
	decodeBody(t, rec, &resp)
	if resp.OrderID != 5 {
		t.Fatalf("response must name the failed order, got %+v", resp)
	}
	if !tracker.Cooking(5) {
		t.Fatal("mark must survive the failed completion")
	}
}
