package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lutong-pos/terminal/internal/backend"
	"github.com/lutong-pos/terminal/internal/enum"
	"github.com/lutong-pos/terminal/internal/handler"
)

func reportsRouter(mgr handler.OrderManager) chi.Router {
	r := chi.NewRouter()
	h := handler.NewReportsHandler(mgr)
	r.Route("/api/reports", h.RegisterRoutes)
	return r
}

func TestReportsStats(t *testing.T) {
	t2 := 2
	mgr := &mockOrderManager{
		listFn: func(ctx context.Context, status string) ([]backend.Order, error) {
			if status != enum.OrderStatusPaid {
				t.Fatalf("got status %q, want Paid", status)
			}
			return []backend.Order{
				{
					ID:      1,
					TableID: &t2,
					Status:  enum.OrderStatusPaid,
					Total:   decimal.NewFromInt(100),
					Items: []backend.OrderItem{
						{ID: 1, ProductID: 5, ProductName: "Burger", Quantity: 2, UnitPrice: decimal.NewFromInt(50), LineTotal: decimal.NewFromInt(100)},
					},
				},
			}, nil
		},
	}

	rec := doJSON(t, reportsRouter(mgr), http.MethodGet, "/api/reports", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}

	var resp struct {
		TotalOrders       int    `json:"totalOrders"`
		TotalRevenue      string `json:"totalRevenue"`
		TotalProfit       string `json:"totalProfit"`
		MostBoughtProduct string `json:"mostBoughtProduct"`
		MostUsedTable     string `json:"mostUsedTable"`
		ProductData       []struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		} `json:"productData"`
		Orders []struct {
			ID    int64  `json:"id"`
			Total string `json:"total"`
		} `json:"orders"`
	}
	decodeBody(t, rec, &resp)

	if resp.TotalOrders != 1 {
		t.Fatalf("totalOrders = %d", resp.TotalOrders)
	}
	if resp.TotalRevenue != "100.00" || resp.TotalProfit != "30.00" {
		t.Fatalf("revenue %s profit %s", resp.TotalRevenue, resp.TotalProfit)
	}
	if resp.MostBoughtProduct != "Burger" || resp.MostUsedTable != "2" {
		t.Fatalf("top product %q, top table %q", resp.MostBoughtProduct, resp.MostUsedTable)
	}
	if len(resp.ProductData) != 1 || resp.ProductData[0].Name != "Burger" || resp.ProductData[0].Value != 2 {
		t.Fatalf("productData = %+v", resp.ProductData)
	}
	if len(resp.Orders) != 1 || resp.Orders[0].Total != "100.00" {
		t.Fatalf("orders = %+v", resp.Orders)
	}
}

func TestReportsStatsEmpty(t *testing.T) {
	mgr := &mockOrderManager{
		listFn: func(ctx context.Context, status string) ([]backend.Order, error) {
			return nil, nil
		},
	}

	rec := doJSON(t, reportsRouter(mgr), http.MethodGet, "/api/reports", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}

	var resp struct {
		TotalOrders       int    `json:"totalOrders"`
		TotalRevenue      string `json:"totalRevenue"`
		MostBoughtProduct string `json:"mostBoughtProduct"`
		MostUsedTable     string `json:"mostUsedTable"`
	}
	decodeBody(t, rec, &resp)

	if resp.TotalOrders != 0 || resp.TotalRevenue != "0.00" {
		t.Fatalf("got %+v", resp)
	}
	if resp.MostBoughtProduct != "-" || resp.MostUsedTable != "-" {
		t.Fatalf("empty report placeholders wrong: %+v", resp)
	}
}

func TestReportsStatsBackendDown(t *testing.T) {
	mgr := &mockOrderManager{
		listFn: func(ctx context.Context, status string) ([]backend.Order, error) {
			return nil, errors.New("connection refused")
		},
	}

	rec := doJSON(t, reportsRouter(mgr), http.MethodGet, "/api/reports", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("got status %d, want 502", rec.Code)
	}
}
