package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lutong-pos/terminal/internal/enum"
	"github.com/lutong-pos/terminal/internal/reports"
)

// ReportsHandler serves the sales report screen.
type ReportsHandler struct {
	mgr OrderManager
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(mgr OrderManager) *ReportsHandler {
	return &ReportsHandler{mgr: mgr}
}

// RegisterRoutes registers report endpoints. Mounted at /api/reports.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Stats)
}

// --- Response types ---

type statsResponse struct {
	TotalOrders       int             `json:"totalOrders"`
	TotalRevenue      string          `json:"totalRevenue"`
	TotalProfit       string          `json:"totalProfit"`
	MostBoughtProduct string          `json:"mostBoughtProduct"`
	MostUsedTable     string          `json:"mostUsedTable"`
	ProductData       []reports.Slice `json:"productData"`
	TableData         []reports.Slice `json:"tableData"`
	Orders            []orderResponse `json:"orders"`
}

// --- Handlers ---

// Stats handles GET /api/reports: aggregate statistics plus the paid
// order list the screen renders below the charts.
func (h *ReportsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	paid, err := h.mgr.ListByStatus(r.Context(), enum.OrderStatusPaid)
	if err != nil {
		log.Printf("ERROR: list paid orders: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to load paid orders"})
		return
	}

	stats := reports.Compute(paid)
	writeJSON(w, http.StatusOK, statsResponse{
		TotalOrders:       stats.TotalOrders,
		TotalRevenue:      stats.TotalRevenue.StringFixed(2),
		TotalProfit:       stats.TotalProfit.StringFixed(2),
		MostBoughtProduct: stats.MostBoughtProduct,
		MostUsedTable:     stats.MostUsedTable,
		ProductData:       stats.ProductData,
		TableData:         stats.TableData,
		Orders:            toOrderResponses(paid),
	})
}
