package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lutong-pos/terminal/internal/backend"
	"github.com/lutong-pos/terminal/internal/cart"
)

// ProductAPI is the slice of the backend client needed by product
// handlers. Satisfied by *backend.Client; narrow interface for
// testability.
type ProductAPI interface {
	ListProducts(ctx context.Context) ([]backend.Product, error)
	CreateProduct(ctx context.Context, in backend.ProductInput) (backend.Product, error)
	UpdateProduct(ctx context.Context, id int64, in backend.ProductInput) (backend.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// ProductsHandler proxies the catalog and keeps the cart reconciled
// with every refresh.
type ProductsHandler struct {
	api  ProductAPI
	cart *cart.Store
}

// NewProductsHandler creates a new ProductsHandler.
func NewProductsHandler(api ProductAPI, c *cart.Store) *ProductsHandler {
	return &ProductsHandler{api: api, cart: c}
}

// RegisterRoutes registers catalog endpoints. Mounted at /api/products.
func (h *ProductsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type productResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Stock     int    `json:"stock"`
	IsActive  bool   `json:"isActive"`
	ImagePath string `json:"imagePath,omitempty"`
}

func toProductResponse(p backend.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price.StringFixed(2),
		Stock:     p.Stock,
		IsActive:  p.IsActive,
		ImagePath: p.ImagePath,
	}
}

type productRequest struct {
	Name      *string `json:"name"`
	Price     *string `json:"price"`
	Stock     *int    `json:"stock"`
	ImagePath *string `json:"imagePath"`
}

func (req productRequest) toInput() (backend.ProductInput, error) {
	in := backend.ProductInput{
		Name:      req.Name,
		Stock:     req.Stock,
		ImagePath: req.ImagePath,
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil || price.IsNegative() {
			return backend.ProductInput{}, errors.New("price must be a non-negative number")
		}
		in.Price = &price
	}
	if req.Stock != nil && *req.Stock < 0 {
		return backend.ProductInput{}, errors.New("stock must be non-negative")
	}
	return in, nil
}

// --- Handlers ---

// List handles GET /api/products. With ?active=true only sellable
// products are returned (the ordering screen's view). Every refresh
// also reconciles the cart against the active set, so lines for
// deleted or deactivated products are pruned before they can be
// submitted.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.api.ListProducts(r.Context())
	if err != nil {
		log.Printf("ERROR: list products: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "catalog unavailable"})
		return
	}

	active := products[:0:0]
	for _, p := range products {
		if p.IsActive {
			active = append(active, p)
		}
	}
	h.cart.Reconcile(active)

	if r.URL.Query().Get("active") == "true" {
		products = active
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /api/products.
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == nil || *req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Price == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price is required"})
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	p, err := h.api.CreateProduct(r.Context(), in)
	if err != nil {
		log.Printf("ERROR: create product: %v", err)
		writeJSON(w, backendStatus(err), map[string]string{"error": "could not create product"})
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

// Update handles PATCH /api/products/{id}.
func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	p, err := h.api.UpdateProduct(r.Context(), id, in)
	if err != nil {
		log.Printf("ERROR: update product %d: %v", id, err)
		writeJSON(w, backendStatus(err), map[string]string{"error": "could not update product"})
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

// Delete handles DELETE /api/products/{id}. The cart line for a
// deleted product disappears on the next catalog refresh.
func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	if err := h.api.DeleteProduct(r.Context(), id); err != nil {
		log.Printf("ERROR: delete product %d: %v", id, err)
		writeJSON(w, backendStatus(err), map[string]string{"error": "could not delete product"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: encode response: %v", err)
	}
}

// backendStatus maps a backend client error to a facade status: the
// backend's own 4xx verdicts pass through, everything else is a bad
// gateway.
func backendStatus(err error) int {
	var se *backend.StatusError
	if errors.As(err, &se) && se.Code >= 400 && se.Code < 500 {
		return se.Code
	}
	return http.StatusBadGateway
}
