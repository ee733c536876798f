package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lutong-pos/terminal/internal/backend"
	"github.com/lutong-pos/terminal/internal/cart"
)

// CatalogAPI is the catalog read access cart handlers need for stock
// checks. Satisfied by *backend.Client.
type CatalogAPI interface {
	ListProducts(ctx context.Context) ([]backend.Product, error)
}

// CartHandler exposes the cart store to the ordering screen.
type CartHandler struct {
	api  CatalogAPI
	cart *cart.Store
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(api CatalogAPI, c *cart.Store) *CartHandler {
	return &CartHandler{api: api, cart: c}
}

// RegisterRoutes registers cart endpoints. Mounted at /api/cart.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Post("/items", h.AddItem)
	r.Put("/items/{id}", h.SetQuantity)
	r.Post("/items/{id}/resolve", h.ResolveQuantity)
	r.Delete("/items/{id}", h.RemoveItem)
}

// --- Request / Response types ---

type addItemRequest struct {
	ProductID int64 `json:"productId"`
}

// setQuantityRequest carries the raw input field value. It stays a
// string end to end so the cleared-while-editing state ("") survives
// the trip.
type setQuantityRequest struct {
	Quantity *string `json:"quantity"`
}

type cartLineResponse struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	ImagePath string `json:"imagePath,omitempty"`
	Quantity  string `json:"quantity"`
}

type cartResponse struct {
	Lines []cartLineResponse `json:"lines"`
	Total string             `json:"total"`
}

func (h *CartHandler) cartResponse() cartResponse {
	lines := h.cart.Lines()
	resp := cartResponse{
		Lines: make([]cartLineResponse, len(lines)),
		Total: h.cart.Total().StringFixed(2),
	}
	for i, l := range lines {
		quantity := strconv.Itoa(l.Quantity)
		if l.Pending {
			quantity = ""
		}
		resp.Lines[i] = cartLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price.StringFixed(2),
			ImagePath: l.ImagePath,
			Quantity:  quantity,
		}
	}
	return resp
}

// --- Handlers ---

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cartResponse())
}

// AddItem handles POST /api/cart/items. Stock is checked against the
// freshest catalog the backend will give us; a violation is rejected
// with a specific message and the cart is left untouched.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	product, ok := h.lookupProduct(w, r, req.ProductID)
	if !ok {
		return
	}

	if err := h.cart.Add(product); err != nil {
		writeCartError(w, product, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartResponse())
}

// SetQuantity handles PUT /api/cart/items/{id}.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity is required"})
		return
	}

	product, ok := h.lookupProduct(w, r, id)
	if !ok {
		return
	}

	if err := h.cart.SetQuantity(product, *req.Quantity); err != nil {
		writeCartError(w, product, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartResponse())
}

// ResolveQuantity handles POST /api/cart/items/{id}/resolve, the blur
// event of the quantity field. A still-empty input becomes quantity 1.
func (h *CartHandler) ResolveQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	h.cart.ResolvePending(id)
	writeJSON(w, http.StatusOK, h.cartResponse())
}

// RemoveItem handles DELETE /api/cart/items/{id}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	h.cart.Remove(id)
	writeJSON(w, http.StatusOK, h.cartResponse())
}

// --- Helpers ---

// lookupProduct fetches the catalog and finds one active product. On
// failure it writes the error response and returns ok=false.
func (h *CartHandler) lookupProduct(w http.ResponseWriter, r *http.Request, id int64) (backend.Product, bool) {
	products, err := h.api.ListProducts(r.Context())
	if err != nil {
		log.Printf("ERROR: list products: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "catalog unavailable"})
		return backend.Product{}, false
	}

	for _, p := range products {
		if p.ID == id && p.IsActive {
			return p, true
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
	return backend.Product{}, false
}

func writeCartError(w http.ResponseWriter, p backend.Product, err error) {
	switch {
	case errors.Is(err, cart.ErrOutOfStock):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "product " + p.Name + " is out of stock",
		})
	case errors.Is(err, cart.ErrQuantityExceedsStock):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "cannot order more than " + strconv.Itoa(p.Stock) + " items of " + p.Name,
		})
	case errors.Is(err, cart.ErrInvalidQuantity):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must be a whole number"})
	case errors.Is(err, cart.ErrNotInCart):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product is not in the cart"})
	default:
		log.Printf("ERROR: cart update: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
