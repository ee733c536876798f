// Package cart holds the in-progress order for the ordering screen.
// Lines live in memory and every mutation mirrors the full snapshot to
// durable local storage, so an accidental reload doesn't lose the
// half-built order.
package cart

import (
	"errors"
	"log"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/lutong-pos/terminal/internal/backend"
	"github.com/lutong-pos/terminal/internal/enum"
	"github.com/lutong-pos/terminal/internal/storage"
)

// Errors returned by the cart store.
var (
	ErrOutOfStock           = errors.New("product is out of stock")
	ErrQuantityExceedsStock = errors.New("quantity exceeds available stock")
	ErrInvalidQuantity      = errors.New("quantity must be a whole number")
	ErrNotInCart            = errors.New("product is not in the cart")
)

// Line is one cart entry. Name, Price and ImagePath are denormalized at
// add time so the line still renders if the catalog entry changes.
// Pending marks the transient "input field cleared while editing"
// state: the line stays, contributes 0 to the total, and resolves to
// quantity 1 if still empty when editing ends.
type Line struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImagePath string          `json:"imagePath"`
	Quantity  int             `json:"quantity"`
	Pending   bool            `json:"pending,omitempty"`
}

// Store is the cart for the order in progress. Create with New, then
// call Hydrate before the first mutation; persists are skipped until
// hydration so an empty startup state cannot clobber the stored one.
type Store struct {
	mu       sync.Mutex
	lines    []Line
	hydrated bool
	storage  storage.Store
}

// New creates a Store backed by the given storage.
func New(st storage.Store) *Store {
	return &Store{storage: st}
}

// Hydrate loads the persisted snapshot. A missing record is an empty
// cart. Safe to call once at startup; mutations before Hydrate are
// accepted but not persisted.
func (s *Store) Hydrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lines []Line
	found, err := s.storage.Load(enum.StorageKeyCart, &lines)
	if err != nil {
		// Treat a corrupt record like a missing one; the alternative is
		// a cart that can never be mutated again.
		log.Printf("ERROR: load cart: %v", err)
	}
	if found && err == nil {
		s.lines = lines
	}
	s.hydrated = true
	return err
}

// Add puts one unit of p in the cart, or bumps an existing line by one.
// Fails without mutating when stock does not cover the result.
func (s *Store) Add(p backend.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.find(p.ID); i >= 0 {
		q := s.effectiveQuantity(i)
		if q+1 > p.Stock {
			return ErrQuantityExceedsStock
		}
		s.lines[i].Quantity = q + 1
		s.lines[i].Pending = false
		s.persist()
		return nil
	}

	if p.Stock <= 0 {
		return ErrOutOfStock
	}
	s.lines = append(s.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		ImagePath: p.ImagePath,
		Quantity:  1,
	})
	s.persist()
	return nil
}

// SetQuantity applies a raw quantity input for p's line. An empty raw
// value parks the line in the pending state instead of collapsing it to
// zero mid-edit. A parsed value above p.Stock is rejected outright,
// leaving the previous quantity intact rather than clamping. A value
// of zero or less removes the line.
func (s *Store) SetQuantity(p backend.Product, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(p.ID)
	if i < 0 {
		return ErrNotInCart
	}

	if raw == "" {
		s.lines[i].Quantity = 0
		s.lines[i].Pending = true
		s.persist()
		return nil
	}

	q, err := strconv.Atoi(raw)
	if err != nil {
		return ErrInvalidQuantity
	}
	if q > p.Stock {
		return ErrQuantityExceedsStock
	}
	if q <= 0 {
		s.removeAt(i)
		s.persist()
		return nil
	}

	s.lines[i].Quantity = q
	s.lines[i].Pending = false
	s.persist()
	return nil
}

// ResolvePending ends the edit on a line: if its quantity input is
// still empty, it becomes 1. Mirrors the blur behavior of the quantity
// field. No-op for lines that are not pending.
func (s *Store) ResolvePending(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(productID)
	if i < 0 || !s.lines[i].Pending {
		return
	}
	s.lines[i].Quantity = 1
	s.lines[i].Pending = false
	s.persist()
}

// Remove drops the line for productID if present.
func (s *Store) Remove(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.find(productID); i >= 0 {
		s.removeAt(i)
		s.persist()
	}
}

// Reconcile drops lines whose product no longer appears in the given
// catalog list (deleted or deactivated upstream). Runs on every catalog
// refresh; applying it twice with the same list changes nothing.
func (s *Store) Reconcile(products []backend.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := make(map[int64]bool, len(products))
	for _, p := range products {
		known[p.ID] = true
	}

	kept := s.lines[:0]
	dropped := false
	for _, l := range s.lines {
		if known[l.ProductID] {
			kept = append(kept, l)
		} else {
			dropped = true
		}
	}
	s.lines = kept
	if dropped {
		s.persist()
	}
}

// Total is the sum of price × quantity over all lines. Pending lines
// count as zero.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for i, l := range s.lines {
		q := s.effectiveQuantity(i)
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(q))))
	}
	return total
}

// Lines returns a copy of the cart contents in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Clear empties the cart and removes the persisted record. Called after
// the backend has accepted the order, never before.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	if err := s.storage.Delete(enum.StorageKeyCart); err != nil {
		log.Printf("ERROR: clear cart storage: %v", err)
	}
}

// --- internal, caller must hold mu ---

func (s *Store) find(productID int64) int {
	for i, l := range s.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) effectiveQuantity(i int) int {
	if s.lines[i].Pending {
		return 0
	}
	return s.lines[i].Quantity
}

func (s *Store) removeAt(i int) {
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
}

// persist mirrors the snapshot to storage. Fire-and-forget: a failed
// save is logged and the in-memory state stays authoritative. Gated on
// hydration so the initial empty state cannot overwrite a stored cart.
func (s *Store) persist() {
	if !s.hydrated {
		return
	}
	if err := s.storage.Save(enum.StorageKeyCart, s.lines); err != nil {
		log.Printf("ERROR: save cart: %v", err)
	}
}
