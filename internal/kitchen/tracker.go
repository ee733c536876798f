// Package kitchen layers a local "being cooked" marker over the
// backend's Confirmed order list. The marker has no server-side
// backing: it only tells the kitchen screen which tickets a cook has
// picked up, and it must never outlive the order's Confirmed status.
package kitchen

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/lutong-pos/terminal/internal/backend"
	"github.com/lutong-pos/terminal/internal/enum"
	"github.com/lutong-pos/terminal/internal/storage"
)

// Transitioner is the slice of the order manager the tracker needs.
type Transitioner interface {
	Transition(ctx context.Context, orderID int64, newStatus string) (backend.Order, error)
}

// TrackedOrder is a Confirmed order plus its cooking flag.
type TrackedOrder struct {
	backend.Order
	Cooking bool `json:"cooking"`
}

// Tracker owns the cooking mark set. Create with New, call Hydrate at
// startup.
type Tracker struct {
	mu       sync.Mutex
	marks    map[int64]bool
	hydrated bool
	storage  storage.Store
	mgr      Transitioner
}

// New creates a Tracker.
func New(st storage.Store, mgr Transitioner) *Tracker {
	return &Tracker{marks: make(map[int64]bool), storage: st, mgr: mgr}
}

// Hydrate loads persisted marks. Marks for orders that are no longer
// Confirmed are harmless here; the next Prune drops them.
func (t *Tracker) Hydrate() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var ids []int64
	found, err := t.storage.Load(enum.StorageKeyCooking, &ids)
	if err != nil {
		log.Printf("ERROR: load cooking marks: %v", err)
	}
	if found && err == nil {
		for _, id := range ids {
			t.marks[id] = true
		}
	}
	t.hydrated = true
	return err
}

// StartCooking marks an order as being prepared. Idempotent.
func (t *Tracker) StartCooking(orderID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.marks[orderID] {
		t.marks[orderID] = true
		t.persist()
	}
}

// CancelCooking removes the mark. Idempotent.
func (t *Tracker) CancelCooking(orderID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.marks[orderID] {
		delete(t.marks, orderID)
		t.persist()
	}
}

// MarkDone completes the order on the backend, then drops the mark. On
// failure the mark stays so the ticket is still shown as in progress.
func (t *Tracker) MarkDone(ctx context.Context, orderID int64) (backend.Order, error) {
	order, err := t.mgr.Transition(ctx, orderID, enum.OrderStatusCompleted)
	if err != nil {
		return backend.Order{}, err
	}
	t.CancelCooking(orderID)
	return order, nil
}

// Cooking reports whether the order carries a mark.
func (t *Tracker) Cooking(orderID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.marks[orderID]
}

// Prune drops marks that reference orders missing from the Confirmed
// list: they transitioned or disappeared, and a stale mark must not
// resurrect a badge for them. Called on every list refresh.
func (t *Tracker) Prune(confirmed []backend.Order) {
	t.mu.Lock()
	defer t.mu.Unlock()

	present := make(map[int64]bool, len(confirmed))
	for _, o := range confirmed {
		present[o.ID] = true
	}

	dropped := false
	for id := range t.marks {
		if !present[id] {
			delete(t.marks, id)
			dropped = true
		}
	}
	if dropped {
		t.persist()
	}
}

// Overlay returns the Confirmed list annotated with cooking flags,
// pruning stale marks on the way.
func (t *Tracker) Overlay(confirmed []backend.Order) []TrackedOrder {
	t.Prune(confirmed)

	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]TrackedOrder, len(confirmed))
	for i, o := range confirmed {
		out[i] = TrackedOrder{Order: o, Cooking: t.marks[o.ID]}
	}
	return out
}

// persist writes the mark set as a sorted id list. Caller holds mu.
// Fire-and-forget, same policy as the cart.
func (t *Tracker) persist() {
	if !t.hydrated {
		return
	}
	ids := make([]int64, 0, len(t.marks))
	for id := range t.marks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if err := t.storage.Save(enum.StorageKeyCooking, ids); err != nil {
		log.Printf("ERROR: save cooking marks: %v", err)
	}
}
