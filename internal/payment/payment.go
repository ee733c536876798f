// Package payment settles a table's Completed orders in one action.
// Grouping and totals are pure; paying a table fans out one status
// update per order with no rollback: the backend applies each update
// independently, and a partial failure is reported, not undone.
package payment

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/lutong-pos/terminal/internal/backend"
	"github.com/lutong-pos/terminal/internal/enum"
)

// NoTableKey is the bucket key for orders without a table.
const NoTableKey = "none"

// PartialError reports a payTable batch where at least one status
// update failed. Failed lists the orders still unpaid; updates that
// succeeded before the failure stand as applied.
type PartialError struct {
	Failed []int64
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("payment incomplete: %d order(s) not marked paid: %v", len(e.Failed), e.Failed)
}

// Transitioner is the slice of the order manager needed to pay.
type Transitioner interface {
	Transition(ctx context.Context, orderID int64, newStatus string) (backend.Order, error)
}

// Bucket is the set of orders settled together: one table, or the
// no-table group.
type Bucket struct {
	Key     string          `json:"key"`
	TableID *int            `json:"tableId"`
	Orders  []backend.Order `json:"orders"`
}

// GroupByTable partitions orders into buckets keyed by table. Buckets
// appear in order of first appearance, as do orders within a bucket, so
// the payment screen stays stable across refreshes. Every order lands
// in exactly one bucket.
func GroupByTable(orders []backend.Order) []Bucket {
	var buckets []Bucket
	index := make(map[string]int)

	for _, o := range orders {
		key := NoTableKey
		if o.TableID != nil {
			key = strconv.Itoa(*o.TableID)
		}
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Key: key, TableID: o.TableID})
		}
		buckets[i].Orders = append(buckets[i].Orders, o)
	}
	return buckets
}

// TableTotal sums the authoritative order totals in a bucket.
func TableTotal(b Bucket) decimal.Decimal {
	total := decimal.Zero
	for _, o := range b.Orders {
		total = total.Add(o.Total)
	}
	return total
}

// PayTable marks every order in the bucket Paid, issuing the updates
// concurrently. It succeeds only if all of them do; otherwise it
// returns a *PartialError naming the orders that did not transition.
// Orders already marked paid are not rolled back.
func PayTable(ctx context.Context, mgr Transitioner, b Bucket) error {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []int64
	)

	for _, o := range b.Orders {
		wg.Add(1)
		go func(orderID int64) {
			defer wg.Done()
			if _, err := mgr.Transition(ctx, orderID, enum.OrderStatusPaid); err != nil {
				mu.Lock()
				failed = append(failed, orderID)
				mu.Unlock()
			}
		}(o.ID)
	}
	wg.Wait()

	if len(failed) > 0 {
		sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })
		return &PartialError{Failed: failed}
	}
	return nil
}
