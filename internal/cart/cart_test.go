package cart_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutong-pos/terminal/internal/backend"
	"github.com/lutong-pos/terminal/internal/cart"
	"github.com/lutong-pos/terminal/internal/enum"
	"github.com/lutong-pos/terminal/internal/storage"
)

func product(id int64, name string, price string, stock int) backend.Product {
	return backend.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: stock > 0,
	}
}

func newStore(t *testing.T) *cart.Store {
	t.Helper()
	s := cart.New(storage.NewMemStore())
	require.NoError(t, s.Hydrate())
	return s
}

func TestAdd(t *testing.T) {
	adobo := product(1, "Adobo", "120.00", 5)
	sisig := product(2, "Sisig", "150.00", 0)

	t.Run("new line starts at quantity 1", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(adobo))

		lines := s.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, int64(1), lines[0].ProductID)
		assert.Equal(t, 1, lines[0].Quantity)
		assert.Equal(t, "Adobo", lines[0].Name)
	})

	t.Run("out of stock product is rejected", func(t *testing.T) {
		s := newStore(t)
		err := s.Add(sisig)
		assert.ErrorIs(t, err, cart.ErrOutOfStock)
		assert.Empty(t, s.Lines())
	})

	t.Run("existing line increments", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(adobo))
		require.NoError(t, s.Add(adobo))
		assert.Equal(t, 2, s.Lines()[0].Quantity)
	})

	t.Run("never exceeds stock", func(t *testing.T) {
		s := newStore(t)
		for i := 0; i < 5; i++ {
			require.NoError(t, s.Add(adobo))
		}
		err := s.Add(adobo)
		assert.ErrorIs(t, err, cart.ErrQuantityExceedsStock)
		assert.Equal(t, 5, s.Lines()[0].Quantity, "quantity must stay at stock limit")
	})

	t.Run("pending line resumes from zero", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(adobo))
		require.NoError(t, s.SetQuantity(adobo, ""))
		require.NoError(t, s.Add(adobo))

		lines := s.Lines()
		assert.Equal(t, 1, lines[0].Quantity)
		assert.False(t, lines[0].Pending)
	})
}

func TestSetQuantity(t *testing.T) {
	adobo := product(1, "Adobo", "120.00", 5)

	t.Run("empty input parks the line, not removes it", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(adobo))
		require.NoError(t, s.SetQuantity(adobo, ""))

		lines := s.Lines()
		require.Len(t, lines, 1)
		assert.True(t, lines[0].Pending)
		assert.True(t, s.Total().IsZero(), "pending line counts as zero")
	})

	t.Run("resolve after still-empty input sets quantity 1", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(adobo))
		require.NoError(t, s.SetQuantity(adobo, ""))
		s.ResolvePending(adobo.ID)

		lines := s.Lines()
		assert.Equal(t, 1, lines[0].Quantity)
		assert.False(t, lines[0].Pending)
	})

	t.Run("resolve is a no-op for settled lines", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(adobo))
		require.NoError(t, s.SetQuantity(adobo, "4"))
		s.ResolvePending(adobo.ID)
		assert.Equal(t, 4, s.Lines()[0].Quantity)
	})

	t.Run("value above stock is rejected without clamping", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(adobo))
		require.NoError(t, s.SetQuantity(adobo, "3"))

		err := s.SetQuantity(adobo, "9")
		assert.ErrorIs(t, err, cart.ErrQuantityExceedsStock)
		assert.Equal(t, 3, s.Lines()[0].Quantity, "previous quantity must stay intact")
	})

	t.Run("zero or negative removes the line", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(adobo))
		require.NoError(t, s.SetQuantity(adobo, "0"))
		assert.Empty(t, s.Lines())

		require.NoError(t, s.Add(adobo))
		require.NoError(t, s.SetQuantity(adobo, "-2"))
		assert.Empty(t, s.Lines())
	})

	t.Run("non-numeric input is rejected", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(adobo))
		err := s.SetQuantity(adobo, "lots")
		assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
		assert.Equal(t, 1, s.Lines()[0].Quantity)
	})

	t.Run("unknown product", func(t *testing.T) {
		s := newStore(t)
		err := s.SetQuantity(adobo, "2")
		assert.ErrorIs(t, err, cart.ErrNotInCart)
	})
}

func TestTotal(t *testing.T) {
	adobo := product(1, "Adobo", "120.00", 10)
	sisig := product(2, "Sisig", "150.50", 10)

	t.Run("sum of price times quantity", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(adobo))
		require.NoError(t, s.SetQuantity(adobo, "2"))
		require.NoError(t, s.Add(sisig))
		require.NoError(t, s.SetQuantity(sisig, "3"))

		assert.Equal(t, "691.50", s.Total().StringFixed(2))
	})

	t.Run("insensitive to insertion order", func(t *testing.T) {
		a := newStore(t)
		require.NoError(t, a.Add(adobo))
		require.NoError(t, a.Add(sisig))
		require.NoError(t, a.SetQuantity(sisig, "3"))

		b := newStore(t)
		require.NoError(t, b.Add(sisig))
		require.NoError(t, b.SetQuantity(sisig, "3"))
		require.NoError(t, b.Add(adobo))

		assert.True(t, a.Total().Equal(b.Total()))
	})
}

func TestReconcile(t *testing.T) {
	adobo := product(1, "Adobo", "120.00", 5)
	sisig := product(2, "Sisig", "150.00", 5)

	t.Run("drops lines for missing products", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(adobo))
		require.NoError(t, s.Add(sisig))

		s.Reconcile([]backend.Product{adobo})

		lines := s.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, adobo.ID, lines[0].ProductID)
	})

	t.Run("idempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(adobo))
		require.NoError(t, s.Add(sisig))

		catalog := []backend.Product{adobo}
		s.Reconcile(catalog)
		once := s.Lines()
		s.Reconcile(catalog)
		twice := s.Lines()

		assert.Equal(t, once, twice)
	})
}

func TestPersistence(t *testing.T) {
	adobo := product(1, "Adobo", "120.00", 5)

	t.Run("survives rehydration", func(t *testing.T) {
		mem := storage.NewMemStore()

		s := cart.New(mem)
		require.NoError(t, s.Hydrate())
		require.NoError(t, s.Add(adobo))
		require.NoError(t, s.SetQuantity(adobo, "3"))

		reloaded := cart.New(mem)
		require.NoError(t, reloaded.Hydrate())
		lines := reloaded.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, 3, lines[0].Quantity)
		assert.Equal(t, "120.00", lines[0].Price.StringFixed(2))
	})

	t.Run("mutations before hydrate do not clobber stored state", func(t *testing.T) {
		mem := storage.NewMemStore()

		s := cart.New(mem)
		require.NoError(t, s.Hydrate())
		require.NoError(t, s.Add(adobo))

		// A second store that mutates before hydrating: its persist must
		// be gated, so the stored cart stays intact.
		early := cart.New(mem)
		early.Remove(adobo.ID)

		reloaded := cart.New(mem)
		require.NoError(t, reloaded.Hydrate())
		assert.Len(t, reloaded.Lines(), 1)
	})

	t.Run("clear removes the stored record", func(t *testing.T) {
		mem := storage.NewMemStore()

		s := cart.New(mem)
		require.NoError(t, s.Hydrate())
		require.NoError(t, s.Add(adobo))
		s.Clear()

		var lines []cart.Line
		found, err := mem.Load(enum.StorageKeyCart, &lines)
		require.NoError(t, err)
		assert.False(t, found)
	})
}
