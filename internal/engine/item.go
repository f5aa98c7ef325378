package engine

import (
	"context"
	"fmt"

	"github.com/donaldgifford/watchlist/internal/store"
	domain "github.com/donaldgifford/watchlist/pkg/types"
)

// memo caches the result of one store lookup for the lifetime of an Item.
// Errors are not cached so a transient failure can be retried.
type memo[T any] struct {
	done bool
	val  T
}

func (m *memo[T]) get(fn func() (T, error)) (T, error) {
	if m.done {
		return m.val, nil
	}
	v, err := fn()
	if err != nil {
		var zero T
		return zero, err
	}
	m.val, m.done = v, true
	return v, nil
}

// Item evaluates one observation against the stored history of its
// identity. It is not safe for concurrent use.
type Item struct {
	Newest *domain.PricePoint

	history store.HistoryReader

	exists   memo[bool]
	last     memo[*domain.PricePoint]
	cheapest memo[*domain.PricePoint]
	richest  memo[*domain.PricePoint]
}

// NewItem wraps p for evaluation against h.
func NewItem(p *domain.PricePoint, h store.HistoryReader) *Item {
	return &Item{Newest: p, history: h}
}

// Last returns the previously recorded point, or nil.
func (it *Item) Last(ctx context.Context) (*domain.PricePoint, error) {
	return it.last.get(func() (*domain.PricePoint, error) {
		p, err := it.history.Last(ctx, it.Newest.Identity)
		if err != nil {
			return nil, fmt.Errorf("loading last price: %w", err)
		}
		return p, nil
	})
}

// Cheapest returns the lowest in-stock price on record, or nil.
func (it *Item) Cheapest(ctx context.Context) (*domain.PricePoint, error) {
	return it.cheapest.get(func() (*domain.PricePoint, error) {
		p, err := it.history.Cheapest(ctx, it.Newest.Identity)
		if err != nil {
			return nil, fmt.Errorf("loading cheapest price: %w", err)
		}
		return p, nil
	})
}

// Richest returns the highest price on record, or nil.
func (it *Item) Richest(ctx context.Context) (*domain.PricePoint, error) {
	return it.richest.get(func() (*domain.PricePoint, error) {
		p, err := it.history.Richest(ctx, it.Newest.Identity)
		if err != nil {
			return nil, fmt.Errorf("loading richest price: %w", err)
		}
		return p, nil
	})
}

// IsNewest reports whether the identity has never been recorded.
func (it *Item) IsNewest(ctx context.Context) (bool, error) {
	seen, err := it.exists.get(func() (bool, error) {
		ok, err := it.history.Exists(ctx, it.Newest.Identity)
		if err != nil {
			return false, fmt.Errorf("checking history: %w", err)
		}
		return ok, nil
	})
	return !seen, err
}

// IsStocked reports whether the item can currently be bought. Digital goods
// are always stocked.
func (it *Item) IsStocked() bool {
	return it.Newest.Price > 0 || it.Newest.IsDigital()
}

// IsRicher reports whether the price went up since the last observation.
func (it *Item) IsRicher(ctx context.Context) (bool, error) {
	if !it.IsStocked() {
		return false, nil
	}
	last, err := it.Last(ctx)
	if err != nil {
		return false, err
	}
	return last != nil && last.Price < it.Newest.Price, nil
}

// IsCheaper reports whether the price went down since the last observation.
func (it *Item) IsCheaper(ctx context.Context) (bool, error) {
	if !it.IsStocked() {
		return false, nil
	}
	last, err := it.Last(ctx)
	if err != nil {
		return false, err
	}
	return last != nil && it.Newest.Price < last.Price, nil
}

// IsCheapest reports whether the price matches or beats the historical low.
func (it *Item) IsCheapest(ctx context.Context) (bool, error) {
	if !it.IsStocked() {
		return false, nil
	}
	richer, err := it.IsRicher(ctx)
	if err != nil || richer {
		return false, err
	}
	cheapest, err := it.Cheapest(ctx)
	if err != nil {
		return false, err
	}
	return cheapest == nil || it.Newest.Price <= cheapest.Price, nil
}

// IsRichest reports whether the price matches or exceeds the historical high.
func (it *Item) IsRichest(ctx context.Context) (bool, error) {
	if !it.IsStocked() {
		return false, nil
	}
	richest, err := it.Richest(ctx)
	if err != nil {
		return false, err
	}
	return richest == nil || it.Newest.Price >= richest.Price, nil
}

// Classify returns the first matching category in the order new, richer,
// cheaper, cheapest, out of stock, unchanged.
func (it *Item) Classify(ctx context.Context) (domain.Category, error) {
	checks := []struct {
		category domain.Category
		test     func(context.Context) (bool, error)
	}{
		{domain.CategoryNew, it.IsNewest},
		{domain.CategoryRicher, it.IsRicher},
		{domain.CategoryCheaper, it.IsCheaper},
		{domain.CategoryCheapest, it.IsCheapest},
		{domain.CategoryOutOfStock, func(context.Context) (bool, error) {
			return !it.IsStocked(), nil
		}},
	}

	for _, c := range checks {
		ok, err := c.test(ctx)
		if err != nil {
			return "", err
		}
		if ok {
			return c.category, nil
		}
	}
	return domain.CategoryUnchanged, nil
}

// Snapshot is the fully resolved view of an Item the digest renders
// without further store access. Counts cover history only, not Newest.
type Snapshot struct {
	Newest        domain.PricePoint
	Last          *domain.PricePoint
	Cheapest      *domain.PricePoint
	Richest       *domain.PricePoint
	CheapestCount int
	RichestCount  int
	IsCheapest    bool
	IsRichest     bool
}

// Snapshot resolves every lazy fact. Call it before Newest is appended.
func (it *Item) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{Newest: *it.Newest}

	var err error
	if snap.Last, err = it.Last(ctx); err != nil {
		return nil, err
	}
	if snap.Cheapest, err = it.Cheapest(ctx); err != nil {
		return nil, err
	}
	if snap.Richest, err = it.Richest(ctx); err != nil {
		return nil, err
	}
	if snap.IsCheapest, err = it.IsCheapest(ctx); err != nil {
		return nil, err
	}
	if snap.IsRichest, err = it.IsRichest(ctx); err != nil {
		return nil, err
	}

	id := it.Newest.Identity
	if snap.Cheapest != nil {
		if snap.CheapestCount, err = it.history.CountAtPrice(ctx, id, snap.Cheapest.Price); err != nil {
			return nil, fmt.Errorf("counting cheapest price: %w", err)
		}
	}
	if snap.Richest != nil {
		if snap.RichestCount, err = it.history.CountAtPrice(ctx, id, snap.Richest.Price); err != nil {
			return nil, fmt.Errorf("counting richest price: %w", err)
		}
	}

	return snap, nil
}
