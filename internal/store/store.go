// Package store defines the price-history datastore abstraction for the
// watchlist. History is append-only: rows are inserted and read, never
// updated or deleted. Business logic depends on the Store interface, never on
// a concrete implementation.
package store

import (
	"context"
	"errors"

	domain "github.com/donaldgifford/watchlist/pkg/types"
)

var (
	// ErrConnection wraps failures to reach the database.
	ErrConnection = errors.New("store unreachable")

	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
)

// HistoryReader is the read side of the price history. Lookups for an
// identity with no matching rows return (nil, nil).
type HistoryReader interface {
	// Exists reports whether any price point is recorded for identity.
	Exists(ctx context.Context, identity string) (bool, error)
	// Last returns the most recently appended price point.
	Last(ctx context.Context, identity string) (*domain.PricePoint, error)
	// First returns the earliest appended price point.
	First(ctx context.Context, identity string) (*domain.PricePoint, error)
	// Cheapest returns the lowest-priced point with price > 0, earliest on ties.
	Cheapest(ctx context.Context, identity string) (*domain.PricePoint, error)
	// Richest returns the highest-priced point with price > 0, earliest on ties.
	Richest(ctx context.Context, identity string) (*domain.PricePoint, error)
	// History returns every point for identity in insertion order.
	History(ctx context.Context, identity string) ([]domain.PricePoint, error)
	// Count returns the number of points recorded for identity.
	Count(ctx context.Context, identity string) (int, error)
	// CountAtPrice returns how many times identity was observed at price.
	CountAtPrice(ctx context.Context, identity string, price int64) (int, error)
}

// Store defines all data access operations for the watchlist.
type Store interface {
	HistoryReader

	// Append records a new price point and sets its Seq.
	Append(ctx context.Context, p *domain.PricePoint) error

	// Runs
	InsertRun(ctx context.Context, watchlist string) (id string, err error)
	CompleteRun(ctx context.Context, r *domain.Run) error
	ListRuns(ctx context.Context, q *RunQuery) ([]domain.Run, error)

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
	Close()
}

func requireIdentity(identity string) error {
	if identity == "" {
		return domain.ErrMissingIdentity
	}
	return nil
}
