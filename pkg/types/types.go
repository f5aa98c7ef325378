// Package domain defines the core business types for the wishlist watcher.
package domain

import (
	"encoding/json"
	"time"
)

// Category is the outcome of comparing one observation against its history.
type Category string

// Category constants.
const (
	CategoryNew        Category = "new"
	CategoryRicher     Category = "richer"
	CategoryCheaper    Category = "cheaper"
	CategoryCheapest   Category = "cheapest"
	CategoryOutOfStock Category = "out_of_stock"
	CategoryUnchanged  Category = "unchanged"
)

// Persisted reports whether observations in this category are appended to
// the price history.
func (c Category) Persisted() bool {
	switch c {
	case CategoryNew, CategoryRicher, CategoryCheaper:
		return true
	default:
		return false
	}
}

// Metadata is the rendering payload carried by a price point. It never
// participates in price comparisons.
type Metadata struct {
	Title    string     `json:"title,omitempty"`
	URL      string     `json:"url,omitempty"`
	ImageURL string     `json:"image,omitempty"`
	Digital  bool       `json:"digital,omitempty"`
	Comment  string     `json:"comment,omitempty"`
	Added    *time.Time `json:"added,omitempty"`
	PageURL  string     `json:"page_url,omitempty"`
	Page     int        `json:"page,omitempty"`

	// Extra holds source fields without a typed home.
	Extra map[string]any `json:"extra,omitempty"`
}

// PricePoint is one observation of an item's price. Price is in cents.
type PricePoint struct {
	Seq        int64     `json:"seq,omitempty"  db:"seq"`
	Identity   string    `json:"identity"       db:"identity"`
	Price      int64     `json:"price"          db:"price"`
	Metadata   Metadata  `json:"metadata"       db:"metadata"`
	ObservedAt time.Time `json:"observed_at"    db:"observed_at"`
}

// IsDigital reports whether the item is a digital good, which is never out
// of stock.
func (p *PricePoint) IsDigital() bool {
	return p.Metadata.Digital
}

// Dollars returns the price in major currency units.
func (p *PricePoint) Dollars() float64 {
	return float64(p.Price) / 100
}

// MarshalMetadata encodes the metadata for storage.
func (p *PricePoint) MarshalMetadata() ([]byte, error) {
	return json.Marshal(p.Metadata)
}

// Run records a single check of one watchlist.
type Run struct {
	ID          string     `json:"id"                     db:"id"`
	Watchlist   string     `json:"watchlist"              db:"watchlist"`
	StartedAt   time.Time  `json:"started_at"             db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Status      string     `json:"status"                 db:"status"`
	ItemCount   int        `json:"item_count"             db:"item_count"`
	ChangeCount int        `json:"change_count"           db:"change_count"`
	ErrorCount  int        `json:"error_count"            db:"error_count"`
	ErrorText   string     `json:"error_text,omitempty"   db:"error_text"`
}

// Run status constants.
const (
	RunRunning   = "running"
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
	RunAborted   = "aborted"
)

// HistorySummary is the derived view of one identity's price history.
type HistorySummary struct {
	Identity string       `json:"identity"`
	Count    int          `json:"count"`
	First    *PricePoint  `json:"first,omitempty"`
	Last     *PricePoint  `json:"last,omitempty"`
	Cheapest *PricePoint  `json:"cheapest,omitempty"`
	Richest  *PricePoint  `json:"richest,omitempty"`
	Points   []PricePoint `json:"points"`
}
