package wishlist

import (
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/donaldgifford/watchlist/pkg/types"
)

// Entry is one item as returned by the page API. Price is in major currency
// units and is null when the item is unavailable.
type Entry struct {
	UUID    string     `json:"uuid"`
	Title   string     `json:"title"`
	URL     string     `json:"url"`
	Image   string     `json:"image"`
	Price   *float64   `json:"price"`
	Digital bool       `json:"digital"`
	Comment string     `json:"comment"`
	Added   *time.Time `json:"added"`
	PageURL string     `json:"page_url"`

	// Page is the page the entry was found on, set by the source.
	Page int `json:"-"`

	// Extra holds any keys the API returns beyond the fields above.
	Extra map[string]any `json:"-"`
}

var knownEntryKeys = []string{
	"uuid", "title", "url", "image", "price",
	"digital", "comment", "added", "page_url",
}

// UnmarshalJSON decodes the typed fields and keeps the rest in Extra.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range knownEntryKeys {
		delete(all, k)
	}
	if len(all) > 0 {
		p.Extra = all
	}

	*e = Entry(p)
	return nil
}

// Metadata projects the entry onto the metadata stored with each price
// point.
func (e *Entry) Metadata() domain.Metadata {
	return domain.Metadata{
		Title:    e.Title,
		URL:      e.URL,
		ImageURL: e.Image,
		Digital:  e.Digital,
		Comment:  e.Comment,
		Added:    e.Added,
		PageURL:  e.PageURL,
		Page:     e.Page,
		Extra:    e.Extra,
	}
}

// PricePoint converts the entry into a normalized observation.
func (e *Entry) PricePoint() (*domain.PricePoint, error) {
	var price any
	if e.Price != nil {
		price = *e.Price
	}

	p, err := domain.NewPricePoint(e.UUID, price, e.Metadata())
	if err != nil {
		return nil, fmt.Errorf("entry %q on page %d: %w", e.Title, e.Page, err)
	}
	return p, nil
}
