package engine

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/donaldgifford/watchlist/internal/notify"
	domain "github.com/donaldgifford/watchlist/pkg/types"
)

// ItemError is one per-item failure collected during a run.
type ItemError struct {
	Message  string
	Stack    string
	Identity string
	Page     int
}

// Digest aggregates the changes detected during one run into ordered
// buckets and renders them into a single message.
type Digest struct {
	name      string
	itemCount int

	cheaper    *sortedSlice[*Snapshot]
	richer     *sortedSlice[*Snapshot]
	cheapest   *sortedSlice[*Snapshot]
	outOfStock *sortedSlice[*Snapshot]

	errors []ItemError
}

// NewDigest creates an empty digest for the named watchlist.
func NewDigest(name string) *Digest {
	byNewestPrice := func(a, b *Snapshot) bool { return a.Newest.Price < b.Newest.Price }

	return &Digest{
		name:     name,
		cheaper:  newSortedSlice(byNewestPrice),
		richer:   newSortedSlice(byNewestPrice),
		cheapest: newSortedSlice(func(a, b *Snapshot) bool {
			return lowSeenAt(a).Before(lowSeenAt(b))
		}),
		outOfStock: newSortedSlice(func(a, b *Snapshot) bool {
			return lastPrice(a) < lastPrice(b)
		}),
	}
}

// lowSeenAt is when the historical low was first observed, or the newest
// observation when there is no history.
func lowSeenAt(s *Snapshot) time.Time {
	if s.Cheapest != nil {
		return s.Cheapest.ObservedAt
	}
	return s.Newest.ObservedAt
}

func lastPrice(s *Snapshot) int64 {
	if s.Last != nil {
		return s.Last.Price
	}
	return 0
}

// Record files snap under category c. New and unchanged items are dropped.
// It reports whether the item was kept.
func (d *Digest) Record(snap *Snapshot, c domain.Category) bool {
	switch c {
	case domain.CategoryCheaper:
		d.cheaper.Insert(snap)
	case domain.CategoryRicher:
		d.richer.Insert(snap)
	case domain.CategoryCheapest:
		d.cheapest.Insert(snap)
	case domain.CategoryOutOfStock:
		d.outOfStock.Insert(snap)
	default:
		return false
	}
	return true
}

// Reportable reports whether the digest is worth sending. Out-of-stock
// items alone are not.
func (d *Digest) Reportable() bool {
	return d.cheaper.Len() > 0 || d.richer.Len() > 0 || d.cheapest.Len() > 0
}

// Changes returns the number of recorded items across all buckets.
func (d *Digest) Changes() int {
	return d.cheaper.Len() + d.richer.Len() + d.cheapest.Len() + d.outOfStock.Len()
}

// SetItemCount sets the total number of items seen, shown in the subject.
func (d *Digest) SetItemCount(n int) {
	d.itemCount = n
}

// Subject summarizes the bucket sizes.
func (d *Digest) Subject() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d down, %d cheapest, %d up, ",
		d.cheaper.Len(), d.cheapest.Len(), d.richer.Len())
	if d.itemCount > 0 {
		fmt.Fprintf(&b, "%d total ", d.itemCount)
	}
	fmt.Fprintf(&b, "[wishlist %s]", d.name)
	return b.String()
}

// BodyHTML renders the non-empty sections in a fixed order.
func (d *Digest) BodyHTML() (string, error) {
	sections := []struct {
		heading string
		items   *sortedSlice[*Snapshot]
		render  func(io.Writer, *Snapshot) error
	}{
		{"Lower Priced", d.cheaper, renderDetail},
		{"Higher Priced", d.richer, renderSummary},
		{"Cheapest", d.cheapest, renderSummary},
		{"Out of Stock", d.outOfStock, renderSummary},
	}

	var b strings.Builder
	for _, sec := range sections {
		if sec.items.Len() == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "<h2>%s</h2>", sec.heading)
		for _, s := range sec.items.Items() {
			b.WriteString("\n")
			if err := sec.render(&b, s); err != nil {
				return "", err
			}
		}
	}
	return b.String(), nil
}

// BodyText is the visible text of BodyHTML.
func (d *Digest) BodyText() (string, error) {
	body, err := d.BodyHTML()
	if err != nil {
		return "", err
	}
	return htmlToText(body), nil
}

// Message renders the success digest.
func (d *Digest) Message() (notify.Message, error) {
	body, err := d.BodyHTML()
	if err != nil {
		return notify.Message{}, err
	}
	return notify.Message{
		Subject: d.Subject(),
		Text:    htmlToText(body),
		HTML:    body,
	}, nil
}

// AddError records a per-item failure.
func (d *Digest) AddError(e ItemError) {
	d.errors = append(d.errors, e)
}

// Errors returns the failures recorded so far.
func (d *Digest) Errors() []ItemError {
	return d.errors
}

// ErrorDigest renders the collected failures as a plain-text message. The
// second return is false when there is nothing to report.
func (d *Digest) ErrorDigest() (notify.Message, bool) {
	if len(d.errors) == 0 {
		return notify.Message{}, false
	}

	lines := make([]string, 0, 3*len(d.errors))
	for _, e := range d.errors {
		lines = append(lines, e.Message, e.Stack, "")
	}
	return notify.Message{
		Subject: fmt.Sprintf("%d errors raised", len(d.errors)),
		Text:    strings.Join(lines, "\n"),
	}, true
}
