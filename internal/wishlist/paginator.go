package wishlist

import (
	"context"
	"fmt"
	"log/slog"
)

const defaultMaxPages = 50

// StopReason records why pagination ended.
type StopReason string

// Stop reasons.
const (
	StopNoMoreResults StopReason = "no_more_results"
	StopEmptyPage     StopReason = "empty_page"
	StopMaxPages      StopReason = "max_pages"
	StopCallback      StopReason = "stopped"
	StopError         StopReason = "error"
)

// Paginator walks a wishlist page by page.
type Paginator struct {
	source   Source
	log      *slog.Logger
	maxPages int
}

// PaginatorOption configures the Paginator.
type PaginatorOption func(*Paginator)

// WithMaxPages caps the pages fetched per Paginate call.
func WithMaxPages(n int) PaginatorOption {
	return func(p *Paginator) {
		if n > 0 {
			p.maxPages = n
		}
	}
}

// WithPaginatorLogger sets the logger.
func WithPaginatorLogger(l *slog.Logger) PaginatorOption {
	return func(p *Paginator) {
		p.log = l
	}
}

// NewPaginator creates a new Paginator.
func NewPaginator(source Source, opts ...PaginatorOption) *Paginator {
	p := &Paginator{
		source:   source,
		log:      slog.Default(),
		maxPages: defaultMaxPages,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PaginateResult summarizes a Paginate call.
type PaginateResult struct {
	PagesUsed int
	TotalSeen int
	LastPage  int
	StoppedAt StopReason
}

// Paginate fetches pages of name starting at startPage and hands each entry
// to fn in order. Pages are fetched lazily: the next page is requested only
// after fn has seen every entry of the current one. It stops when the source
// reports no more pages, a page is empty, the page cap is hit, fn returns
// false, or an error occurs. The result is always non-nil.
func (p *Paginator) Paginate(
	ctx context.Context,
	name string,
	startPage int,
	fn func(ctx context.Context, e Entry) bool,
) (*PaginateResult, error) {
	if startPage < 1 {
		startPage = 1
	}

	result := &PaginateResult{}

	for page := startPage; result.PagesUsed < p.maxPages; page++ {
		if err := ctx.Err(); err != nil {
			result.StoppedAt = StopError
			return result, err
		}

		resp, err := p.source.Page(ctx, name, page)
		if err != nil {
			result.StoppedAt = StopError
			return result, fmt.Errorf("fetching page %d: %w", page, err)
		}

		result.PagesUsed++
		result.LastPage = page
		p.log.Debug("fetched wishlist page",
			"watchlist", name,
			"page", page,
			"items", len(resp.Items),
			"has_more", resp.HasMore,
		)

		if len(resp.Items) == 0 {
			result.StoppedAt = StopEmptyPage
			return result, nil
		}

		for i := range resp.Items {
			result.TotalSeen++
			if resp.Items[i].Page == 0 {
				resp.Items[i].Page = page
			}
			if !fn(ctx, resp.Items[i]) {
				result.StoppedAt = StopCallback
				return result, nil
			}
		}

		if !resp.HasMore {
			result.StoppedAt = StopNoMoreResults
			return result, nil
		}
	}

	result.StoppedAt = StopMaxPages
	return result, nil
}
