// Package wishlist provides the client for the wishlist page API, abstracted
// behind the Source interface for testability.
package wishlist

import (
	"context"
	"errors"
)

var (
	// ErrRobotDetected is returned when the source answers with an
	// anti-scraping challenge instead of a page. It aborts the run.
	ErrRobotDetected = errors.New("robot detected")

	// ErrNotFound is returned when the wishlist does not exist.
	ErrNotFound = errors.New("wishlist not found")
)

// Page is one page of wishlist entries.
type Page struct {
	Number  int     `json:"page"`
	HasMore bool    `json:"has_more"`
	Items   []Entry `json:"items"`
}

// Source fetches wishlist pages. Pages are numbered from 1.
type Source interface {
	Page(ctx context.Context, name string, page int) (*Page, error)
}
