package client

import (
	"context"
	"fmt"
	"net/url"

	domain "github.com/donaldgifford/watchlist/pkg/types"
)

// GetHistory returns the recorded price history of one item.
func (c *Client) GetHistory(ctx context.Context, identity string) (*domain.HistorySummary, error) {
	var h domain.HistorySummary
	path := fmt.Sprintf("/api/v1/items/%s/history", url.PathEscape(identity))
	if err := c.get(ctx, path, &h); err != nil {
		return nil, err
	}
	return &h, nil
}
