package client

import (
	"context"
	"net/url"
	"strconv"

	domain "github.com/donaldgifford/watchlist/pkg/types"
)

// ListRunsParams defines query parameters for listing runs.
type ListRunsParams struct {
	Watchlist string
	Status    string
	Limit     int
}

// ListRuns returns recent runs, newest first.
func (c *Client) ListRuns(ctx context.Context, params *ListRunsParams) ([]domain.Run, error) {
	q := url.Values{}
	if params != nil {
		if params.Watchlist != "" {
			q.Set("watchlist", params.Watchlist)
		}
		if params.Status != "" {
			q.Set("status", params.Status)
		}
		if params.Limit > 0 {
			q.Set("limit", strconv.Itoa(params.Limit))
		}
	}

	path := "/api/v1/runs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Runs []domain.Run `json:"runs"`
	}
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Runs, nil
}
