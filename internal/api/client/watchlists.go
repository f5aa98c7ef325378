package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/donaldgifford/watchlist/internal/engine"
)

// CheckParams defines query parameters for a manual check.
type CheckParams struct {
	DryRun    bool
	StartPage int
}

// Check runs one check of the named watchlist on the server and waits for
// its summary.
func (c *Client) Check(ctx context.Context, name string, params *CheckParams) (*engine.Result, error) {
	q := url.Values{}
	if params != nil {
		if params.DryRun {
			q.Set("dry_run", "true")
		}
		if params.StartPage > 0 {
			q.Set("start_page", strconv.Itoa(params.StartPage))
		}
	}

	path := fmt.Sprintf("/api/v1/watchlists/%s/check", url.PathEscape(name))
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var res engine.Result
	if err := c.post(ctx, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
