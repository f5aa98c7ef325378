package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/watchlist/internal/engine"
	"github.com/donaldgifford/watchlist/internal/store"
	"github.com/donaldgifford/watchlist/internal/wishlist"
)

// CheckHandler runs watchlist checks on demand.
type CheckHandler struct {
	runner engine.Runner
}

// NewCheckHandler creates a new CheckHandler. Pass the scheduler rather than
// the bare engine so manual checks never overlap scheduled ones.
func NewCheckHandler(r engine.Runner) *CheckHandler {
	return &CheckHandler{runner: r}
}

// CheckInput is the input for a manual check.
type CheckInput struct {
	Name      string `path:"name"        doc:"Watchlist name"`
	DryRun    bool   `query:"dry_run"    doc:"Classify without saving or sending"`
	StartPage int    `query:"start_page" doc:"First page to fetch (default 1)" minimum:"0"`
}

// CheckOutput is the response for a manual check.
type CheckOutput struct {
	Body engine.Result
}

// Check runs one watchlist check synchronously and returns its summary.
func (h *CheckHandler) Check(ctx context.Context, input *CheckInput) (*CheckOutput, error) {
	res, err := h.runner.Run(ctx, input.Name, engine.RunOptions{
		DryRun:    input.DryRun,
		StartPage: input.StartPage,
	})
	if err != nil {
		return nil, checkError(err)
	}
	return &CheckOutput{Body: *res}, nil
}

func checkError(err error) error {
	msg := "check failed: " + err.Error()
	switch {
	case errors.Is(err, engine.ErrRunInProgress):
		return huma.Error409Conflict(msg)
	case errors.Is(err, wishlist.ErrNotFound):
		return huma.Error404NotFound(msg)
	case errors.Is(err, store.ErrConnection):
		return huma.Error503ServiceUnavailable(msg)
	case errors.Is(err, wishlist.ErrRobotDetected):
		return huma.Error502BadGateway(msg)
	default:
		return huma.Error500InternalServerError(msg)
	}
}

// RegisterCheckRoutes registers check endpoints with the Huma API.
func RegisterCheckRoutes(api huma.API, h *CheckHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "check-watchlist",
		Method:      http.MethodPost,
		Path:        "/api/v1/watchlists/{name}/check",
		Summary:     "Check a watchlist now",
		Description: "Fetches every page of the watchlist, records price changes " +
			"and sends the digest. Runs synchronously.",
		Tags: []string{"watchlists"},
		Errors: []int{
			http.StatusNotFound,
			http.StatusConflict,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
		},
	}, h.Check)
}
