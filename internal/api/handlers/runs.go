package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/watchlist/internal/store"
	domain "github.com/donaldgifford/watchlist/pkg/types"
)

// RunLister lists recorded watchlist runs.
type RunLister interface {
	ListRuns(ctx context.Context, q *store.RunQuery) ([]domain.Run, error)
}

// RunsHandler serves run bookkeeping.
type RunsHandler struct {
	runs RunLister
}

// NewRunsHandler creates a new RunsHandler.
func NewRunsHandler(r RunLister) *RunsHandler {
	return &RunsHandler{runs: r}
}

// ListRunsInput is the input for listing runs.
type ListRunsInput struct {
	Watchlist string `query:"watchlist" doc:"Filter by watchlist name"`
	Status    string `query:"status"    doc:"Filter by run status"            enum:"running,succeeded,failed,aborted,"`
	Limit     int    `query:"limit"     doc:"Number of results (default 20)" minimum:"0" maximum:"200"`
}

// ListRunsOutput is the response for listing runs.
type ListRunsOutput struct {
	Body struct {
		Runs []domain.Run `json:"runs"`
	}
}

// ListRuns returns recent runs, newest first.
func (h *RunsHandler) ListRuns(ctx context.Context, input *ListRunsInput) (*ListRunsOutput, error) {
	q := &store.RunQuery{Limit: input.Limit}
	if input.Watchlist != "" {
		q.Watchlist = &input.Watchlist
	}
	if input.Status != "" {
		q.Status = &input.Status
	}

	runs, err := h.runs.ListRuns(ctx, q)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing runs failed: " + err.Error())
	}
	if runs == nil {
		runs = []domain.Run{}
	}

	resp := &ListRunsOutput{}
	resp.Body.Runs = runs
	return resp, nil
}

// RegisterRunsRoutes registers run endpoints with the Huma API.
func RegisterRunsRoutes(api huma.API, h *RunsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-runs",
		Method:      http.MethodGet,
		Path:        "/api/v1/runs",
		Summary:     "List watchlist runs",
		Description: "Returns recent watchlist runs, newest first.",
		Tags:        []string{"runs"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.ListRuns)
}
