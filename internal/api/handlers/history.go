package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/watchlist/internal/store"
	domain "github.com/donaldgifford/watchlist/pkg/types"
)

// HistoryHandler serves the recorded price history of an item.
type HistoryHandler struct {
	history store.HistoryReader
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(h store.HistoryReader) *HistoryHandler {
	return &HistoryHandler{history: h}
}

// GetHistoryInput is the input for fetching an item's history.
type GetHistoryInput struct {
	Identity string `path:"identity" doc:"Item identity (the wishlist uuid)"`
}

// GetHistoryOutput is the response for an item's history.
type GetHistoryOutput struct {
	Body domain.HistorySummary
}

// GetHistory returns every recorded price point for an identity along with
// its first, last, cheapest and richest points.
func (h *HistoryHandler) GetHistory(
	ctx context.Context,
	input *GetHistoryInput,
) (*GetHistoryOutput, error) {
	exists, err := h.history.Exists(ctx, input.Identity)
	if err != nil {
		return nil, huma.Error500InternalServerError("history lookup failed: " + err.Error())
	}
	if !exists {
		return nil, huma.Error404NotFound("no history for " + input.Identity)
	}

	summary, err := summarize(ctx, h.history, input.Identity)
	if err != nil {
		return nil, huma.Error500InternalServerError("history lookup failed: " + err.Error())
	}

	return &GetHistoryOutput{Body: *summary}, nil
}

func summarize(ctx context.Context, h store.HistoryReader, identity string) (*domain.HistorySummary, error) {
	s := &domain.HistorySummary{Identity: identity}

	var err error
	if s.Points, err = h.History(ctx, identity); err != nil {
		return nil, fmt.Errorf("listing points: %w", err)
	}
	if s.Points == nil {
		s.Points = []domain.PricePoint{}
	}
	s.Count = len(s.Points)

	if s.First, err = h.First(ctx, identity); err != nil {
		return nil, fmt.Errorf("loading first price: %w", err)
	}
	if s.Last, err = h.Last(ctx, identity); err != nil {
		return nil, fmt.Errorf("loading last price: %w", err)
	}
	if s.Cheapest, err = h.Cheapest(ctx, identity); err != nil {
		return nil, fmt.Errorf("loading cheapest price: %w", err)
	}
	if s.Richest, err = h.Richest(ctx, identity); err != nil {
		return nil, fmt.Errorf("loading richest price: %w", err)
	}

	return s, nil
}

// RegisterHistoryRoutes registers history endpoints with the Huma API.
func RegisterHistoryRoutes(api huma.API, h *HistoryHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-item-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/items/{identity}/history",
		Summary:     "Get item price history",
		Description: "Returns every recorded price point for an item plus its " +
			"first, last, cheapest and richest points.",
		Tags:   []string{"items"},
		Errors: []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.GetHistory)
}
