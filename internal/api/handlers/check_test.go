package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/watchlist/internal/api/handlers"
	"github.com/donaldgifford/watchlist/internal/engine"
	"github.com/donaldgifford/watchlist/internal/store"
	"github.com/donaldgifford/watchlist/internal/wishlist"
	domain "github.com/donaldgifford/watchlist/pkg/types"
)

// stubRunner records the last call and returns a canned result.
type stubRunner struct {
	name string
	opts engine.RunOptions
	res  *engine.Result
	err  error
}

func (s *stubRunner) Run(_ context.Context, name string, opts engine.RunOptions) (*engine.Result, error) {
	s.name = name
	s.opts = opts
	return s.res, s.err
}

func TestCheck_Success(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{res: &engine.Result{
		RunID:      "run-1",
		Watchlist:  "birthday",
		Status:     domain.RunSucceeded,
		Items:      12,
		Changes:    2,
		PagesUsed:  2,
		StoppedAt:  wishlist.StopNoMoreResults,
		Reportable: true,
		Sent:       true,
	}}

	_, api := humatest.New(t)
	handlers.RegisterCheckRoutes(api, handlers.NewCheckHandler(runner))

	resp := api.Post("/api/v1/watchlists/birthday/check?dry_run=true&start_page=3")
	require.Equal(t, http.StatusOK, resp.Code)

	assert.Equal(t, "birthday", runner.name)
	assert.Equal(t, engine.RunOptions{DryRun: true, StartPage: 3}, runner.opts)

	var got engine.Result
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, domain.RunSucceeded, got.Status)
	assert.Equal(t, 12, got.Items)
	assert.True(t, got.Sent)
}

func TestCheck_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "run in progress",
			err:        fmt.Errorf("checking birthday: %w", engine.ErrRunInProgress),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unknown watchlist",
			err:        fmt.Errorf("paginating birthday: %w", wishlist.ErrNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "store unreachable",
			err:        fmt.Errorf("checking store before run: %w", store.ErrConnection),
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "robot detected",
			err:        fmt.Errorf("paginating birthday: %w", wishlist.ErrRobotDetected),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "anything else",
			err:        errors.New("decoding page: unexpected EOF"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, api := humatest.New(t)
			handlers.RegisterCheckRoutes(api, handlers.NewCheckHandler(&stubRunner{err: tt.err}))

			resp := api.Post("/api/v1/watchlists/birthday/check")
			require.Equal(t, tt.wantStatus, resp.Code)
			assert.Contains(t, resp.Body.String(), tt.err.Error())
		})
	}
}
