package wishlist_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/watchlist/internal/wishlist"
	"github.com/donaldgifford/watchlist/internal/wishlist/mocks"
)

func entries(page, n int) []wishlist.Entry {
	out := make([]wishlist.Entry, n)
	for i := range out {
		out[i] = wishlist.Entry{
			UUID:  fmt.Sprintf("p%d-%d", page, i),
			Title: fmt.Sprintf("Item %d on page %d", i, page),
		}
	}
	return out
}

func TestPaginator_Paginate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		startPage   int
		maxPages    int
		stopAfter   int
		setupMocks  func(*mocks.MockSource)
		wantSeen    int
		wantPages   int
		wantLast    int
		wantStopped wishlist.StopReason
		wantErr     error
	}{
		{
			name: "walks until has_more is false",
			setupMocks: func(ms *mocks.MockSource) {
				ms.EXPECT().Page(mock.Anything, "birthday", 1).
					Return(&wishlist.Page{Number: 1, HasMore: true, Items: entries(1, 3)}, nil).Once()
				ms.EXPECT().Page(mock.Anything, "birthday", 2).
					Return(&wishlist.Page{Number: 2, HasMore: false, Items: entries(2, 2)}, nil).Once()
			},
			wantSeen:    5,
			wantPages:   2,
			wantLast:    2,
			wantStopped: wishlist.StopNoMoreResults,
		},
		{
			name:      "restarts from a later page",
			startPage: 3,
			setupMocks: func(ms *mocks.MockSource) {
				ms.EXPECT().Page(mock.Anything, "birthday", 3).
					Return(&wishlist.Page{Number: 3, Items: entries(3, 1)}, nil).Once()
			},
			wantSeen:    1,
			wantPages:   1,
			wantLast:    3,
			wantStopped: wishlist.StopNoMoreResults,
		},
		{
			name: "stops on empty page",
			setupMocks: func(ms *mocks.MockSource) {
				ms.EXPECT().Page(mock.Anything, "birthday", 1).
					Return(&wishlist.Page{Number: 1, HasMore: true}, nil).Once()
			},
			wantPages:   1,
			wantLast:    1,
			wantStopped: wishlist.StopEmptyPage,
		},
		{
			name:     "stops at max pages",
			maxPages: 2,
			setupMocks: func(ms *mocks.MockSource) {
				ms.EXPECT().Page(mock.Anything, "birthday", mock.Anything).
					RunAndReturn(func(_ context.Context, _ string, page int) (*wishlist.Page, error) {
						return &wishlist.Page{Number: page, HasMore: true, Items: entries(page, 2)}, nil
					}).Times(2)
			},
			wantSeen:    4,
			wantPages:   2,
			wantLast:    2,
			wantStopped: wishlist.StopMaxPages,
		},
		{
			name:      "callback stops pagination",
			stopAfter: 2,
			setupMocks: func(ms *mocks.MockSource) {
				ms.EXPECT().Page(mock.Anything, "birthday", 1).
					Return(&wishlist.Page{Number: 1, HasMore: true, Items: entries(1, 5)}, nil).Once()
			},
			wantSeen:    2,
			wantPages:   1,
			wantLast:    1,
			wantStopped: wishlist.StopCallback,
		},
		{
			name: "robot detection mid-run",
			setupMocks: func(ms *mocks.MockSource) {
				ms.EXPECT().Page(mock.Anything, "birthday", 1).
					Return(&wishlist.Page{Number: 1, HasMore: true, Items: entries(1, 2)}, nil).Once()
				ms.EXPECT().Page(mock.Anything, "birthday", 2).
					Return(nil, wishlist.ErrRobotDetected).Once()
			},
			wantSeen:    2,
			wantPages:   1,
			wantLast:    1,
			wantStopped: wishlist.StopError,
			wantErr:     wishlist.ErrRobotDetected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ms := mocks.NewMockSource(t)
			tt.setupMocks(ms)

			var opts []wishlist.PaginatorOption
			if tt.maxPages > 0 {
				opts = append(opts, wishlist.WithMaxPages(tt.maxPages))
			}
			p := wishlist.NewPaginator(ms, opts...)

			var seen []wishlist.Entry
			result, err := p.Paginate(context.Background(), "birthday", tt.startPage,
				func(_ context.Context, e wishlist.Entry) bool {
					seen = append(seen, e)
					return tt.stopAfter == 0 || len(seen) < tt.stopAfter
				},
			)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			require.NotNil(t, result)
			assert.Equal(t, tt.wantSeen, result.TotalSeen)
			assert.Len(t, seen, tt.wantSeen)
			assert.Equal(t, tt.wantPages, result.PagesUsed)
			assert.Equal(t, tt.wantLast, result.LastPage)
			assert.Equal(t, tt.wantStopped, result.StoppedAt)
			for _, e := range seen {
				assert.Positive(t, e.Page)
			}
		})
	}
}

func TestPaginator_CanceledContext(t *testing.T) {
	t.Parallel()

	ms := mocks.NewMockSource(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := wishlist.NewPaginator(ms).Paginate(ctx, "birthday", 1,
		func(context.Context, wishlist.Entry) bool { return true },
	)
	require.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, wishlist.StopError, result.StoppedAt)
	assert.Zero(t, result.PagesUsed)
}
