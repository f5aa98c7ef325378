package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/watchlist/pkg/types"
)

// fakeRunner records calls and blocks each run until release is closed.
type fakeRunner struct {
	calls   atomic.Int32
	started chan string
	release chan struct{}
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		started: make(chan string, 10),
		release: make(chan struct{}),
	}
}

func (f *fakeRunner) Run(ctx context.Context, name string, _ RunOptions) (*Result, error) {
	f.calls.Add(1)
	f.started <- name
	select {
	case <-f.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &Result{Watchlist: name, Status: domain.RunSucceeded}, nil
}

func TestNewScheduler_RegistersCronEntries(t *testing.T) {
	t.Parallel()

	sched, err := NewScheduler(newFakeRunner(), []Schedule{
		{Name: "birthday", Interval: 6 * time.Hour},
		{Name: "holiday", Interval: 15 * time.Minute},
	}, quietLogger())
	require.NoError(t, err)

	assert.Len(t, sched.Entries(), 2)
}

func TestNewScheduler_RejectsBadInterval(t *testing.T) {
	t.Parallel()

	_, err := NewScheduler(newFakeRunner(), []Schedule{{Name: "birthday"}}, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"birthday"`)
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	sched, err := NewScheduler(newFakeRunner(), []Schedule{
		{Name: "birthday", Interval: time.Hour},
	}, nil)
	require.NoError(t, err)

	sched.Start()
	ctx := sched.Stop()
	<-ctx.Done()
}

func TestScheduler_RunSerializesPerWatchlist(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner()
	sched, err := NewScheduler(runner, nil, quietLogger())
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		res, err := sched.Run(context.Background(), "birthday", RunOptions{})
		assert.NoError(t, err)
		assert.Equal(t, domain.RunSucceeded, res.Status)
	}()

	require.Equal(t, "birthday", <-runner.started)

	_, err = sched.Run(context.Background(), "birthday", RunOptions{})
	require.ErrorIs(t, err, ErrRunInProgress)

	// Another watchlist is not blocked.
	done := make(chan error, 1)
	go func() {
		_, err := sched.Run(context.Background(), "holiday", RunOptions{})
		done <- err
	}()
	require.Equal(t, "holiday", <-runner.started)

	close(runner.release)
	wg.Wait()
	require.NoError(t, <-done)

	// The lock is released once the run finishes.
	runner.release = make(chan struct{})
	close(runner.release)
	_, err = sched.Run(context.Background(), "birthday", RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(3), runner.calls.Load())
}

func TestScheduler_RunPassesThroughErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("store unreachable")
	runner := &mockRunner{}
	runner.On("Run", mock.Anything, "birthday", RunOptions{DryRun: true}).
		Return((*Result)(nil), boom).Once()

	sched, err := NewScheduler(runner, nil, quietLogger())
	require.NoError(t, err)

	_, err = sched.Run(context.Background(), "birthday", RunOptions{DryRun: true})
	require.ErrorIs(t, err, boom)
	runner.AssertExpectations(t)
}

func TestScheduler_RunScheduledSkipsWhenBusy(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner()
	sched, err := NewScheduler(runner, nil, quietLogger())
	require.NoError(t, err)

	lock := sched.lockFor("birthday")
	lock.Lock()
	sched.runScheduled("birthday")
	lock.Unlock()

	assert.Zero(t, runner.calls.Load())
}

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, name string, opts RunOptions) (*Result, error) {
	args := m.Called(ctx, name, opts)
	return args.Get(0).(*Result), args.Error(1)
}
