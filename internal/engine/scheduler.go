package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/watchlist/pkg/logger"
)

// ErrRunInProgress is returned when a watchlist is already being checked.
var ErrRunInProgress = errors.New("run already in progress")

// Runner runs one check of a watchlist.
type Runner interface {
	Run(ctx context.Context, name string, opts RunOptions) (*Result, error)
}

// Schedule is one periodically checked watchlist.
type Schedule struct {
	Name     string
	Interval time.Duration
}

// Scheduler checks watchlists on a schedule. Runs of the same watchlist
// never overlap, whether started by cron or by Run.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	log    *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewScheduler creates a new Scheduler with one cron entry per schedule.
func NewScheduler(r Runner, schedules []Schedule, log *slog.Logger) (*Scheduler, error) {
	if log == nil {
		log = slog.Default()
	}

	s := &Scheduler{
		cron:   cron.New(),
		runner: r,
		log:    log,
		locks:  make(map[string]*sync.Mutex, len(schedules)),
	}

	for _, sc := range schedules {
		if sc.Interval <= 0 {
			return nil, fmt.Errorf("watchlist %q: interval must be positive", sc.Name)
		}
		name := sc.Name
		if _, err := s.cron.AddFunc("@every "+sc.Interval.String(), func() {
			s.runScheduled(name)
		}); err != nil {
			return nil, fmt.Errorf("scheduling %q: %w", name, err)
		}
	}

	return s, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started", "entries", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// Run checks name now. It fails with ErrRunInProgress instead of waiting
// when the watchlist is already being checked.
func (s *Scheduler) Run(ctx context.Context, name string, opts RunOptions) (*Result, error) {
	lock := s.lockFor(name)
	if !lock.TryLock() {
		return nil, fmt.Errorf("watchlist %q: %w", name, ErrRunInProgress)
	}
	defer lock.Unlock()

	return s.runner.Run(ctx, name, opts)
}

func (s *Scheduler) lockFor(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}

func (s *Scheduler) runScheduled(name string) {
	log := s.log.With(logger.KeyWatchlist, name)
	log.Info("scheduled run starting")

	res, err := s.Run(context.Background(), name, RunOptions{})
	switch {
	case errors.Is(err, ErrRunInProgress):
		log.Warn("previous run still in progress, skipping")
	case err != nil:
		log.Error("scheduled run failed", logger.KeyError, err)
	default:
		log.Info("scheduled run finished", "status", res.Status, "items", res.Items)
	}
}
