package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/watchlist/internal/metrics"
	"github.com/donaldgifford/watchlist/internal/notify"
	"github.com/donaldgifford/watchlist/internal/store"
	"github.com/donaldgifford/watchlist/internal/wishlist"
	"github.com/donaldgifford/watchlist/pkg/logger"
	domain "github.com/donaldgifford/watchlist/pkg/types"
)

const (
	defaultMaxErrors          = 25
	defaultMaxInitialFailures = 10

	tracerName = "github.com/donaldgifford/watchlist/internal/engine"
)

// Digest kinds used for metrics and logs.
const (
	kindSuccess = "success"
	kindErrors  = "errors"
)

// Engine checks a watchlist against its stored price history and mails a
// digest of what changed.
type Engine struct {
	store  store.Store
	source wishlist.Source
	mailer notify.Mailer
	log    *slog.Logger
	tracer trace.Tracer
	meter  metric.Meter

	runItems metric.Int64Histogram

	maxErrors          int
	maxInitialFailures int
	maxPages           int
	successPath        string
	errorPath          string
	dryRun             bool
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(
	s store.Store,
	src wishlist.Source,
	m notify.Mailer,
	opts ...EngineOption,
) *Engine {
	eng := &Engine{
		store:              s,
		source:             src,
		mailer:             m,
		log:                slog.Default(),
		tracer:             otel.Tracer(tracerName),
		meter:              otel.Meter(tracerName),
		maxErrors:          defaultMaxErrors,
		maxInitialFailures: defaultMaxInitialFailures,
	}
	for _, opt := range opts {
		opt(eng)
	}

	hist, err := eng.meter.Int64Histogram("watchlist.run.items",
		metric.WithDescription("Items seen per watchlist run."),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		eng.log.Warn("creating run items instrument", logger.KeyError, err)
	}
	eng.runItems = hist
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithTracer sets the tracer used for run and item spans.
func WithTracer(t trace.Tracer) EngineOption {
	return func(e *Engine) {
		e.tracer = t
	}
}

// WithMeter sets the OpenTelemetry meter for run instruments.
func WithMeter(m metric.Meter) EngineOption {
	return func(e *Engine) {
		e.meter = m
	}
}

// WithMaxErrors sets how many item errors a run tolerates before stopping.
func WithMaxErrors(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxErrors = n
		}
	}
}

// WithMaxInitialFailures stops a run early when this many items fail and
// none has succeeded.
func WithMaxInitialFailures(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxInitialFailures = n
		}
	}
}

// WithMaxPages caps the pages fetched per run.
func WithMaxPages(n int) EngineOption {
	return func(e *Engine) {
		e.maxPages = n
	}
}

// WithDumpPaths writes the rendered success and error bodies to the given
// files on every run. Empty paths are skipped.
func WithDumpPaths(successPath, errorPath string) EngineOption {
	return func(e *Engine) {
		e.successPath = successPath
		e.errorPath = errorPath
	}
}

// WithDryRun makes every run skip store writes and email delivery.
func WithDryRun(dryRun bool) EngineOption {
	return func(e *Engine) {
		e.dryRun = dryRun
	}
}

// RunOptions adjusts a single run.
type RunOptions struct {
	DryRun    bool
	StartPage int
}

// Result summarizes one run.
type Result struct {
	RunID      string              `json:"run_id"`
	Watchlist  string              `json:"watchlist"`
	Status     string              `json:"status"`
	DryRun     bool                `json:"dry_run"`
	Items      int                 `json:"items"`
	Appended   int                 `json:"appended"`
	Changes    int                 `json:"changes"`
	Errors     int                 `json:"errors"`
	PagesUsed  int                 `json:"pages_used"`
	StoppedAt  wishlist.StopReason `json:"stopped_at,omitempty"`
	Reportable bool                `json:"reportable"`
	Sent       bool                `json:"sent"`
	ErrorsSent bool                `json:"errors_sent"`
	Duration   time.Duration       `json:"duration"`
}

// run carries the mutable state of one Run call.
type run struct {
	name   string
	dryRun bool
	log    *slog.Logger
	digest *Digest
	result *Result
	items  int
	errs   int
	broken bool
}

// Run checks one watchlist. Changes are bucketed into a digest which is
// always flushed before Run returns, even when the run is aborted. The
// returned error is non-nil only for fatal conditions: an unreachable store,
// a source failure (including robot detection) or cancellation.
func (eng *Engine) Run(ctx context.Context, name string, opts RunOptions) (*Result, error) {
	start := time.Now()

	ctx, span := eng.tracer.Start(ctx, "watchlist.run",
		trace.WithAttributes(attribute.String("watchlist.name", name)),
	)
	defer span.End()

	r := eng.newRun(name, opts)

	if err := eng.store.Ping(ctx); err != nil {
		err = fmt.Errorf("checking store before run: %w", err)
		span.SetStatus(codes.Error, err.Error())
		return eng.fatal(ctx, r, err, start), err
	}

	runID, err := eng.store.InsertRun(ctx, name)
	if err != nil {
		runID = uuid.NewString()
		eng.log.Warn("recording run start failed",
			logger.KeyWatchlist, name,
			logger.KeyError, err,
		)
	}
	r.result.RunID = runID
	r.log = logger.ForRun(eng.log, runID, name)
	span.SetAttributes(attribute.String("watchlist.run_id", runID))

	r.log.Info("run starting", "dry_run", r.dryRun, "start_page", opts.StartPage)

	var pOpts []wishlist.PaginatorOption
	pOpts = append(pOpts, wishlist.WithPaginatorLogger(r.log))
	if eng.maxPages > 0 {
		pOpts = append(pOpts, wishlist.WithMaxPages(eng.maxPages))
	}
	pager := wishlist.NewPaginator(eng.source, pOpts...)

	pr, pageErr := pager.Paginate(ctx, name, opts.StartPage,
		func(ctx context.Context, e wishlist.Entry) bool {
			return eng.handleEntry(ctx, r, e)
		},
	)

	r.result.Items = r.items
	r.result.Errors = r.errs
	r.result.PagesUsed = pr.PagesUsed
	r.result.StoppedAt = pr.StoppedAt

	var runErr error
	switch {
	case ctx.Err() != nil:
		r.result.Status = domain.RunAborted
		runErr = fmt.Errorf("run canceled: %w", ctx.Err())
	case pageErr != nil:
		if errors.Is(pageErr, wishlist.ErrRobotDetected) {
			r.result.Status = domain.RunAborted
		} else {
			r.result.Status = domain.RunFailed
		}
		runErr = fmt.Errorf("paginating %s: %w", name, pageErr)
		r.digest.AddError(ItemError{
			Message: runErr.Error(),
			Stack:   string(debug.Stack()),
			Page:    pr.LastPage + 1,
		})
	case r.broken:
		r.result.Status = domain.RunFailed
	default:
		r.result.Status = domain.RunSucceeded
	}

	if runErr != nil {
		r.log.Error("run stopped", "status", r.result.Status, logger.KeyError, runErr)
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
	}

	r.log.Info("done with wishlist",
		"items", r.items,
		"changes", r.digest.Changes(),
		"errors", r.errs,
		"pages", pr.PagesUsed,
		"stopped_at", pr.StoppedAt,
	)

	eng.flush(ctx, r)
	eng.complete(ctx, r, runErr, start)
	eng.observe(ctx, r, start)

	return r.result, runErr
}

func (eng *Engine) newRun(name string, opts RunOptions) *run {
	r := &run{
		name:   name,
		dryRun: eng.dryRun || opts.DryRun,
		digest: NewDigest(name),
		result: &Result{Watchlist: name, Status: domain.RunRunning},
	}
	r.result.DryRun = r.dryRun
	return r
}

// ReportFatal reports a run of name that could not start because of err.
// The error digest carrying err is flushed and the run is counted as
// failed. The store is never touched, so this serves callers that could
// not open it at all.
func (eng *Engine) ReportFatal(ctx context.Context, name string, opts RunOptions, err error) *Result {
	return eng.fatal(ctx, eng.newRun(name, opts), err, time.Now())
}

func (eng *Engine) fatal(ctx context.Context, r *run, err error, start time.Time) *Result {
	r.log = logger.ForRun(eng.log, "", r.name)
	r.log.Error("store unreachable, aborting run", logger.KeyError, err)
	r.digest.AddError(ItemError{Message: err.Error(), Stack: string(debug.Stack())})
	r.result.Status = domain.RunFailed
	eng.flush(ctx, r)
	eng.observe(ctx, r, start)
	return r.result
}

// handleEntry processes one entry and reports whether pagination should
// continue. Once ctx is done no further entries are taken and failures
// caused by the cancellation are not recorded; Run reports it instead.
func (eng *Engine) handleEntry(ctx context.Context, r *run, e wishlist.Entry) bool {
	if ctx.Err() != nil {
		return false
	}
	r.items++
	metrics.ItemsProcessedTotal.Inc()

	cat, stack, err := eng.processEntry(ctx, r, e)
	if err != nil {
		if ctx.Err() != nil {
			r.log.Debug("item interrupted",
				logger.KeyIdentity, e.UUID,
				logger.KeyError, err,
			)
			return false
		}
		r.errs++
		metrics.ItemErrorsTotal.Inc()
		if stack == nil {
			stack = debug.Stack()
		}
		r.digest.AddError(ItemError{
			Message:  fmt.Sprintf("%d. (p%d) %s: %v", r.items, e.Page, e.Title, err),
			Stack:    string(stack),
			Identity: e.UUID,
			Page:     e.Page,
		})
		r.log.Error("item failed",
			logger.KeyIdentity, e.UUID,
			logger.KeyPage, e.Page,
			logger.KeyError, err,
		)

		if eng.tripped(r.errs, r.items) {
			r.broken = true
			r.log.Error("too many errors, stopping run",
				"errors", r.errs,
				"items", r.items,
			)
			return false
		}
		return true
	}

	metrics.ItemChangesTotal.WithLabelValues(string(cat)).Inc()
	r.log.Debug("item checked",
		logger.KeyIdentity, e.UUID,
		logger.KeyPage, e.Page,
		logger.KeyCategory, cat,
	)
	return ctx.Err() == nil
}

// tripped reports whether the run has failed often enough to stop: more
// than maxErrors in total, or more than maxInitialFailures with no success.
func (eng *Engine) tripped(errs, items int) bool {
	return errs > eng.maxErrors ||
		(errs > eng.maxInitialFailures && errs == items)
}

// processEntry classifies one entry, persists it when warranted and files
// it in the digest. A panic is returned as an error with its stack.
func (eng *Engine) processEntry(
	ctx context.Context,
	r *run,
	e wishlist.Entry,
) (cat domain.Category, stack []byte, err error) {
	ctx, span := eng.tracer.Start(ctx, "watchlist.item",
		trace.WithAttributes(
			attribute.String("item.identity", e.UUID),
			attribute.Int("item.page", e.Page),
		),
	)
	defer span.End()

	defer func() {
		if v := recover(); v != nil {
			stack = debug.Stack()
			err = fmt.Errorf("panic: %v", v)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	p, err := e.PricePoint()
	if err != nil {
		return "", nil, err
	}

	item := NewItem(p, eng.store)
	cat, err = item.Classify(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("classifying: %w", err)
	}
	span.SetAttributes(attribute.String("item.category", string(cat)))

	snap, err := item.Snapshot(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("resolving history: %w", err)
	}

	if cat.Persisted() && !r.dryRun {
		if err := eng.store.Append(ctx, p); err != nil {
			return "", nil, fmt.Errorf("saving price point: %w", err)
		}
		r.result.Appended++
		metrics.PricePointsAppendedTotal.Inc()
	}

	r.digest.Record(snap, cat)
	return cat, nil, nil
}

// flush renders the digest, writes the configured dumps and delivers both
// messages. It runs detached from ctx cancellation so an aborted run still
// reports what it found.
func (eng *Engine) flush(ctx context.Context, r *run) {
	ctx = context.WithoutCancel(ctx)
	d := r.digest

	d.SetItemCount(r.items)
	r.result.Changes = d.Changes()
	r.result.Errors = len(d.Errors())
	r.result.Reportable = d.Reportable()

	if d.Reportable() {
		msg, err := d.Message()
		if err != nil {
			r.log.Error("rendering digest failed", logger.KeyError, err)
		} else {
			eng.dump(r.log, eng.successPath, msg.HTML)
			if !r.dryRun {
				r.result.Sent = eng.deliver(ctx, r.log, kindSuccess, msg)
			}
		}
	}

	if msg, ok := d.ErrorDigest(); ok {
		eng.dump(r.log, eng.errorPath, msg.Text)
		if !r.dryRun {
			r.result.ErrorsSent = eng.deliver(ctx, r.log, kindErrors, msg)
		}
	}
}

func (eng *Engine) dump(log *slog.Logger, path, body string) {
	if err := notify.WriteBody(path, body); err != nil {
		log.Warn("writing digest body failed", "path", path, logger.KeyError, err)
	}
}

// deliver sends msg and reports whether the provider accepted it. Failures
// are logged and counted, never retried.
func (eng *Engine) deliver(ctx context.Context, log *slog.Logger, kind string, msg notify.Message) bool {
	ctx, span := eng.tracer.Start(ctx, "watchlist.deliver",
		trace.WithAttributes(attribute.String("digest.kind", kind)),
	)
	defer span.End()

	if err := eng.mailer.Send(ctx, msg); err != nil {
		metrics.DeliveryFailuresTotal.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		var de *notify.DeliveryError
		if errors.As(err, &de) {
			log.Error("digest rejected",
				"kind", kind,
				"status_code", de.StatusCode,
				logger.KeyError, err,
			)
		} else {
			log.Error("digest delivery failed", "kind", kind, logger.KeyError, err)
		}
		return false
	}

	metrics.DigestsSentTotal.WithLabelValues(kind).Inc()
	log.Info("digest sent", "kind", kind, "subject", msg.Subject)
	return true
}

// complete records the run outcome. Failures are logged only.
func (eng *Engine) complete(ctx context.Context, r *run, runErr error, start time.Time) {
	ctx = context.WithoutCancel(ctx)

	completed := time.Now().UTC()
	row := &domain.Run{
		ID:          r.result.RunID,
		Watchlist:   r.name,
		StartedAt:   start.UTC(),
		CompletedAt: &completed,
		Status:      r.result.Status,
		ItemCount:   r.result.Items,
		ChangeCount: r.result.Changes,
		ErrorCount:  r.result.Errors,
	}
	switch {
	case runErr != nil:
		row.ErrorText = runErr.Error()
	case r.broken:
		row.ErrorText = fmt.Sprintf("stopped after %d errors in %d items", r.errs, r.items)
	}

	if err := eng.store.CompleteRun(ctx, row); err != nil {
		r.log.Warn("recording run completion failed", logger.KeyError, err)
	}
}

func (eng *Engine) observe(ctx context.Context, r *run, start time.Time) {
	r.result.Duration = time.Since(start)
	metrics.RunsTotal.WithLabelValues(r.name, r.result.Status).Inc()
	metrics.RunDuration.WithLabelValues(r.name).Observe(r.result.Duration.Seconds())
	metrics.LastRunTimestamp.WithLabelValues(r.name).SetToCurrentTime()

	if eng.runItems != nil {
		eng.runItems.Record(context.WithoutCancel(ctx), int64(r.items), metric.WithAttributes(
			attribute.String("watchlist.name", r.name),
			attribute.String("watchlist.status", r.result.Status),
		))
	}
}
