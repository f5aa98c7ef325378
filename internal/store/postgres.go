package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/donaldgifford/watchlist/pkg/types"
)

const defaultPoolSize = 4

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
// Its methods are covered by the integration-tagged tests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*pgxpool.Config)

// WithPoolSize sets the maximum number of pooled connections.
func WithPoolSize(n int) PostgresOption {
	return func(cfg *pgxpool.Config) {
		if n > 0 {
			cfg.MaxConns = int32(n) //nolint:gosec // pool sizes are small config values
		}
	}
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
// Failure to reach the server is reported as ErrConnection.
func NewPostgresStore(
	ctx context.Context,
	connString string,
	opts ...PostgresOption,
) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize
	for _, opt := range opts {
		opt(cfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: creating connection pool: %w", ErrConnection, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: pinging database: %w", ErrConnection, err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	return nil
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// Append inserts a price point and records its assigned sequence number.
func (s *PostgresStore) Append(ctx context.Context, p *domain.PricePoint) error {
	if err := requireIdentity(p.Identity); err != nil {
		return err
	}

	md, err := p.MarshalMetadata()
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	if err := s.pool.QueryRow(ctx, queryAppendPricePoint,
		p.Identity, p.Price, md, p.ObservedAt,
	).Scan(&p.Seq); err != nil {
		return fmt.Errorf("appending price point: %w", err)
	}
	return nil
}

// Exists reports whether identity has any recorded history.
func (s *PostgresStore) Exists(ctx context.Context, identity string) (bool, error) {
	if err := requireIdentity(identity); err != nil {
		return false, err
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, queryExists, identity).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking history: %w", err)
	}
	return exists, nil
}

// Last returns the most recently appended point for identity.
func (s *PostgresStore) Last(ctx context.Context, identity string) (*domain.PricePoint, error) {
	return s.queryOne(ctx, queryLast, identity)
}

// First returns the earliest appended point for identity.
func (s *PostgresStore) First(ctx context.Context, identity string) (*domain.PricePoint, error) {
	return s.queryOne(ctx, queryFirst, identity)
}

// Cheapest returns the lowest non-zero price point for identity.
func (s *PostgresStore) Cheapest(ctx context.Context, identity string) (*domain.PricePoint, error) {
	return s.queryOne(ctx, queryCheapest, identity)
}

// Richest returns the highest price point for identity.
func (s *PostgresStore) Richest(ctx context.Context, identity string) (*domain.PricePoint, error) {
	return s.queryOne(ctx, queryRichest, identity)
}

// History returns every point for identity, oldest first.
func (s *PostgresStore) History(ctx context.Context, identity string) ([]domain.PricePoint, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, queryHistory, identity)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		if err := scanPricePoint(rows, &p); err != nil {
			return nil, fmt.Errorf("scanning price point: %w", err)
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

// Count returns the number of points recorded for identity.
func (s *PostgresStore) Count(ctx context.Context, identity string) (int, error) {
	if err := requireIdentity(identity); err != nil {
		return 0, err
	}

	var count int
	if err := s.pool.QueryRow(ctx, queryCount, identity).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting history: %w", err)
	}
	return count, nil
}

// CountAtPrice returns how many times identity was recorded at price.
func (s *PostgresStore) CountAtPrice(ctx context.Context, identity string, price int64) (int, error) {
	if err := requireIdentity(identity); err != nil {
		return 0, err
	}

	var count int
	if err := s.pool.QueryRow(ctx, queryCountAtPrice, identity, price).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting price observations: %w", err)
	}
	return count, nil
}

// InsertRun records the start of a watchlist check and returns its UUID.
func (s *PostgresStore) InsertRun(ctx context.Context, watchlist string) (string, error) {
	var id string
	if err := s.pool.QueryRow(ctx, queryInsertRun, watchlist).Scan(&id); err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a run as finished with its status and counts.
func (s *PostgresStore) CompleteRun(ctx context.Context, r *domain.Run) error {
	tag, err := s.pool.Exec(ctx, queryCompleteRun,
		r.ID, r.Status, r.ItemCount, r.ChangeCount, r.ErrorCount, r.ErrorText,
	)
	if err != nil {
		return fmt.Errorf("completing run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("completing run %s: %w", r.ID, ErrNotFound)
	}
	return nil
}

// ListRuns returns runs matching q, newest first.
func (s *PostgresStore) ListRuns(ctx context.Context, q *RunQuery) ([]domain.Run, error) {
	if q == nil {
		q = &RunQuery{}
	}
	sql, args := q.ToSQL(dollarPlaceholder)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		var r domain.Run
		if err := rows.Scan(
			&r.ID, &r.Watchlist, &r.StartedAt, &r.CompletedAt, &r.Status,
			&r.ItemCount, &r.ChangeCount, &r.ErrorCount, &r.ErrorText,
		); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// queryOne runs a single-row price point query, mapping no rows to nil.
func (s *PostgresStore) queryOne(
	ctx context.Context,
	query string,
	identity string,
) (*domain.PricePoint, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}

	p := &domain.PricePoint{}
	err := scanPricePoint(s.pool.QueryRow(ctx, query, identity), p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying price point: %w", err)
	}
	return p, nil
}

// scannable abstracts pgx.Row, pgx.Rows and *sql.Row for reuse.
type scannable interface {
	Scan(dest ...any) error
}

// scanPricePoint scans a row selected with pricePointColumns.
func scanPricePoint(row scannable, p *domain.PricePoint) error {
	var md []byte
	if err := row.Scan(&p.Seq, &p.Identity, &p.Price, &md, &p.ObservedAt); err != nil {
		return err
	}
	return unmarshalMetadata(md, p)
}

func unmarshalMetadata(md []byte, p *domain.PricePoint) error {
	if len(md) == 0 {
		return nil
	}
	if err := json.Unmarshal(md, &p.Metadata); err != nil {
		return fmt.Errorf("unmarshaling metadata: %w", err)
	}
	return nil
}
