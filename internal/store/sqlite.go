package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver" // registers the "sqlite3" database/sql driver
	_ "github.com/ncruces/go-sqlite3/embed"  // bundles the SQLite wasm build

	domain "github.com/donaldgifford/watchlist/pkg/types"
)

// Timestamps are stored as Unix nanoseconds so ordering and round-trips do
// not depend on driver time formatting.
const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS price_points (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		identity    TEXT    NOT NULL,
		price       INTEGER NOT NULL CHECK (price >= 0),
		metadata    TEXT    NOT NULL DEFAULT '{}',
		observed_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_price_points_identity_seq ON price_points (identity, seq);
	CREATE INDEX IF NOT EXISTS idx_price_points_identity_price ON price_points (identity, price);
	CREATE TABLE IF NOT EXISTS runs (
		id           TEXT    PRIMARY KEY,
		watchlist    TEXT    NOT NULL,
		started_at   INTEGER NOT NULL,
		completed_at INTEGER,
		status       TEXT    NOT NULL DEFAULT 'running',
		item_count   INTEGER NOT NULL DEFAULT 0,
		change_count INTEGER NOT NULL DEFAULT 0,
		error_count  INTEGER NOT NULL DEFAULT 0,
		error_text   TEXT    NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_runs_watchlist_started ON runs (watchlist, started_at DESC);`

const (
	sqliteAppend = `
		INSERT INTO price_points (identity, price, metadata, observed_at)
		VALUES (?, ?, ?, ?)`
	sqliteExists = `
		SELECT EXISTS(SELECT 1 FROM price_points WHERE identity = ?)`
	sqliteLast = `
		SELECT ` + pricePointColumns + ` FROM price_points
		WHERE identity = ? ORDER BY seq DESC LIMIT 1`
	sqliteFirst = `
		SELECT ` + pricePointColumns + ` FROM price_points
		WHERE identity = ? ORDER BY seq ASC LIMIT 1`
	sqliteCheapest = `
		SELECT ` + pricePointColumns + ` FROM price_points
		WHERE identity = ? AND price > 0 ORDER BY price ASC, seq ASC LIMIT 1`
	sqliteRichest = `
		SELECT ` + pricePointColumns + ` FROM price_points
		WHERE identity = ? AND price > 0 ORDER BY price DESC, seq ASC LIMIT 1`
	sqliteHistory = `
		SELECT ` + pricePointColumns + ` FROM price_points
		WHERE identity = ? ORDER BY seq ASC`
	sqliteCount = `
		SELECT COUNT(*) FROM price_points WHERE identity = ?`
	sqliteCountAtPrice = `
		SELECT COUNT(*) FROM price_points WHERE identity = ? AND price = ?`
	sqliteInsertRun = `
		INSERT INTO runs (id, watchlist, started_at, status) VALUES (?, ?, ?, 'running')`
	sqliteCompleteRun = `
		UPDATE runs SET completed_at = ?, status = ?, item_count = ?,
			change_count = ?, error_count = ?, error_text = ?
		WHERE id = ?`
)

// SQLiteStore implements Store on an embedded SQLite database. It suits
// single-user deployments and tests; a run is sequential, so one
// connection is enough.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens the database at dsn ("file:watchlist.db", ":memory:").
// Failure to open it is reported as ErrConnection.
func NewSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening sqlite: %w", ErrConnection, err)
	}

	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: pinging sqlite: %w", ErrConnection, err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() {
	_ = s.db.Close()
}

// Ping verifies the database is usable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	return nil
}

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("creating sqlite schema: %w", err)
	}
	return nil
}

// Append inserts a price point and records its assigned sequence number.
func (s *SQLiteStore) Append(ctx context.Context, p *domain.PricePoint) error {
	if err := requireIdentity(p.Identity); err != nil {
		return err
	}

	md, err := p.MarshalMetadata()
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	res, err := s.db.ExecContext(ctx, sqliteAppend,
		p.Identity, p.Price, string(md), p.ObservedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("appending price point: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading price point seq: %w", err)
	}
	p.Seq = seq
	return nil
}

// Exists reports whether identity has any recorded history.
func (s *SQLiteStore) Exists(ctx context.Context, identity string) (bool, error) {
	if err := requireIdentity(identity); err != nil {
		return false, err
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, sqliteExists, identity).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking history: %w", err)
	}
	return exists, nil
}

// Last returns the most recently appended point for identity.
func (s *SQLiteStore) Last(ctx context.Context, identity string) (*domain.PricePoint, error) {
	return s.queryOne(ctx, sqliteLast, identity)
}

// First returns the earliest appended point for identity.
func (s *SQLiteStore) First(ctx context.Context, identity string) (*domain.PricePoint, error) {
	return s.queryOne(ctx, sqliteFirst, identity)
}

// Cheapest returns the lowest non-zero price point for identity.
func (s *SQLiteStore) Cheapest(ctx context.Context, identity string) (*domain.PricePoint, error) {
	return s.queryOne(ctx, sqliteCheapest, identity)
}

// Richest returns the highest price point for identity.
func (s *SQLiteStore) Richest(ctx context.Context, identity string) (*domain.PricePoint, error) {
	return s.queryOne(ctx, sqliteRichest, identity)
}

// History returns every point for identity, oldest first.
func (s *SQLiteStore) History(ctx context.Context, identity string) ([]domain.PricePoint, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, sqliteHistory, identity)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		if err := scanSQLitePricePoint(rows, &p); err != nil {
			return nil, fmt.Errorf("scanning price point: %w", err)
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

// Count returns the number of points recorded for identity.
func (s *SQLiteStore) Count(ctx context.Context, identity string) (int, error) {
	if err := requireIdentity(identity); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, sqliteCount, identity).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting history: %w", err)
	}
	return count, nil
}

// CountAtPrice returns how many times identity was recorded at price.
func (s *SQLiteStore) CountAtPrice(ctx context.Context, identity string, price int64) (int, error) {
	if err := requireIdentity(identity); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, sqliteCountAtPrice, identity, price).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting price observations: %w", err)
	}
	return count, nil
}

// InsertRun records the start of a watchlist check and returns its id.
func (s *SQLiteStore) InsertRun(ctx context.Context, watchlist string) (string, error) {
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, sqliteInsertRun,
		id, watchlist, s.now().UnixNano(),
	); err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a run as finished with its status and counts.
func (s *SQLiteStore) CompleteRun(ctx context.Context, r *domain.Run) error {
	res, err := s.db.ExecContext(ctx, sqliteCompleteRun,
		s.now().UnixNano(), r.Status, r.ItemCount, r.ChangeCount,
		r.ErrorCount, r.ErrorText, r.ID,
	)
	if err != nil {
		return fmt.Errorf("completing run: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("completing run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("completing run %s: %w", r.ID, ErrNotFound)
	}
	return nil
}

// ListRuns returns runs matching q, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, q *RunQuery) ([]domain.Run, error) {
	if q == nil {
		q = &RunQuery{}
	}
	query, args := q.ToSQL(questionPlaceholder)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		var (
			r         domain.Run
			started   int64
			completed sql.NullInt64
		)
		if err := rows.Scan(
			&r.ID, &r.Watchlist, &started, &completed, &r.Status,
			&r.ItemCount, &r.ChangeCount, &r.ErrorCount, &r.ErrorText,
		); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt = time.Unix(0, started).UTC()
		if completed.Valid {
			t := time.Unix(0, completed.Int64).UTC()
			r.CompletedAt = &t
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

func (s *SQLiteStore) queryOne(
	ctx context.Context,
	query string,
	identity string,
) (*domain.PricePoint, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}

	p := &domain.PricePoint{}
	err := scanSQLitePricePoint(s.db.QueryRowContext(ctx, query, identity), p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying price point: %w", err)
	}
	return p, nil
}

func scanSQLitePricePoint(row scannable, p *domain.PricePoint) error {
	var (
		md       string
		observed int64
	)
	if err := row.Scan(&p.Seq, &p.Identity, &p.Price, &md, &observed); err != nil {
		return err
	}
	p.ObservedAt = time.Unix(0, observed).UTC()
	return unmarshalMetadata([]byte(md), p)
}
