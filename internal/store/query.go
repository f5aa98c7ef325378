package store

import (
	"fmt"
	"strings"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 200
)

const baseRunsSelect = `SELECT id, watchlist, started_at, completed_at, status,
	item_count, change_count, error_count, error_text
FROM runs`

// RunQuery defines optional filters for listing runs.
type RunQuery struct {
	Watchlist *string
	Status    *string
	Limit     int // default 20
}

// placeholder renders the n-th (1-based) bind parameter for a SQL dialect.
type placeholder func(n int) string

func dollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

func questionPlaceholder(int) string { return "?" }

// ToSQL builds the runs query, newest first, and its positional parameters.
func (q *RunQuery) ToSQL(ph placeholder) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	if q.Watchlist != nil {
		args = append(args, *q.Watchlist)
		conditions = append(conditions, "watchlist = "+ph(len(args)))
	}

	if q.Status != nil {
		args = append(args, *q.Status)
		conditions = append(conditions, "status = "+ph(len(args)))
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultRunLimit
	}
	if limit > maxRunLimit {
		limit = maxRunLimit
	}

	return fmt.Sprintf(
		"%s%s ORDER BY started_at DESC LIMIT %d",
		baseRunsSelect, whereClause, limit,
	), args
}
