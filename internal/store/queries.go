package store

// SQL query constants for PostgreSQL. SQLite variants live in sqlite.go.

const pricePointColumns = `seq, identity, price, metadata, observed_at`

// Price point queries.
const (
	queryAppendPricePoint = `
		INSERT INTO price_points (identity, price, metadata, observed_at)
		VALUES ($1, $2, $3, $4)
		RETURNING seq`

	queryExists = `
		SELECT EXISTS(SELECT 1 FROM price_points WHERE identity = $1)`

	queryLast = `
		SELECT ` + pricePointColumns + `
		FROM price_points
		WHERE identity = $1
		ORDER BY seq DESC
		LIMIT 1`

	queryFirst = `
		SELECT ` + pricePointColumns + `
		FROM price_points
		WHERE identity = $1
		ORDER BY seq ASC
		LIMIT 1`

	queryCheapest = `
		SELECT ` + pricePointColumns + `
		FROM price_points
		WHERE identity = $1 AND price > 0
		ORDER BY price ASC, seq ASC
		LIMIT 1`

	queryRichest = `
		SELECT ` + pricePointColumns + `
		FROM price_points
		WHERE identity = $1 AND price > 0
		ORDER BY price DESC, seq ASC
		LIMIT 1`

	queryHistory = `
		SELECT ` + pricePointColumns + `
		FROM price_points
		WHERE identity = $1
		ORDER BY seq ASC`

	queryCount = `
		SELECT COUNT(*) FROM price_points WHERE identity = $1`

	queryCountAtPrice = `
		SELECT COUNT(*) FROM price_points WHERE identity = $1 AND price = $2`
)

// Run queries.
const (
	queryInsertRun = `
		INSERT INTO runs (watchlist, status)
		VALUES ($1, 'running')
		RETURNING id`

	queryCompleteRun = `
		UPDATE runs SET
			completed_at = now(),
			status = $2,
			item_count = $3,
			change_count = $4,
			error_count = $5,
			error_text = $6
		WHERE id = $1`
)
