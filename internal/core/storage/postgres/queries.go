package postgres

// SQL queries for transaction and tag definition storage.

const (
	// queryInsertTransaction inserts one row of a Save batch.
	// ON CONFLICT DO NOTHING returns no rows (sql.ErrNoRows) for duplicates.
	queryInsertTransaction = `
		INSERT INTO transactions (
			id, occurred_at, amount, currency, amount_cur, description, tags
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
		RETURNING id
	`

	// queryLoadTransactions reads a datetime range. NULL bounds are open.
	queryLoadTransactions = `
		SELECT
			id, occurred_at, amount, currency, amount_cur, description, tags
		FROM transactions
		WHERE ($1::timestamptz IS NULL OR occurred_at >= $1)
		  AND ($2::timestamptz IS NULL OR occurred_at < $2)
		ORDER BY occurred_at ASC, id ASC
	`

	queryUpdateTags = `
		UPDATE transactions
		SET tags = $1
		WHERE id = $2
	`

	queryGetTagDefinition = `
		SELECT name, conditions, fingerprint, updated_at
		FROM tag_definitions
		WHERE name = $1
	`

	queryListTagDefinitions = `
		SELECT name, conditions, fingerprint, updated_at
		FROM tag_definitions
		ORDER BY name ASC
	`

	// queryUpsertTagDefinition replaces the definition with the same name.
	queryUpsertTagDefinition = `
		INSERT INTO tag_definitions (name, conditions, fingerprint, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			conditions  = EXCLUDED.conditions,
			fingerprint = EXCLUDED.fingerprint,
			updated_at  = EXCLUDED.updated_at
	`

	queryDeleteTagDefinition = `DELETE FROM tag_definitions WHERE name = $1`

	queryTableExists = `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = $1
		)
	`
)
