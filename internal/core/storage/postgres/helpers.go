package postgres

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/spendlens/spendlens/internal/core/ledger"
	"github.com/spendlens/spendlens/internal/tags"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTransactionRow scans a transactions row. Compatible with sql.Row and sql.Rows.
func scanTransactionRow(row scanner) (ledger.Transaction, error) {
	var (
		t       ledger.Transaction
		tagList []string
	)
	err := row.Scan(
		&t.ID,
		&t.DateTime,
		&t.Amount,
		&t.Currency,
		&t.AmountCur,
		&t.Description,
		pq.Array(&tagList),
	)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("failed to scan transaction row: %w", err)
	}
	t.DateTime = t.DateTime.UTC()
	t.Tags = ledger.NewTagSet(tagList...)
	return t, nil
}

// nullTime maps the zero time to SQL NULL so range bounds stay open.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// marshalConditions stores a rule definition as JSON.
func marshalConditions(def *tags.Definition) ([]byte, error) {
	raw, err := json.Marshal(def.Conditions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal conditions for tag %q: %w", def.Name, err)
	}
	return raw, nil
}

// scanDefinitionRow scans a tag_definitions row. Conditions are decoded with
// UseNumber so numeric literals keep their exact text.
func scanDefinitionRow(row scanner) (*tags.Definition, error) {
	var (
		def tags.Definition
		raw []byte
	)
	if err := row.Scan(&def.Name, &raw, &def.Fingerprint, &def.UpdatedAt); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&def.Conditions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conditions for tag %q: %w", def.Name, err)
	}
	def.UpdatedAt = def.UpdatedAt.UTC()
	return &def, nil
}

// validateSchema checks that every named table exists.
// Returns an error if one is missing (migrations not run).
func validateSchema(db *sql.DB, tables ...string) error {
	for _, table := range tables {
		var exists bool
		if err := db.QueryRow(queryTableExists, table).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check schema: %w", err)
		}
		if !exists {
			return fmt.Errorf("%s table does not exist", table)
		}
	}
	return nil
}
