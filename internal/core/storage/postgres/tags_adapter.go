package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spendlens/spendlens/internal/tags"
)

// TagRepository implements tags.Repository on the tag_definitions table.
type TagRepository struct {
	db *sql.DB
}

// NewTagRepository shares an open connection, usually Adapter.DB().
func NewTagRepository(db *sql.DB) (*TagRepository, error) {
	if err := validateSchema(db, "tag_definitions"); err != nil {
		return nil, fmt.Errorf("schema validation failed - did you run migrations?: %w", err)
	}
	return &TagRepository{db: db}, nil
}

func (r *TagRepository) Get(ctx context.Context, name string) (*tags.Definition, error) {
	def, err := scanDefinitionRow(r.db.QueryRowContext(ctx, queryGetTagDefinition, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tags.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag %q: %w", name, err)
	}
	return def, nil
}

func (r *TagRepository) List(ctx context.Context) ([]*tags.Definition, error) {
	rows, err := r.db.QueryContext(ctx, queryListTagDefinitions)
	if err != nil {
		return nil, fmt.Errorf("failed to query tag definitions: %w", err)
	}
	defer rows.Close()

	defs := make([]*tags.Definition, 0)
	for rows.Next() {
		def, err := scanDefinitionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag definition: %w", err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag definitions: %w", err)
	}
	return defs, nil
}

func (r *TagRepository) Save(ctx context.Context, def *tags.Definition) error {
	raw, err := marshalConditions(def)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, queryUpsertTagDefinition,
		def.Name, raw, def.Fingerprint, def.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save tag %q: %w", def.Name, err)
	}

	slog.Debug("[Postgres] Saved tag definition", "name", def.Name, "fingerprint", def.Fingerprint)
	return nil
}

func (r *TagRepository) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, queryDeleteTagDefinition, name)
	if err != nil {
		return fmt.Errorf("failed to delete tag %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return tags.ErrNotFound
	}
	return nil
}

var _ tags.Repository = (*TagRepository)(nil)
