package tags

import "context"

// Repository defines the interface for tag definition storage.
type Repository interface {
	// Get retrieves a definition by name. Returns ErrNotFound if not found.
	Get(ctx context.Context, name string) (*Definition, error)

	// List returns every definition ordered by name.
	List(ctx context.Context) ([]*Definition, error)

	// Save creates or replaces the definition with the same name.
	Save(ctx context.Context, def *Definition) error

	// Delete removes a definition. Returns ErrNotFound if not found.
	Delete(ctx context.Context, name string) error
}
