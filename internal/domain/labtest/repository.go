package labtest

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new catalog entry.
	Create(ctx context.Context, t *Test) error

	// GetByID retrieves a test by primary key. Returns ErrTestNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*Test, error)

	// Update saves the full test record.
	Update(ctx context.Context, t *Test) error

	// Delete removes the catalog entry. Historical cases keep referencing
	// the id; rate resolution for it then reports unknown.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns the catalog, optionally restricted to active entries.
	List(ctx context.Context, activeOnly bool) ([]*Test, error)

	// ResolveRates maps each known id to its current rate. Unknown ids are
	// simply absent from the result.
	ResolveRates(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]float64, error)
}
