package labcase

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new case record.
	Create(ctx context.Context, c *Case) error

	// GetByID retrieves a case by primary key. Returns ErrCaseNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*Case, error)

	// Mutate runs fn against the current record inside a transaction that
	// holds a row-level lock, then saves the result. If fn returns an error
	// nothing is written and the stored record is untouched. Concurrent
	// mutations of the same case serialize on the row; unrelated cases are
	// not blocked.
	Mutate(ctx context.Context, id uuid.UUID, fn func(c *Case) error) (*Case, error)

	// Delete removes the record permanently. Returns ErrCaseNotFound if the
	// id does not resolve.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns cases matching the query, newest first.
	List(ctx context.Context, q *ListCasesQuery) ([]*Case, error)
}
