package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pathlab/labledger/internal/domain/labcase"
)

type CaseRepository struct {
	db *gorm.DB
}

func NewCaseRepository(db *gorm.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

func (r *CaseRepository) Create(ctx context.Context, c *labcase.Case) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("inserting case: %w", err)
	}
	return nil
}

func (r *CaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*labcase.Case, error) {
	var c labcase.Case
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, labcase.ErrCaseNotFound
		}
		return nil, fmt.Errorf("loading case: %w", err)
	}
	return &c, nil
}

// Mutate serializes concurrent mutations of the same case on a row lock so
// the derived fields (due, commission, statuses) always commit together.
// Unrelated cases are never blocked. If fn fails the transaction rolls back
// and the stored record is left exactly as it was.
func (r *CaseRepository) Mutate(ctx context.Context, id uuid.UUID, fn func(c *labcase.Case) error) (*labcase.Case, error) {
	var c labcase.Case

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&c, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return labcase.ErrCaseNotFound
			}
			return fmt.Errorf("locking case: %w", err)
		}

		if err := fn(&c); err != nil {
			return err
		}

		if err := tx.Save(&c).Error; err != nil {
			return fmt.Errorf("saving case: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *CaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Hard delete: the ledger keeps no tombstones.
	res := r.db.WithContext(ctx).Unscoped().Delete(&labcase.Case{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting case: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return labcase.ErrCaseNotFound
	}
	return nil
}

func (r *CaseRepository) List(ctx context.Context, q *labcase.ListCasesQuery) ([]*labcase.Case, error) {
	query := r.db.WithContext(ctx).Model(&labcase.Case{})

	if q != nil && q.CollectorID != nil {
		query = query.Where("user_id = ?", *q.CollectorID)
	}

	var cases []*labcase.Case
	if err := query.Order("date DESC, created_at DESC").Find(&cases).Error; err != nil {
		return nil, fmt.Errorf("listing cases: %w", err)
	}
	return cases, nil
}
