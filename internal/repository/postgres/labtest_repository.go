package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathlab/labledger/internal/domain/labtest"
)

type TestRepository struct {
	db *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{db: db}
}

func (r *TestRepository) Create(ctx context.Context, t *labtest.Test) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("inserting test: %w", err)
	}
	return nil
}

func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*labtest.Test, error) {
	var t labtest.Test
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, labtest.ErrTestNotFound
		}
		return nil, fmt.Errorf("loading test: %w", err)
	}
	return &t, nil
}

func (r *TestRepository) Update(ctx context.Context, t *labtest.Test) error {
	if err := r.db.WithContext(ctx).Save(t).Error; err != nil {
		return fmt.Errorf("updating test: %w", err)
	}
	return nil
}

func (r *TestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Unscoped().Delete(&labtest.Test{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting test: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return labtest.ErrTestNotFound
	}
	return nil
}

func (r *TestRepository) List(ctx context.Context, activeOnly bool) ([]*labtest.Test, error) {
	query := r.db.WithContext(ctx).Model(&labtest.Test{})
	if activeOnly {
		query = query.Where("status = ?", labtest.StatusActive)
	}

	var tests []*labtest.Test
	if err := query.Order("name ASC").Find(&tests).Error; err != nil {
		return nil, fmt.Errorf("listing tests: %w", err)
	}
	return tests, nil
}

func (r *TestRepository) ResolveRates(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]float64, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]float64{}, nil
	}

	var tests []*labtest.Test
	err := r.db.WithContext(ctx).
		Select("id", "rate").
		Where("id IN ?", ids).
		Find(&tests).Error
	if err != nil {
		return nil, fmt.Errorf("resolving test rates: %w", err)
	}

	rates := make(map[uuid.UUID]float64, len(tests))
	for _, t := range tests {
		rates[t.ID] = t.Rate
	}
	return rates, nil
}
