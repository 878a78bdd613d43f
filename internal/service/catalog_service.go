package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pathlab/labledger/internal/domain"
	"github.com/pathlab/labledger/internal/domain/labtest"
)

// CatalogService manages the billable test catalog. All writes are
// admin-capability operations; reads back the new-case selection UI.
type CatalogService struct {
	repo labtest.Repository
	log  *zap.Logger
}

func NewCatalogService(repo labtest.Repository, log *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, log: log}
}

func (s *CatalogService) CreateTest(ctx context.Context, cmd *labtest.CreateTestCommand, actor domain.Actor) (*labtest.Test, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(cmd.Name) == "" {
		return nil, labtest.ErrNameRequired
	}
	if cmd.Rate < 0 {
		return nil, labtest.ErrInvalidRate
	}

	t := &labtest.Test{
		Name:   strings.TrimSpace(cmd.Name),
		Rate:   cmd.Rate,
		Status: labtest.StatusActive,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		s.log.Error("failed to create test", zap.Error(err))
		return nil, fmt.Errorf("creating test: %w", err)
	}

	s.log.Info("test created",
		zap.String("test_id", t.ID.String()),
		zap.Float64("rate", t.Rate),
	)
	return t, nil
}

func (s *CatalogService) UpdateTest(ctx context.Context, id uuid.UUID, cmd *labtest.UpdateTestCommand, actor domain.Actor) (*labtest.Test, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if cmd.Rate != nil && *cmd.Rate < 0 {
		return nil, labtest.ErrInvalidRate
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		if strings.TrimSpace(*cmd.Name) == "" {
			return nil, labtest.ErrNameRequired
		}
		t.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.Rate != nil {
		t.Rate = *cmd.Rate
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("updating test: %w", err)
	}
	return t, nil
}

// ToggleTestStatus suspends or reactivates a catalog entry. Suspended tests
// stay priced on historical cases but disappear from new-case selection.
func (s *CatalogService) ToggleTestStatus(ctx context.Context, id uuid.UUID, actor domain.Actor) (*labtest.Test, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	t.ToggleStatus()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("toggling test status: %w", err)
	}

	s.log.Info("test status toggled",
		zap.String("test_id", id.String()),
		zap.String("status", string(t.Status)),
	)
	return t, nil
}

func (s *CatalogService) DeleteTest(ctx context.Context, id uuid.UUID, actor domain.Actor) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func (s *CatalogService) ListTests(ctx context.Context, activeOnly bool) ([]*labtest.Test, error) {
	return s.repo.List(ctx, activeOnly)
}
