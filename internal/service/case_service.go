package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/pathlab/labledger/internal/domain"
	"github.com/pathlab/labledger/internal/domain/labcase"
	"github.com/pathlab/labledger/internal/domain/labtest"
	"github.com/pathlab/labledger/pkg/metrics"
)

type CaseService struct {
	repo     labcase.Repository
	testRepo labtest.Repository
	userRepo UserRepository
	metrics  *metrics.Collector
	log      *zap.Logger
	tracer   trace.Tracer
}

func NewCaseService(
	repo labcase.Repository,
	testRepo labtest.Repository,
	userRepo UserRepository,
	m *metrics.Collector,
	log *zap.Logger,
) *CaseService {
	return &CaseService{
		repo:     repo,
		testRepo: testRepo,
		userRepo: userRepo,
		metrics:  m,
		log:      log,
		tracer:   otel.Tracer("labledger/case-service"),
	}
}

func (s *CaseService) CreateCase(ctx context.Context, cmd *labcase.CreateCaseCommand, actor domain.Actor) (*labcase.Case, error) {
	ctx, span := s.tracer.Start(ctx, "CaseService.CreateCase")
	defer span.End()

	if err := validateCreateCase(cmd); err != nil {
		return nil, err
	}
	if cmd.AdvanceAmount < 0 {
		return nil, labcase.ErrInvalidAmount
	}
	if cmd.TotalAmount != nil && *cmd.TotalAmount < 0 {
		return nil, labcase.ErrInvalidAmount
	}

	// Collector attribution: the case belongs to the caller unless an admin
	// attributes it to someone else.
	collectorID := actor.ID
	if cmd.CollectorUserID != nil && *cmd.CollectorUserID != actor.ID {
		if !actor.IsAdmin() {
			return nil, ErrForbidden
		}
		collectorID = *cmd.CollectorUserID
	}

	collector, err := s.userRepo.GetByID(ctx, collectorID)
	if err != nil {
		return nil, fmt.Errorf("resolving collector: %w", err)
	}

	total := cmd.AdvanceAmount
	if cmd.TotalAmount != nil {
		total = *cmd.TotalAmount
	} else {
		total, err = s.sumTestRates(ctx, cmd.TestIDs)
		if err != nil {
			return nil, fmt.Errorf("pricing test selection: %w", err)
		}
	}

	delivery := labcase.DeliveryNotDelivered
	if cmd.DeliveryStatus != nil {
		delivery = *cmd.DeliveryStatus
	}

	c := &labcase.Case{
		PatientName:      strings.TrimSpace(cmd.PatientName),
		Age:              cmd.Age,
		Sex:              cmd.Sex,
		MobileNumber:     strings.TrimSpace(cmd.MobileNumber),
		TestIDs:          cmd.TestIDs,
		CommissionStatus: labcase.CommissionUnpaid,
		DeliveryStatus:   delivery,
		Notes:            cmd.Notes,
		Date:             time.Now(),
		UserID:           collector.ID,
		CollectedByName:  collector.DisplayName(),
		TestedByName:     strings.TrimSpace(cmd.TestedByName),
	}

	if err := c.ApplyAmounts(total, cmd.AdvanceAmount); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		s.log.Error("failed to create case", zap.Error(err))
		return nil, fmt.Errorf("creating case: %w", err)
	}

	s.metrics.CasesCreatedTotal.Inc()
	s.log.Info("case created",
		zap.String("case_id", c.ID.String()),
		zap.String("collector_id", collector.ID.String()),
		zap.Float64("total_amount", c.TotalAmount),
	)

	return c, nil
}

func (s *CaseService) GetCase(ctx context.Context, id uuid.UUID, actor domain.Actor) (*labcase.Case, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureCaseAccess(c, actor); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CaseService) ListCases(ctx context.Context, actor domain.Actor) ([]*labcase.Case, error) {
	return s.repo.List(ctx, visibleCasesQuery(actor))
}

func (s *CaseService) UpdateCase(ctx context.Context, id uuid.UUID, cmd *labcase.UpdateCaseCommand, actor domain.Actor) (*labcase.Case, error) {
	ctx, span := s.tracer.Start(ctx, "CaseService.UpdateCase")
	defer span.End()

	if cmd.Sex != nil && !cmd.Sex.IsValid() {
		return nil, labcase.ErrInvalidSex
	}
	if cmd.DeliveryStatus != nil && !cmd.DeliveryStatus.IsValid() {
		return nil, labcase.ErrInvalidDeliveryStatus
	}

	updated, err := s.repo.Mutate(ctx, id, func(c *labcase.Case) error {
		if err := ensureCaseAccess(c, actor); err != nil {
			return err
		}

		if cmd.PatientName != nil {
			c.PatientName = strings.TrimSpace(*cmd.PatientName)
		}
		if cmd.Age != nil {
			c.Age = *cmd.Age
		}
		if cmd.Sex != nil {
			c.Sex = *cmd.Sex
		}
		if cmd.MobileNumber != nil {
			c.MobileNumber = strings.TrimSpace(*cmd.MobileNumber)
		}
		if cmd.TestIDs != nil {
			// Selection edits alone never re-derive the billed total.
			c.TestIDs = *cmd.TestIDs
		}
		if cmd.DeliveryStatus != nil {
			c.DeliveryStatus = *cmd.DeliveryStatus
		}
		if cmd.Notes != nil {
			c.Notes = *cmd.Notes
		}
		if cmd.TestedByName != nil {
			c.TestedByName = strings.TrimSpace(*cmd.TestedByName)
		}

		if cmd.HasAmountChange() {
			total := c.TotalAmount
			if cmd.TotalAmount != nil {
				total = *cmd.TotalAmount
			}
			advance := c.AdvanceAmount
			if cmd.AdvanceAmount != nil {
				advance = *cmd.AdvanceAmount
			}
			return c.ApplyAmounts(total, advance)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("case updated",
		zap.String("case_id", id.String()),
		zap.Bool("amounts_recomputed", cmd.HasAmountChange()),
	)
	return updated, nil
}

func (s *CaseService) PayCommission(ctx context.Context, id uuid.UUID, amount float64, overrideTotal *float64, actor domain.Actor) (*labcase.Case, error) {
	ctx, span := s.tracer.Start(ctx, "CaseService.PayCommission")
	defer span.End()

	updated, err := s.repo.Mutate(ctx, id, func(c *labcase.Case) error {
		if err := ensureCaseAccess(c, actor); err != nil {
			return err
		}
		return c.PayCommission(amount, overrideTotal, paidByFor(actor))
	})
	if err != nil {
		return nil, err
	}

	s.metrics.CommissionPaymentsTotal.Inc()
	s.log.Info("commission payment applied",
		zap.String("case_id", id.String()),
		zap.Float64("amount", amount),
		zap.String("paid_by", string(paidByFor(actor))),
	)
	return updated, nil
}

func (s *CaseService) MarkCommissionFullyPaid(ctx context.Context, id uuid.UUID, actor domain.Actor) (*labcase.Case, error) {
	ctx, span := s.tracer.Start(ctx, "CaseService.MarkCommissionFullyPaid")
	defer span.End()

	updated, err := s.repo.Mutate(ctx, id, func(c *labcase.Case) error {
		if err := ensureCaseAccess(c, actor); err != nil {
			return err
		}
		return c.MarkCommissionFullyPaid(paidByFor(actor))
	})
	if err != nil {
		return nil, err
	}

	s.metrics.CommissionPaymentsTotal.Inc()
	s.log.Info("commission settled in full", zap.String("case_id", id.String()))
	return updated, nil
}

func (s *CaseService) WriteOffDue(ctx context.Context, id uuid.UUID, amount float64, actor domain.Actor) (*labcase.Case, error) {
	ctx, span := s.tracer.Start(ctx, "CaseService.WriteOffDue")
	defer span.End()

	updated, err := s.repo.Mutate(ctx, id, func(c *labcase.Case) error {
		if err := ensureCaseAccess(c, actor); err != nil {
			return err
		}
		return c.WriteOffDue(amount)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.WriteOffsTotal.Inc()
	s.log.Info("due balance written off",
		zap.String("case_id", id.String()),
		zap.Float64("amount", amount),
	)
	return updated, nil
}

func (s *CaseService) DeleteCase(ctx context.Context, id uuid.UUID, actor domain.Actor) error {
	ctx, span := s.tracer.Start(ctx, "CaseService.DeleteCase")
	defer span.End()

	if !actor.IsAdmin() {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("case deleted",
		zap.String("case_id", id.String()),
		zap.String("deleted_by", actor.ID.String()),
	)
	return nil
}

// sumTestRates prices a selection with current catalog rates. Ids that do
// not resolve (malformed or removed from the catalog) price at zero but are
// still stored in the selection as given.
func (s *CaseService) sumTestRates(ctx context.Context, testIDs []string) (float64, error) {
	ids := make([]uuid.UUID, 0, len(testIDs))
	for _, raw := range testIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	rates, err := s.testRepo.ResolveRates(ctx, ids)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, id := range ids {
		total += rates[id]
	}
	return total, nil
}

func paidByFor(actor domain.Actor) labcase.PaidBy {
	if actor.IsAdmin() {
		return labcase.PaidByAdmin
	}
	return labcase.PaidByUser
}

func validateCreateCase(cmd *labcase.CreateCaseCommand) error {
	var errs []string

	if strings.TrimSpace(cmd.PatientName) == "" {
		errs = append(errs, "patient_name is required")
	}
	if !cmd.Sex.IsValid() {
		errs = append(errs, "sex is invalid")
	}
	if cmd.Age < 0 {
		errs = append(errs, "age cannot be negative")
	}
	if cmd.DeliveryStatus != nil && !cmd.DeliveryStatus.IsValid() {
		errs = append(errs, "delivery_status is invalid")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
