package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pathlab/labledger/internal/domain"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username is already taken")
)

// UserFilter narrows directory listings.
type UserFilter struct {
	Role   *domain.Role
	Status *domain.UserStatus
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f *UserFilter) ([]*domain.User, error)
	ExistsByUsername(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error)
}

type CreateUserCommand struct {
	Name     string
	Username string
	Password string
	Role     domain.Role
	Email    string
}

type UpdateUserCommand struct {
	Name     *string
	Email    *string
	Role     *domain.Role
	Password *string
}

type UserService struct {
	repo UserRepository
	log  *zap.Logger
}

func NewUserService(repo UserRepository, log *zap.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

func (s *UserService) CreateUser(ctx context.Context, cmd *CreateUserCommand, actor domain.Actor) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := validateCreateUser(cmd); err != nil {
		return nil, err
	}

	username := strings.ToLower(strings.TrimSpace(cmd.Username))
	exists, err := s.repo.ExistsByUsername(ctx, username, nil)
	if err != nil {
		return nil, fmt.Errorf("checking username uniqueness: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &domain.User{
		Name:         strings.TrimSpace(cmd.Name),
		Username:     username,
		PasswordHash: string(hash),
		Email:        strings.ToLower(strings.TrimSpace(cmd.Email)),
		Role:         cmd.Role,
		Status:       domain.UserActive,
		JoinedAt:     time.Now(),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		s.log.Error("failed to create user", zap.Error(err))
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.log.Info("user created",
		zap.String("user_id", u.ID.String()),
		zap.String("role", string(u.Role)),
		zap.String("created_by", actor.ID.String()),
	)
	return u, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, cmd *UpdateUserCommand, actor domain.Actor) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if cmd.Role != nil && !cmd.Role.IsValid() {
		return nil, &ValidationError{Fields: []string{"role is invalid"}}
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		u.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*cmd.Email))
	}
	if cmd.Role != nil {
		u.Role = *cmd.Role
	}
	if cmd.Password != nil {
		if err := validatePasswordStrength(*cmd.Password); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*cmd.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		u.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return u, nil
}

// ToggleUserStatus flips active <-> suspended. Suspended users cannot log in
// but their case attributions stay valid.
func (s *UserService) ToggleUserStatus(ctx context.Context, id uuid.UUID, actor domain.Actor) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.Status == domain.UserActive {
		u.Status = domain.UserSuspended
	} else {
		u.Status = domain.UserActive
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("toggling user status: %w", err)
	}

	s.log.Info("user status toggled",
		zap.String("user_id", id.String()),
		zap.String("status", string(u.Status)),
	)
	return u, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID, actor domain.Actor) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, f *UserFilter, actor domain.Actor) ([]*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.repo.List(ctx, f)
}

// ListEligibleCollectors returns the active users a new case may be
// attributed to. Any role can collect; suspension removes eligibility.
func (s *UserService) ListEligibleCollectors(ctx context.Context) ([]*domain.User, error) {
	status := domain.UserActive
	return s.repo.List(ctx, &UserFilter{Status: &status})
}

func validateCreateUser(cmd *CreateUserCommand) error {
	var errs []string

	if strings.TrimSpace(cmd.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(cmd.Username) == "" {
		errs = append(errs, "username is required")
	}
	if !cmd.Role.IsValid() {
		errs = append(errs, "role is invalid")
	}
	if err := validatePasswordStrength(cmd.Password); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
