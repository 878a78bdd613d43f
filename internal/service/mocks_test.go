package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pathlab/labledger/internal/domain"
	"github.com/pathlab/labledger/internal/domain/labcase"
	"github.com/pathlab/labledger/internal/domain/labtest"
	"github.com/pathlab/labledger/pkg/metrics"
)

// Prometheus collectors register globally, so the whole package shares one.
var (
	testMetricsOnce sync.Once
	testMetrics     *metrics.Collector
)

func testCollector() *metrics.Collector {
	testMetricsOnce.Do(func() {
		testMetrics = metrics.NewCollector("labledger_servicetest")
	})
	return testMetrics
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

// mockCaseRepository keeps cases in memory. Mutate mirrors the transactional
// contract: fn errors leave the stored record untouched.
type mockCaseRepository struct {
	mu    sync.Mutex
	cases map[uuid.UUID]*labcase.Case

	createErr error
	listQuery *labcase.ListCasesQuery
}

var _ labcase.Repository = (*mockCaseRepository)(nil)

func newMockCaseRepository() *mockCaseRepository {
	return &mockCaseRepository{cases: make(map[uuid.UUID]*labcase.Case)}
}

func (m *mockCaseRepository) Create(_ context.Context, c *labcase.Case) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	stored := *c
	m.cases[c.ID] = &stored
	return nil
}

func (m *mockCaseRepository) GetByID(_ context.Context, id uuid.UUID) (*labcase.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok {
		return nil, labcase.ErrCaseNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCaseRepository) Mutate(_ context.Context, id uuid.UUID, fn func(c *labcase.Case) error) (*labcase.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok {
		return nil, labcase.ErrCaseNotFound
	}
	work := *c
	if err := fn(&work); err != nil {
		return nil, err
	}
	m.cases[id] = &work
	cp := work
	return &cp, nil
}

func (m *mockCaseRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cases[id]; !ok {
		return labcase.ErrCaseNotFound
	}
	delete(m.cases, id)
	return nil
}

func (m *mockCaseRepository) List(_ context.Context, q *labcase.ListCasesQuery) ([]*labcase.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listQuery = q
	var out []*labcase.Case
	for _, c := range m.cases {
		if q != nil && q.CollectorID != nil && c.UserID != *q.CollectorID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

// stored returns the live record, bypassing the copy semantics, for
// assertions about what actually got persisted.
func (m *mockCaseRepository) stored(id uuid.UUID) *labcase.Case {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cases[id]
}

func (m *mockCaseRepository) put(c *labcase.Case) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.cases[c.ID] = c
}

type mockTestRepository struct {
	mu    sync.Mutex
	tests map[uuid.UUID]*labtest.Test
}

var _ labtest.Repository = (*mockTestRepository)(nil)

func newMockTestRepository() *mockTestRepository {
	return &mockTestRepository{tests: make(map[uuid.UUID]*labtest.Test)}
}

func (m *mockTestRepository) Create(_ context.Context, t *labtest.Test) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	stored := *t
	m.tests[t.ID] = &stored
	return nil
}

func (m *mockTestRepository) GetByID(_ context.Context, id uuid.UUID) (*labtest.Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tests[id]
	if !ok {
		return nil, labtest.ErrTestNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockTestRepository) Update(_ context.Context, t *labtest.Test) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tests[t.ID]; !ok {
		return labtest.ErrTestNotFound
	}
	stored := *t
	m.tests[t.ID] = &stored
	return nil
}

func (m *mockTestRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tests[id]; !ok {
		return labtest.ErrTestNotFound
	}
	delete(m.tests, id)
	return nil
}

func (m *mockTestRepository) List(_ context.Context, activeOnly bool) ([]*labtest.Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*labtest.Test
	for _, t := range m.tests {
		if activeOnly && t.Status != labtest.StatusActive {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockTestRepository) ResolveRates(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rates := make(map[uuid.UUID]float64)
	for _, id := range ids {
		if t, ok := m.tests[id]; ok {
			rates[id] = t.Rate
		}
	}
	return rates, nil
}

type mockUserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

var _ UserRepository = (*mockUserRepository)(nil)

func newMockUserRepository(users ...*domain.User) *mockUserRepository {
	m := &mockUserRepository{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepository) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	stored := *u
	m.users[u.ID] = &stored
	return nil
}

func (m *mockUserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) Update(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return ErrUserNotFound
	}
	stored := *u
	m.users[u.ID] = &stored
	return nil
}

func (m *mockUserRepository) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *mockUserRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepository) List(_ context.Context, f *UserFilter) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.User
	for _, u := range m.users {
		if f != nil {
			if f.Role != nil && u.Role != *f.Role {
				continue
			}
			if f.Status != nil && u.Status != *f.Status {
				continue
			}
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockUserRepository) ExistsByUsername(_ context.Context, username string, excludeID *uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if excludeID != nil && u.ID == *excludeID {
			continue
		}
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}
