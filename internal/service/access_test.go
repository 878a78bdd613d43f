package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pathlab/labledger/internal/domain"
	"github.com/pathlab/labledger/internal/domain/labcase"
)

func TestVisibleCases(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()

	cases := []*labcase.Case{
		{ID: uuid.New(), UserID: alice},
		{ID: uuid.New(), UserID: bob},
		{ID: uuid.New(), UserID: alice},
	}

	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	assert.Len(t, VisibleCases(cases, admin), 3)

	agent := domain.Actor{ID: alice, Role: domain.RoleCollectionAgent}
	visible := VisibleCases(cases, agent)
	assert.Len(t, visible, 2)
	for _, c := range visible {
		assert.Equal(t, alice, c.UserID)
	}

	outsider := domain.Actor{ID: uuid.New(), Role: domain.RoleTechnician}
	assert.Empty(t, VisibleCases(cases, outsider))
}

func TestEnsureCaseAccess(t *testing.T) {
	owner := uuid.New()
	c := &labcase.Case{ID: uuid.New(), UserID: owner}

	assert.NoError(t, ensureCaseAccess(c, domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}))
	assert.NoError(t, ensureCaseAccess(c, domain.Actor{ID: owner, Role: domain.RoleTechnician}))
	assert.ErrorIs(t, ensureCaseAccess(c, domain.Actor{ID: uuid.New(), Role: domain.RoleTechnician}), ErrForbidden)
}

func TestVisibleCasesQuery(t *testing.T) {
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	assert.Nil(t, visibleCasesQuery(admin).CollectorID)

	agent := domain.Actor{ID: uuid.New(), Role: domain.RoleCollectionAgent}
	q := visibleCasesQuery(agent)
	if assert.NotNil(t, q.CollectorID) {
		assert.Equal(t, agent.ID, *q.CollectorID)
	}
}
