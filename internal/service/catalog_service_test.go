package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pathlab/labledger/internal/domain"
	"github.com/pathlab/labledger/internal/domain/labcase"
	"github.com/pathlab/labledger/internal/domain/labtest"
)

func TestCreateTest(t *testing.T) {
	svc := NewCatalogService(newMockTestRepository(), testLogger())
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	created, err := svc.CreateTest(context.Background(), &labtest.CreateTestCommand{
		Name: "  Complete Blood Count  ",
		Rate: 250,
	}, admin)
	assert.NoError(t, err)
	assert.Equal(t, "Complete Blood Count", created.Name)
	assert.Equal(t, labtest.StatusActive, created.Status)

	_, err = svc.CreateTest(context.Background(), &labtest.CreateTestCommand{Name: " ", Rate: 100}, admin)
	assert.ErrorIs(t, err, labtest.ErrNameRequired)

	_, err = svc.CreateTest(context.Background(), &labtest.CreateTestCommand{Name: "X-Ray", Rate: -5}, admin)
	assert.ErrorIs(t, err, labtest.ErrInvalidRate)

	agent := domain.Actor{ID: uuid.New(), Role: domain.RoleCollectionAgent}
	_, err = svc.CreateTest(context.Background(), &labtest.CreateTestCommand{Name: "X-Ray", Rate: 300}, agent)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestToggleTestStatus_HidesFromActiveListing(t *testing.T) {
	repo := newMockTestRepository()
	svc := NewCatalogService(repo, testLogger())
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	created, err := svc.CreateTest(context.Background(), &labtest.CreateTestCommand{Name: "CBC", Rate: 250}, admin)
	assert.NoError(t, err)

	toggled, err := svc.ToggleTestStatus(context.Background(), created.ID, admin)
	assert.NoError(t, err)
	assert.Equal(t, labtest.StatusSuspended, toggled.Status)

	active, err := svc.ListTests(context.Background(), true)
	assert.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.ListTests(context.Background(), false)
	assert.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdateTest(t *testing.T) {
	repo := newMockTestRepository()
	svc := NewCatalogService(repo, testLogger())
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	created, err := svc.CreateTest(context.Background(), &labtest.CreateTestCommand{Name: "CBC", Rate: 250}, admin)
	assert.NoError(t, err)

	newRate := 300.0
	updated, err := svc.UpdateTest(context.Background(), created.ID, &labtest.UpdateTestCommand{Rate: &newRate}, admin)
	assert.NoError(t, err)
	assert.Equal(t, 300.0, updated.Rate)
	assert.Equal(t, "CBC", updated.Name)

	badRate := -1.0
	_, err = svc.UpdateTest(context.Background(), created.ID, &labtest.UpdateTestCommand{Rate: &badRate}, admin)
	assert.ErrorIs(t, err, labtest.ErrInvalidRate)

	_, err = svc.UpdateTest(context.Background(), uuid.New(), &labtest.UpdateTestCommand{Rate: &newRate}, admin)
	assert.ErrorIs(t, err, labtest.ErrTestNotFound)
}

func TestDeleteTest_KeepsHistoricalSelectionsPricedAtZero(t *testing.T) {
	f := newCaseServiceFixture(t)
	catalog := NewCatalogService(f.testRepo, testLogger())

	cbc := &labtest.Test{Name: "CBC", Rate: 250, Status: labtest.StatusActive}
	assert.NoError(t, f.testRepo.Create(context.Background(), cbc))

	assert.NoError(t, catalog.DeleteTest(context.Background(), cbc.ID, f.admin))

	// A new case still stores the stale id; it just prices at zero
	c, err := f.svc.CreateCase(context.Background(), &labcase.CreateCaseCommand{
		PatientName: "Mohan Lal",
		Sex:         labcase.SexMale,
		TestIDs:     []string{cbc.ID.String()},
	}, f.collector)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, c.TotalAmount)
	assert.Contains(t, c.TestIDs, cbc.ID.String())
}
