package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/pathlab/labledger/internal/domain/labtest"
	"github.com/pathlab/labledger/internal/service"
)

type TestHandler struct {
	svc *service.CatalogService
}

func NewTestHandler(svc *service.CatalogService) *TestHandler {
	return &TestHandler{svc: svc}
}

type createTestRequest struct {
	Name string  `json:"name" binding:"required"`
	Rate float64 `json:"rate"`
}

func (h *TestHandler) Create(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req createTestRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.svc.CreateTest(c.Request.Context(), &labtest.CreateTestCommand{
		Name: req.Name,
		Rate: req.Rate,
	}, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, created)
}

type updateTestRequest struct {
	Name *string  `json:"name"`
	Rate *float64 `json:"rate"`
}

func (h *TestHandler) Update(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateTestRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.svc.UpdateTest(c.Request.Context(), id, &labtest.UpdateTestCommand{
		Name: req.Name,
		Rate: req.Rate,
	}, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, updated)
}

func (h *TestHandler) ToggleStatus(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	updated, err := h.svc.ToggleTestStatus(c.Request.Context(), id, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, updated)
}

func (h *TestHandler) Delete(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteTest(c.Request.Context(), id, actor); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"deleted": true})
}

func (h *TestHandler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	tests, err := h.svc.ListTests(c.Request.Context(), activeOnly)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, tests)
}
