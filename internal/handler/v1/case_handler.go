package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pathlab/labledger/internal/domain/labcase"
	"github.com/pathlab/labledger/internal/service"
)

type CaseHandler struct {
	svc *service.CaseService
}

func NewCaseHandler(svc *service.CaseService) *CaseHandler {
	return &CaseHandler{svc: svc}
}

type createCaseRequest struct {
	PatientName     string   `json:"patient_name" binding:"required"`
	Age             int      `json:"age"`
	Sex             string   `json:"sex" binding:"required"`
	MobileNumber    string   `json:"mobile_number"`
	TestIDs         []string `json:"test_ids"`
	TotalAmount     *float64 `json:"total_amount"`
	AdvanceAmount   float64  `json:"advance_amount"`
	CollectorUserID *string  `json:"collector_user_id"`
	TestedByName    string   `json:"tested_by_name"`
	DeliveryStatus  *string  `json:"delivery_status"`
	Notes           string   `json:"notes"`
}

func (h *CaseHandler) Create(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req createCaseRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &labcase.CreateCaseCommand{
		PatientName:   req.PatientName,
		Age:           req.Age,
		Sex:           labcase.Sex(req.Sex),
		MobileNumber:  req.MobileNumber,
		TestIDs:       req.TestIDs,
		TotalAmount:   req.TotalAmount,
		AdvanceAmount: req.AdvanceAmount,
		TestedByName:  req.TestedByName,
		Notes:         req.Notes,
	}

	if req.CollectorUserID != nil {
		id, err := uuid.Parse(*req.CollectorUserID)
		if err != nil {
			respondError(c, 400, "invalid collector_user_id: must be a valid UUID")
			return
		}
		cmd.CollectorUserID = &id
	}
	if req.DeliveryStatus != nil {
		ds := labcase.DeliveryStatus(*req.DeliveryStatus)
		cmd.DeliveryStatus = &ds
	}

	created, err := h.svc.CreateCase(c.Request.Context(), cmd, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, created)
}

func (h *CaseHandler) Get(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	found, err := h.svc.GetCase(c.Request.Context(), id, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, found)
}

func (h *CaseHandler) List(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	cases, err := h.svc.ListCases(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, cases)
}

type updateCaseRequest struct {
	PatientName    *string   `json:"patient_name"`
	Age            *int      `json:"age"`
	Sex            *string   `json:"sex"`
	MobileNumber   *string   `json:"mobile_number"`
	TestIDs        *[]string `json:"test_ids"`
	TotalAmount    *float64  `json:"total_amount"`
	AdvanceAmount  *float64  `json:"advance_amount"`
	DeliveryStatus *string   `json:"delivery_status"`
	Notes          *string   `json:"notes"`
	TestedByName   *string   `json:"tested_by_name"`
}

func (h *CaseHandler) Update(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateCaseRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &labcase.UpdateCaseCommand{
		PatientName:   req.PatientName,
		Age:           req.Age,
		MobileNumber:  req.MobileNumber,
		TestIDs:       req.TestIDs,
		TotalAmount:   req.TotalAmount,
		AdvanceAmount: req.AdvanceAmount,
		Notes:         req.Notes,
		TestedByName:  req.TestedByName,
	}
	if req.Sex != nil {
		sex := labcase.Sex(*req.Sex)
		cmd.Sex = &sex
	}
	if req.DeliveryStatus != nil {
		ds := labcase.DeliveryStatus(*req.DeliveryStatus)
		cmd.DeliveryStatus = &ds
	}

	updated, err := h.svc.UpdateCase(c.Request.Context(), id, cmd, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, updated)
}

type payCommissionRequest struct {
	Amount             float64  `json:"amount"`
	NewTotalCommission *float64 `json:"new_total_commission"`
}

func (h *CaseHandler) PayCommission(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req payCommissionRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.svc.PayCommission(c.Request.Context(), id, req.Amount, req.NewTotalCommission, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, updated)
}

func (h *CaseHandler) MarkCommissionPaid(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	updated, err := h.svc.MarkCommissionFullyPaid(c.Request.Context(), id, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, updated)
}

type writeOffRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

func (h *CaseHandler) WriteOff(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req writeOffRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.svc.WriteOffDue(c.Request.Context(), id, req.Amount, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, updated)
}

func (h *CaseHandler) Delete(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteCase(c.Request.Context(), id, actor); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"deleted": true})
}
