package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/pathlab/labledger/internal/domain"
	"github.com/pathlab/labledger/internal/service"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type createUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Email    string `json:"email"`
}

func (h *UserHandler) Create(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req createUserRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.svc.CreateUser(c.Request.Context(), &service.CreateUserCommand{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		Email:    req.Email,
	}, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, created)
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &service.UpdateUserCommand{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		cmd.Role = &role
	}

	updated, err := h.svc.UpdateUser(c.Request.Context(), id, cmd, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, updated)
}

func (h *UserHandler) ToggleStatus(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	updated, err := h.svc.ToggleUserStatus(c.Request.Context(), id, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, updated)
}

func (h *UserHandler) Delete(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteUser(c.Request.Context(), id, actor); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"deleted": true})
}

func (h *UserHandler) List(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	filter := &service.UserFilter{}
	if raw := c.Query("role"); raw != "" {
		role := domain.Role(raw)
		filter.Role = &role
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.UserStatus(raw)
		filter.Status = &status
	}

	users, err := h.svc.ListUsers(c.Request.Context(), filter, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, users)
}

// ListCollectors backs the new-case attribution dropdown; any authenticated
// user may read it.
func (h *UserHandler) ListCollectors(c *gin.Context) {
	users, err := h.svc.ListEligibleCollectors(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, users)
}
