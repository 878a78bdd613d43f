package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pathlab/labledger/internal/domain/labcase"
	"github.com/pathlab/labledger/internal/domain/labtest"
	"github.com/pathlab/labledger/internal/service"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// respondServiceError maps each error kind to a distinct status and message.
// Financial rejections carry machine-readable codes so corrections can be
// traced to a specific cause.
func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: validErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, labcase.ErrCaseNotFound),
		errors.Is(err, labtest.ErrTestNotFound),
		errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, labcase.ErrInvalidAmount),
		errors.Is(err, labcase.ErrInvalidWriteOff),
		errors.Is(err, labcase.ErrInvalidSex),
		errors.Is(err, labcase.ErrInvalidDeliveryStatus),
		errors.Is(err, labcase.ErrPatientNameRequired),
		errors.Is(err, labtest.ErrInvalidRate),
		errors.Is(err, labtest.ErrNameRequired):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, labcase.ErrOverpayment):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: err.Error(),
			Code:  "OVERPAYMENT_REJECTED",
		})

	case errors.Is(err, labcase.ErrCommissionInconsistent):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: err.Error(),
			Code:  "COMMISSION_INCONSISTENT",
		})

	case errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "access denied"})

	case errors.Is(err, service.ErrAccountSuspended):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error: "account suspended",
			Code:  "ACCOUNT_SUSPENDED",
		})

	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})

	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}

	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param + ": must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}
