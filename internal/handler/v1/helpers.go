package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hospitalops/cftflow/internal/domain/request"
	"github.com/hospitalops/cftflow/internal/domain/wizard"
	"github.com/hospitalops/cftflow/internal/service"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
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

func respondServiceError(c *gin.Context, err error) {
	var verr *wizard.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  verr.Title,
			Reason: verr.Reason,
		})
		return
	}

	switch {
	case errors.Is(err, request.ErrRequestNotFound),
		errors.Is(err, request.ErrMeetingNotFound),
		errors.Is(err, service.ErrUnknownDrug):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, request.ErrInvalidStatusTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, request.ErrInvalidRequestType),
		errors.Is(err, request.ErrInvalidVerdict),
		errors.Is(err, request.ErrInconsistentPayload),
		errors.Is(err, service.ErrInvalidDuration):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

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
