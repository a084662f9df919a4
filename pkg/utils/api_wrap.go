package utils

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceID(c *gin.Context) string {
	if v, ok := c.Get("trace_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
	})
}

// HandleServiceError maps the service error taxonomy onto HTTP status codes.
// Signature failures are security rejections (401), gateway trouble is an
// upstream failure the user may retry (502/503), terminal-state conflicts are
// 409, everything unrecognized is a 500.
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidPackage), errors.Is(err, ErrUnknownPackage), errors.Is(err, ErrInvalidWebhook):
		RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidSignature), errors.Is(err, ErrInvalidCredentials):
		RespondError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrTransactionNotFound), errors.Is(err, ErrInvoiceNotFound),
		errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrTicketNotFound):
		RespondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrTransactionClosed), errors.Is(err, ErrEmailTaken):
		RespondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrGatewayUnavailable):
		RespondError(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, ErrOrderCreationFailed), errors.Is(err, ErrGateway):
		RespondError(c, http.StatusBadGateway, err.Error())
	case errors.Is(err, ErrDatabaseError):
		log.Printf("Database error: %v", err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		log.Printf("Unknown error: %v", err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
