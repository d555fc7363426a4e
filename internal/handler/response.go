package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"feeportal/internal/repository"
	"feeportal/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse acknowledges a request with no other payload.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// respondError sends an error response with the appropriate HTTP status code.
// Server-side failures get a fixed message so internals never reach the client.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code >= http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(code, ErrorResponse{Error: errorMessage(err, code)})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrMissingField),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidOrderID),
		errors.Is(err, service.ErrInvalidPhone),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrMissingReceipt),
		errors.Is(err, service.ErrMalformedNotification),
		errors.Is(err, service.ErrSignatureMismatch),
		errors.Is(err, service.ErrMissingFile),
		errors.Is(err, service.ErrUnsupportedFileType):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge

	// Conflicts with recorded state
	case errors.Is(err, service.ErrOrderConflict),
		errors.Is(err, service.ErrDuplicateSubmission):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the client-facing text for err.
func errorMessage(err error, code int) string {
	switch {
	case errors.Is(err, service.ErrSignatureMismatch):
		return "Signature mismatch"
	case errors.Is(err, service.ErrConfiguration):
		return "Configuration error"
	case errors.Is(err, service.ErrLedgerUnavailable):
		return "Failed to submit form"
	case errors.Is(err, service.ErrStorageUnavailable):
		return "Failed to upload file"
	case code >= http.StatusInternalServerError:
		return "Internal Server Error"
	default:
		return err.Error()
	}
}

// flexString accepts a JSON string or number, since browser clients send
// amounts both ways.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
