package errors

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
)

// APIError is the JSON error body returned by the HTTP layer.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer for chi/render.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// NewAPIError creates an APIError with the given parameters.
func NewAPIError(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

// ValidationError renders a 400 with the offending field.
func ValidationError(field, message string) *APIError {
	return &APIError{
		StatusCode: http.StatusBadRequest,
		ErrorCode:  "VALIDATION_FAILED",
		Message:    message,
		Details:    map[string]string{"field": field},
	}
}

// ToAPIError maps a pipeline error onto its HTTP representation. Fatal load
// conditions surface as 503 (the data directory may appear later), everything
// else as 500.
func ToAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch CodeOf(err) {
	case CodeMissingDataDirectory, CodeAllDataEmpty:
		return &APIError{
			StatusCode: http.StatusServiceUnavailable,
			ErrorCode:  CodeOf(err),
			Message:    err.Error(),
		}
	case CodeNoEnvironmentFiles, CodeNoGrowthFile, CodeWorkbookOpenError:
		return &APIError{
			StatusCode: http.StatusNotFound,
			ErrorCode:  CodeOf(err),
			Message:    err.Error(),
		}
	case "":
		return &APIError{
			StatusCode: http.StatusInternalServerError,
			ErrorCode:  "INTERNAL_SERVER_ERROR",
			Message:    err.Error(),
		}
	default:
		return &APIError{
			StatusCode: http.StatusInternalServerError,
			ErrorCode:  CodeOf(err),
			Message:    err.Error(),
		}
	}
}
