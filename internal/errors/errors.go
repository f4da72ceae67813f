package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/jonpan30062/newsaferoute/internal/middleware"
	"github.com/jonpan30062/newsaferoute/internal/models"
)

// Error code constants for standardized error responses
const (
	ErrNotFound           = "NOT_FOUND"
	ErrBadRequest         = "BAD_REQUEST"
	ErrInternalServer     = middleware.CodeInternalServer
	ErrValidation         = "VALIDATION_ERROR"
	ErrDatabaseConnection = "DATABASE_CONNECTION_ERROR"
	ErrMissingLocation    = "MISSING_LOCATION"
	ErrInvalidStatus      = "INVALID_STATUS"
	ErrConflict           = "CONFLICT"
	ErrUnauthorized       = middleware.CodeUnauthorized
	ErrForbidden          = middleware.CodeForbidden
	ErrTooManyRequests    = middleware.CodeTooManyRequests
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// respond logs a client error at warn level and writes the envelope.
func respond(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	requestID := middleware.GetRequestID(c)

	if log := middleware.GetLogger(c); log != nil {
		fields := map[string]interface{}{
			"code":       code,
			"message":    message,
			"request_id": requestID,
			"path":       c.Request.URL.Path,
		}
		if details != nil {
			fields["details"] = details
		}
		log.Warn("Request rejected", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: requestID,
		},
	})
}

// NotFound returns a 404 Not Found error response.
func NotFound(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, ErrNotFound, message, nil)
}

// BadRequest returns a 400 Bad Request error response with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	respond(c, http.StatusBadRequest, ErrBadRequest, message, details)
}

// InvalidStatus returns a 400 for a status outside the concern lifecycle.
func InvalidStatus(c *gin.Context, status string) {
	details := map[string]interface{}{"allowed": models.ConcernStatuses}
	if status != "" {
		details["status"] = status
	}
	respond(c, http.StatusBadRequest, ErrInvalidStatus, "Invalid status", details)
}

// MissingLocation returns a 422 for a concern that cannot become an alert
// because it has no coordinates.
func MissingLocation(c *gin.Context, message string) {
	respond(c, http.StatusUnprocessableEntity, ErrMissingLocation, message, nil)
}

// Conflict returns a 409. reason is a machine-readable sub-code such as
// ALREADY_RESOLVED.
func Conflict(c *gin.Context, message, reason string) {
	var details map[string]interface{}
	if reason != "" {
		details = map[string]interface{}{"reason": reason}
	}
	respond(c, http.StatusConflict, ErrConflict, message, details)
}

// InternalServerError returns a 500 Internal Server Error response.
// The actual error is logged but never exposed to the client.
func InternalServerError(c *gin.Context, message string, err error) {
	requestID := middleware.GetRequestID(c)

	if log := middleware.GetLogger(c); log != nil {
		log.Error("Internal server error", err, map[string]interface{}{
			"message":    message,
			"request_id": requestID,
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
		})
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error: ErrorDetail{
			Code:      ErrInternalServer,
			Message:   message,
			RequestID: requestID,
		},
	})
}

// ValidationError returns a 400 with field-specific messages from request
// binding. Fields are reported by their JSON names.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	details := make(map[string]interface{}, len(validationErrors))
	for _, err := range validationErrors {
		details[err.Field()] = formatValidationError(err)
	}

	respond(c, http.StatusBadRequest, ErrValidation, "Validation failed for one or more fields", details)
}

// DomainValidationError returns a 400 for violated entity invariants. The
// first reason per field is reported.
func DomainValidationError(c *gin.Context, errs models.ValidationErrors) {
	respond(c, http.StatusBadRequest, ErrValidation, "Validation failed for one or more fields", errs.Details())
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short or small (minimum: " + err.Param() + ")"
	case "max":
		return "Value is too long or large (maximum: " + err.Param() + ")"
	case "gt":
		return "Must be greater than " + err.Param()
	case "gte":
		return "Must be greater than or equal to " + err.Param()
	case "lte":
		return "Must be less than or equal to " + err.Param()
	case "oneof":
		return "Must be one of: " + err.Param()
	case "url":
		return "Must be a valid URL"
	case "lat":
		return "Must be a latitude between -90 and 90"
	case "lng":
		return "Must be a longitude between -180 and 180"
	case "dive":
		return "Contains an invalid item"
	default:
		return "Validation failed for tag: " + err.Tag()
	}
}
