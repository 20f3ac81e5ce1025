package http

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avaldeso/machina"
)

// errorStatusCode maps domain error codes to HTTP status codes.
func errorStatusCode(code string) int {
	switch code {
	case machina.ENOTFOUND:
		return http.StatusNotFound
	case machina.EINVALID:
		return http.StatusBadRequest
	case machina.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case machina.EFORBIDDEN:
		return http.StatusForbidden
	case machina.ECONFLICT:
		return http.StatusConflict
	case machina.ERATELIMIT:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse represents the JSON error response format.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// HandleError converts domain errors to appropriate HTTP responses.
// It logs internal errors and returns user-safe messages.
func HandleError(c echo.Context, logger *slog.Logger, err error) error {
	code := machina.ErrorCode(err)
	message := machina.ErrorMessage(err)
	fields := machina.ErrorFields(err)
	status := errorStatusCode(code)

	// Log internal errors with full details
	if code == machina.EINTERNAL {
		logger.Error("internal error",
			slog.String("error", err.Error()),
			slog.String("path", c.Path()),
			slog.String("method", c.Request().Method),
			slog.String("request_id", machina.RequestIDFromContext(c.Request().Context())),
		)
		// Don't expose internal error details to clients
		message = "An internal error occurred."
	}

	return c.JSON(status, ErrorResponse{
		Error:   code,
		Message: message,
		Fields:  fields,
	})
}
