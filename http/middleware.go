package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/avaldeso/machina"
)

const (
	// DefaultTimeout bounds database work done on behalf of a request.
	DefaultTimeout = 5 * time.Second
)

// registerMiddleware sets up all middleware for the server.
func (s *Server) registerMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Logger middleware with request ID
	s.echo.Use(s.requestLoggerMiddleware())

	// Request metrics
	if s.metrics != nil {
		s.echo.Use(s.metrics.Middleware())
	}

	// CORS middleware (configure as needed)
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Custom error handler
	s.echo.HTTPErrorHandler = s.httpErrorHandler
}

// requestLoggerMiddleware creates a middleware that logs requests with context.
func (s *Server) requestLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)

			// Create request-scoped logger
			logger := s.logger.With(
				slog.String("request_id", requestID),
				slog.String("method", c.Request().Method),
				slog.String("path", c.Path()),
			)
			c.Set("logger", logger)

			ctx := machina.NewContextWithRequestID(c.Request().Context(), requestID)
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)

			// Log request completion
			duration := time.Since(start)
			status := c.Response().Status

			logAttrs := []any{
				slog.Int("status", status),
				slog.Duration("duration", duration),
			}

			if err != nil {
				logAttrs = append(logAttrs, slog.String("error", err.Error()))
				logger.Error("request failed", logAttrs...)
			} else if status >= 500 {
				logger.Error("request completed with server error", logAttrs...)
			} else if status >= 400 {
				logger.Warn("request completed with client error", logAttrs...)
			} else {
				logger.Info("request completed", logAttrs...)
			}

			return err
		}
	}
}

// httpErrorHandler handles errors and returns appropriate responses.
func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	// Check if it's an Echo HTTP error
	if he, ok := err.(*echo.HTTPError); ok {
		_ = c.JSON(he.Code, map[string]any{"error": he.Message})
		return
	}

	// Handle domain errors
	_ = HandleError(c, s.logger, err)
}

// bearerToken extracts the token from the Authorization header.
// Returns an empty string when the header is absent or malformed.
func bearerToken(r *http.Request) string {
	header := r.Header.Get(echo.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth validates the bearer token and attaches the user and session
// to the request context. Missing, unknown, or expired tokens yield 401.
func (s *Server) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			logger := s.getRequestLogger(c)

			token := bearerToken(c.Request())
			if token == "" {
				logger.Debug("no bearer token found")
				return machina.Unauthorized("Authentication required")
			}

			session, err := s.sessionService.FindSessionByTokenWithUser(c.Request().Context(), token)
			if err != nil {
				if machina.IsErrorCode(err, machina.EUNAUTHORIZED) || machina.IsErrorCode(err, machina.ENOTFOUND) {
					logger.Debug("session expired or invalid")
					return machina.Unauthorized("Session expired or invalid")
				}
				logger.Error("session validation failed", slog.String("error", err.Error()))
				return machina.Internal("Failed to validate session", err)
			}

			// The session cache can serve an entry past its expiry.
			if !session.IsValid() {
				logger.Debug("session expired")
				return machina.Unauthorized("Session expired")
			}

			// Attach user to context
			ctx := machina.NewContextWithUser(c.Request().Context(), session.User)
			ctx = machina.NewContextWithSession(ctx, session)
			c.SetRequest(c.Request().WithContext(ctx))

			c.Set("user", session.User)
			c.Set("session", session)

			return next(c)
		}
	}
}

// getRequestLogger retrieves the request-scoped logger from context,
// tagged with the authenticated user when one is present.
func (s *Server) getRequestLogger(c echo.Context) *slog.Logger {
	logger := s.logger
	if l, ok := c.Get("logger").(*slog.Logger); ok {
		logger = l
	}
	if id := machina.UserIDFromContext(c.Request().Context()); id != uuid.Nil {
		logger = logger.With(slog.String("user_id", id.String()))
	}
	return logger
}
