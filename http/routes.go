package http

import "github.com/labstack/echo/v4"

// registerRoutes sets up all routes for the server.
// All routes are defined in this single file for easy navigation.
func (s *Server) registerRoutes() {
	// Health check routes (public)
	s.echo.GET("/health", s.handleHealthCheck)
	s.echo.GET("/health/live", s.handleLivenessCheck)
	s.echo.GET("/health/ready", s.handleReadinessCheck)

	// Prometheus metrics (public)
	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	// Public auth routes, throttled per IP
	auth := s.echo.Group("/api/auth")
	auth.POST("/login", s.handleLogin, s.authLimiter.Middleware())

	// Protected routes (require authentication)
	protected := s.echo.Group("/api")
	protected.Use(s.RequireAuth())

	// Auth (authenticated)
	protected.POST("/auth/logout", s.handleLogout)
	protected.GET("/auth/me", s.handleMe)

	// Reports
	protected.POST("/reports", s.handleCreateReport)
	protected.GET("/reports", s.handleListReports)
	protected.GET("/reports/:id", s.handleGetReport)
	protected.PUT("/reports/:id", s.handleUpdateReport)
	protected.DELETE("/reports/:id", s.handleDeleteReport)
	protected.POST("/reports/:id/close", s.handleCloseReport)
	protected.GET("/reports/:id/pdf", s.handleReportPDF)
	protected.POST("/reports/:id/email", s.handleEmailReport)

	// Component type catalog
	protected.GET("/component-types", s.handleListComponentTypes)
	protected.GET("/component-types/:id", s.handleGetComponentType)
	protected.POST("/component-types", s.handleCreateComponentType)
	protected.PUT("/component-types/:id", s.handleUpdateComponentType)
	protected.DELETE("/component-types/:id", s.handleDeleteComponentType)

	// Job status polling; cancellation is admin only
	protected.GET("/jobs/:id", s.handleGetJob)
	protected.POST("/jobs/:id/cancel", s.handleCancelJob)

	// User management (admin only)
	protected.GET("/users", s.handleListUsers)
	protected.POST("/users", s.handleCreateUser)
	protected.PUT("/users/:id", s.handleUpdateUser)
	protected.DELETE("/users/:id", s.handleDeleteUser)
}
