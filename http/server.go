package http

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avaldeso/machina"
	"github.com/avaldeso/machina/internal/metrics"
	"github.com/avaldeso/machina/internal/validation"
)

// Server represents the HTTP server with all its dependencies.
type Server struct {
	echo   *echo.Echo
	ln     net.Listener
	logger *slog.Logger

	// Configuration
	Addr   string
	Domain string

	// Session configuration
	SessionDuration time.Duration

	// Login rate limiting
	authLimiter *rateLimiter

	// Domain services
	userService          machina.UserService
	sessionService       machina.SessionService
	reportService        machina.ReportService
	componentTypeService machina.ComponentTypeService

	// External services
	fileStorage  machina.FileStorage
	emailService machina.EmailService
	queue        machina.Queue
	renderer     machina.ReportRenderer
	metrics      *metrics.Metrics
}

// Config holds the configuration for creating a new Server.
type Config struct {
	Addr   string
	Domain string
	Logger *slog.Logger

	// Session configuration
	SessionDuration time.Duration

	// Domain services
	UserService          machina.UserService
	SessionService       machina.SessionService
	ReportService        machina.ReportService
	ComponentTypeService machina.ComponentTypeService

	// External services
	FileStorage  machina.FileStorage
	EmailService machina.EmailService
	Queue        machina.Queue
	Renderer     machina.ReportRenderer
	Metrics      *metrics.Metrics
}

// NewServer creates a new HTTP server with the given configuration.
func NewServer(cfg Config) *Server {
	s := &Server{
		Addr:                 cfg.Addr,
		Domain:               cfg.Domain,
		logger:               cfg.Logger,
		SessionDuration:      cfg.SessionDuration,
		userService:          cfg.UserService,
		sessionService:       cfg.SessionService,
		reportService:        cfg.ReportService,
		componentTypeService: cfg.ComponentTypeService,
		fileStorage:          cfg.FileStorage,
		emailService:         cfg.EmailService,
		queue:                cfg.Queue,
		renderer:             cfg.Renderer,
		metrics:              cfg.Metrics,
	}

	// Apply session duration defaults and cap
	if def := machina.DefaultSessionConfig(); s.SessionDuration == 0 {
		s.SessionDuration = def.DefaultDuration
	} else if s.SessionDuration > def.MaxDuration {
		s.SessionDuration = def.MaxDuration
	}

	s.authLimiter = newRateLimiter(s.logger)

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Validator = validation.NewValidator()

	// Register middleware and routes
	s.registerMiddleware()
	s.registerRoutes()

	return s
}

// Echo returns the underlying Echo instance.
// Use sparingly - prefer registering routes through Server methods.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Open starts the HTTP server.
func (s *Server) Open() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	go func() {
		if err := s.echo.Server.Serve(s.ln); err != nil {
			s.logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	s.logger.Info("server started", slog.String("addr", s.Addr))
	return nil
}

// Close gracefully shuts down the HTTP server.
func (s *Server) Close(ctx context.Context) error {
	s.authLimiter.Shutdown()
	if err := s.echo.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// URL returns the URL of the server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}
