package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/avaldeso/machina"
	"github.com/avaldeso/machina/mock"
)

// testToken authenticates requests in handler tests.
const testToken = "test-token"

// testServices bundles the mocks wired into a test server.
type testServices struct {
	Users          *mock.UserService
	Sessions       *mock.SessionService
	Reports        *mock.ReportService
	ComponentTypes *mock.ComponentTypeService
	Storage        *mock.FileStorage
	Email          *mock.EmailService
	Queue          *mock.Queue
	Renderer       *mock.ReportRenderer
}

// newTestServer builds a server backed entirely by mocks. The session
// mock resolves testToken to the given user so handlers see an
// authenticated request.
func newTestServer(user *machina.User) (*Server, *testServices) {
	svcs := &testServices{
		Users:          &mock.UserService{},
		Sessions:       &mock.SessionService{},
		Reports:        &mock.ReportService{},
		ComponentTypes: &mock.ComponentTypeService{},
		Storage:        mock.NewFileStorage(),
		Email:          &mock.EmailService{},
		Queue:          mock.NewQueue(),
		Renderer:       &mock.ReportRenderer{},
	}

	if user != nil {
		svcs.Sessions.FindSessionByTokenWithUserFn = func(ctx context.Context, token string) (*machina.Session, error) {
			if token != testToken {
				return nil, machina.Unauthorized("Session expired or invalid")
			}
			return &machina.Session{
				UserID:    user.ID,
				Token:     token,
				ExpiresAt: time.Now().Add(time.Hour),
				User:      user,
			}, nil
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv := NewServer(Config{
		Addr:                 "localhost:0",
		Logger:               logger,
		UserService:          svcs.Users,
		SessionService:       svcs.Sessions,
		ReportService:        svcs.Reports,
		ComponentTypeService: svcs.ComponentTypes,
		FileStorage:          svcs.Storage,
		EmailService:         svcs.Email,
		Queue:                svcs.Queue,
		Renderer:             svcs.Renderer,
	})

	return srv, svcs
}

// doRequest runs a request through the full middleware chain.
func doRequest(srv *Server, req *http.Request, authenticated bool) *httptest.ResponseRecorder {
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}
