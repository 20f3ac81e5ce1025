package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaldeso/machina"
)

func TestLogin(t *testing.T) {
	user := testUser(machina.RoleUser)
	srv, svcs := newTestServer(user)

	svcs.Users.VerifyPasswordFn = func(ctx context.Context, email, password string) (*machina.User, error) {
		assert.Equal(t, "inspector@example.com", email)
		assert.Equal(t, "securepassword123", password)
		return user, nil
	}
	svcs.Sessions.CreateSessionFn = func(ctx context.Context, userID uuid.UUID, duration time.Duration) (*machina.Session, error) {
		return &machina.Session{
			UserID:    userID,
			Token:     "new-session-token",
			ExpiresAt: time.Now().Add(duration),
		}, nil
	}

	body, _ := json.Marshal(LoginRequest{
		Email:    "inspector@example.com",
		Password: "securepassword123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := doRequest(srv, req, false)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "new-session-token", resp.Token)
	assert.Equal(t, user.ID.String(), resp.User.ID)
	assert.Equal(t, "user", resp.User.Role)
}

func TestLoginBadCredentials(t *testing.T) {
	srv, svcs := newTestServer(nil)

	svcs.Users.VerifyPasswordFn = func(ctx context.Context, email, password string) (*machina.User, error) {
		return nil, machina.Unauthorized("Invalid email or password")
	}

	body, _ := json.Marshal(LoginRequest{
		Email:    "inspector@example.com",
		Password: "wrong",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := doRequest(srv, req, false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRateLimited(t *testing.T) {
	srv, svcs := newTestServer(nil)

	svcs.Users.VerifyPasswordFn = func(ctx context.Context, email, password string) (*machina.User, error) {
		return nil, machina.Unauthorized("Invalid email or password")
	}

	body, _ := json.Marshal(LoginRequest{Email: "inspector@example.com", Password: "wrong"})

	var lastCode int
	for i := 0; i < authRateBurst+1; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := doRequest(srv, req, false)
		lastCode = rec.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}

func TestMe(t *testing.T) {
	user := testUser(machina.RoleAdmin)
	srv, _ := newTestServer(user)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := doRequest(srv, req, true)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, user.ID.String(), resp.ID)
	assert.Equal(t, "admin", resp.Role)
}

func TestLogout(t *testing.T) {
	user := testUser(machina.RoleUser)
	srv, svcs := newTestServer(user)

	var deletedToken string
	svcs.Sessions.DeleteSessionFn = func(ctx context.Context, token string) error {
		deletedToken = token
		return nil
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := doRequest(srv, req, true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testToken, deletedToken)
}

func TestUsersEndpointsAdminOnly(t *testing.T) {
	srv, _ := newTestServer(testUser(machina.RoleUser))

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := doRequest(srv, req, true)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateUserAsAdmin(t *testing.T) {
	srv, svcs := newTestServer(testUser(machina.RoleAdmin))

	svcs.Users.CreateUserFn = func(ctx context.Context, user *machina.User, password string) error {
		assert.Equal(t, machina.RoleViewer, user.Role)
		assert.Equal(t, "clientco", user.Username)
		user.ID = uuid.New()
		return nil
	}

	body, _ := json.Marshal(CreateUserRequest{
		Email:    "client@example.com",
		Username: "clientco",
		Password: "securepassword123",
		Role:     "viewer",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := doRequest(srv, req, true)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	if assert.Len(t, svcs.Email.WelcomeEmails, 1) {
		assert.Equal(t, "client@example.com", svcs.Email.WelcomeEmails[0].To)
		assert.Equal(t, "clientco", svcs.Email.WelcomeEmails[0].Name)
	}
}
