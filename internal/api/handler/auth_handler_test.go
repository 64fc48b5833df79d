package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/taskhq/task-manager-api/internal/api/middleware"
	"github.com/taskhq/task-manager-api/internal/auth"
	"github.com/taskhq/task-manager-api/internal/core/domain"
	"github.com/taskhq/task-manager-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn   func(ctx context.Context, input ports.RegisterInput) (*domain.User, error)
	createUserFn func(ctx context.Context, input ports.CreateUserInput) (*domain.User, error)
	loginFn      func(ctx context.Context, login, password string) (*ports.TokenPair, *domain.User, error)
	refreshFn    func(ctx context.Context, refreshToken string) (*ports.TokenPair, error)
}

func (s *stubAuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, input)
}

func (s *stubAuthService) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	return s.createUserFn(ctx, input)
}

func (s *stubAuthService) Login(ctx context.Context, login, password string) (*ports.TokenPair, *domain.User, error) {
	return s.loginFn(ctx, login, password)
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	return s.refreshFn(ctx, refreshToken)
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, input ports.RegisterInput) (*domain.User, error) {
			if input.Username != "alice" || input.Password != "Str0ng!pass" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.User{ID: "u1", Username: "alice", Email: input.Email, Role: auth.RoleUser}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/auth/register",
		`{"username":"alice","password":"Str0ng!pass","email":"alice@example.com"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["username"] != "alice" || resp["role"] != "user" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if _, leaked := resp["password"]; leaked {
		t.Fatal("password must never appear in responses")
	}
}

// A role field in the self-registration payload must not influence the
// created account; elevation only exists on the admin-gated route.
func TestAuthHandler_Register_IgnoresRoleInPayload(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, input ports.RegisterInput) (*domain.User, error) {
			return &domain.User{ID: "u1", Username: input.Username, Role: auth.RoleUser}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/auth/register",
		`{"username":"mallory","password":"Str0ng!pass","role":"admin"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["role"] != "user" {
		t.Fatalf("self-registration produced role %v", resp["role"])
	}
}

func TestAuthHandler_CreateUser_PassesRoleThrough(t *testing.T) {
	stub := &stubAuthService{
		createUserFn: func(_ context.Context, input ports.CreateUserInput) (*domain.User, error) {
			if input.Role != "manager" {
				t.Fatalf("unexpected role: %q", input.Role)
			}
			return &domain.User{ID: "u2", Username: input.Username, Role: auth.RoleManager}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/admin/users",
		`{"username":"lead","password":"Str0ng!pass","role":"manager"}`)

	if err := h.CreateUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestAuthHandler_CreateUser_RejectsUnknownRole(t *testing.T) {
	stub := &stubAuthService{
		createUserFn: func(_ context.Context, _ ports.CreateUserInput) (*domain.User, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/admin/users",
		`{"username":"lead","password":"Str0ng!pass","role":"superuser"}`)

	err := h.CreateUser(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Register_PropagatesServiceErrors(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, _ ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/auth/register",
		`{"username":"bob","password":"Str0ng!pass"}`)

	err := h.Register(c)
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_PropagatesPolicyViolations(t *testing.T) {
	want := &auth.SecretError{Kind: auth.SecretPolicyViolation, Violations: []string{"too short"}}
	stub := &stubAuthService{
		registerFn: func(_ context.Context, _ ports.RegisterInput) (*domain.User, error) {
			return nil, want
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/auth/register",
		`{"username":"bob","password":"abc"}`)

	err := h.Register(c)
	var se *auth.SecretError
	if !errors.As(err, &se) || len(se.Violations) != 1 {
		t.Fatalf("expected SecretError with violations, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, _ ports.RegisterInput) (*domain.User, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/auth/register", "not-json")

	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, _ ports.RegisterInput) (*domain.User, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/auth/register", `{"username":"al"}`)

	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, login, password string) (*ports.TokenPair, *domain.User, error) {
			if login != "alice" || password != "Str0ng!pass" {
				t.Fatalf("unexpected args: %s %s", login, password)
			}
			pair := &ports.TokenPair{AccessToken: "acc", RefreshToken: "ref"}
			return pair, &domain.User{ID: "u1", Username: "alice", Role: auth.RoleUser}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/auth/login",
		`{"login":"alice","password":"Str0ng!pass"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["access_token"] != "acc" || resp["refresh_token"] != "ref" {
		t.Fatalf("unexpected tokens: %+v", resp)
	}
}

func TestAuthHandler_Login_PropagatesInvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, _, _ string) (*ports.TokenPair, *domain.User, error) {
			return nil, nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/auth/login",
		`{"login":"alice","password":"wrong"}`)

	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Refresh_Success(t *testing.T) {
	stub := &stubAuthService{
		refreshFn: func(_ context.Context, refreshToken string) (*ports.TokenPair, error) {
			if refreshToken != "ref-token" {
				t.Fatalf("unexpected token: %s", refreshToken)
			}
			return &ports.TokenPair{AccessToken: "acc2", RefreshToken: "ref2"}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/auth/refresh",
		`{"refresh_token":"ref-token"}`)

	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Refresh_PropagatesWrongTokenType(t *testing.T) {
	stub := &stubAuthService{
		refreshFn: func(_ context.Context, _ string) (*ports.TokenPair, error) {
			return nil, &auth.AuthnError{Kind: auth.AuthnWrongTokenType, Message: "not a refresh token"}
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/auth/refresh",
		`{"refresh_token":"access-token"}`)

	err := h.Refresh(c)
	var ae *auth.AuthnError
	if !errors.As(err, &ae) || ae.Kind != auth.AuthnWrongTokenType {
		t.Fatalf("expected wrong_token_type, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, rec := newTestContext(t, http.MethodGet, "/auth/me", "")
	middleware.SetIdentity(c, &auth.Identity{ID: "u1", Username: "alice", Role: auth.RoleAdmin})

	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "u1" || resp["role"] != "admin" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, _ := newTestContext(t, http.MethodGet, "/auth/me", "")

	err := h.Me(c)
	var ae *auth.AuthzError
	if !errors.As(err, &ae) || ae.Kind != auth.AuthzUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}
