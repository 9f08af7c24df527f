package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	internalauth "github.com/flokoutapp/flokout-backend/internal/auth"
	pkgAuth "github.com/flokoutapp/flokout-backend/pkg/auth"
	"github.com/flokoutapp/flokout-backend/pkg/config"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "controller-test-secret",
	Issuer:            "flokout-test",
	ExpirationMinutes: 15,
}

type testAuthService struct {
	registerFn func(ctx context.Context, req internalauth.RegisterRequest) (*internalauth.AuthResponse, error)
	loginFn    func(ctx context.Context, req internalauth.LoginRequest) (*internalauth.AuthResponse, error)
	refreshFn  func(ctx context.Context, req internalauth.RefreshRequest) (*internalauth.AuthResponse, error)
	logoutFn   func(ctx context.Context, accessID string) error
}

func (s *testAuthService) Register(ctx context.Context, req internalauth.RegisterRequest) (*internalauth.AuthResponse, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, req)
	}
	return &internalauth.AuthResponse{}, nil
}

func (s *testAuthService) Login(ctx context.Context, req internalauth.LoginRequest) (*internalauth.AuthResponse, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, req)
	}
	return &internalauth.AuthResponse{}, nil
}

func (s *testAuthService) Refresh(ctx context.Context, req internalauth.RefreshRequest) (*internalauth.AuthResponse, error) {
	if s.refreshFn != nil {
		return s.refreshFn(ctx, req)
	}
	return &internalauth.AuthResponse{}, nil
}

func (s *testAuthService) Logout(ctx context.Context, accessID string) error {
	if s.logoutFn != nil {
		return s.logoutFn(ctx, accessID)
	}
	return nil
}

func TestAuthRegisterValidatesBody(t *testing.T) {
	body := `{"email":"not-an-email","password":"short","full_name":""}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	AuthRegister(&testAuthService{}, testLogger())(resp, req)
	requireStatus(t, resp.Code, http.StatusBadRequest)
}

func TestAuthRegisterReturnsCreated(t *testing.T) {
	called := false
	svc := &testAuthService{
		registerFn: func(ctx context.Context, r internalauth.RegisterRequest) (*internalauth.AuthResponse, error) {
			called = true
			if r.Email != "new@example.com" {
				t.Fatalf("unexpected email %q", r.Email)
			}
			return &internalauth.AuthResponse{AccessToken: "a", RefreshToken: "r"}, nil
		},
	}

	body := `{"email":"new@example.com","password":"longenough","full_name":"New Member"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	AuthRegister(svc, testLogger())(resp, req)

	requireStatus(t, resp.Code, http.StatusCreated)
	if !called {
		t.Fatal("expected register called")
	}
}

func TestAuthLogoutMissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	resp := httptest.NewRecorder()
	AuthLogout(&testAuthService{}, testJWTConfig, testLogger())(resp, req)
	requireStatus(t, resp.Code, http.StatusUnauthorized)
}

func TestAuthLogoutRevokesSession(t *testing.T) {
	token, err := pkgAuth.MintAccessToken(testJWTConfig, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "member@example.com",
		JTI:    "session-42",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	var revoked string
	svc := &testAuthService{
		logoutFn: func(ctx context.Context, accessID string) error {
			revoked = accessID
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	AuthLogout(svc, testJWTConfig, testLogger())(resp, req)

	requireStatus(t, resp.Code, http.StatusOK)
	if revoked != "session-42" {
		t.Fatalf("expected session-42 revoked, got %q", revoked)
	}
}

func TestAuthRefreshRequiresBothTokens(t *testing.T) {
	body := `{"refresh_token":"only-half"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	AuthRefresh(&testAuthService{}, testLogger())(resp, req)
	requireStatus(t, resp.Code, http.StatusBadRequest)
}
