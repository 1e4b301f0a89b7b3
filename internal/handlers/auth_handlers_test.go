package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecotrack/auth-service/internal/auth"
	"github.com/ecotrack/auth-service/internal/config"
	"github.com/ecotrack/auth-service/internal/constants"
	"github.com/ecotrack/auth-service/internal/models"
	"github.com/ecotrack/auth-service/internal/utils"
)

// MockAuthService implements AuthServiceInterface with overridable functions
type MockAuthService struct {
	RegisterFunc       func(ctx context.Context, reg *models.UserRegistration) (*models.AuthResult, error)
	LoginFunc          func(ctx context.Context, creds *models.UserCredentials) (*models.AuthResult, error)
	LogoutFunc         func(ctx context.Context, claims *auth.CustomClaims) error
	RefreshFunc        func(ctx context.Context, user *models.User, claims *auth.CustomClaims) (*models.AuthResult, error)
	ForgotPasswordFunc func(ctx context.Context, email string) (*models.PasswordResetIssue, error)
	ResetPasswordFunc  func(ctx context.Context, rawToken, newPassword string) (*models.AuthResult, error)
	ChangePasswordFunc func(ctx context.Context, userID int64, currentPassword, newPassword string) (*models.AuthResult, error)
}

func testResult(user *models.User) *models.AuthResult {
	return &models.AuthResult{Token: "signed.jwt.token", TokenID: "jti-1", ExpiresAt: time.Now().Add(time.Hour), User: user}
}

func testUser() *models.User {
	return &models.User{ID: 1, Name: "Ada", Email: "ada@example.com", Role: constants.RoleUser, PasswordHash: "secret-hash"}
}

func (m *MockAuthService) Register(ctx context.Context, reg *models.UserRegistration) (*models.AuthResult, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, reg)
	}
	return testResult(&models.User{ID: 1, Name: reg.Name, Email: reg.Email, Role: constants.RoleUser}), nil
}

func (m *MockAuthService) Login(ctx context.Context, creds *models.UserCredentials) (*models.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, creds)
	}
	return testResult(testUser().Sanitize()), nil
}

func (m *MockAuthService) Logout(ctx context.Context, claims *auth.CustomClaims) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, claims)
	}
	return nil
}

func (m *MockAuthService) Refresh(ctx context.Context, user *models.User, claims *auth.CustomClaims) (*models.AuthResult, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, user, claims)
	}
	return testResult(user), nil
}

func (m *MockAuthService) ForgotPassword(ctx context.Context, email string) (*models.PasswordResetIssue, error) {
	if m.ForgotPasswordFunc != nil {
		return m.ForgotPasswordFunc(ctx, email)
	}
	return &models.PasswordResetIssue{UserID: 1, Email: email, Token: "raw-reset-token"}, nil
}

func (m *MockAuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) (*models.AuthResult, error) {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, rawToken, newPassword)
	}
	return testResult(testUser().Sanitize()), nil
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) (*models.AuthResult, error) {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, userID, currentPassword, newPassword)
	}
	return testResult(testUser().Sanitize()), nil
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		App:    config.AppSettings{Environment: constants.EnvDevelopment},
		Cookie: config.CookieSettings{Name: "token", ExpireDays: 30},
	}
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withPrincipal(req *http.Request, user *models.User) *http.Request {
	claims := &auth.CustomClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-current",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	return req.WithContext(auth.WithPrincipal(req.Context(), user.Sanitize(), claims))
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestNewAuthHandler_NilServicePanics(t *testing.T) {
	assert.Panics(t, func() { NewAuthHandler(nil, testConfig()) })
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		serviceErr     error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "success",
			body:           map[string]string{"name": "Ada", "email": "ada@example.com", "password": "Passw0rd!"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "duplicate email",
			body:           map[string]string{"name": "Ada", "email": "ada@example.com", "password": "Passw0rd!"},
			serviceErr:     utils.NewDuplicateError("email"),
			expectedStatus: http.StatusConflict,
			expectedCode:   constants.CodeDuplicateResource,
		},
		{
			name:           "unknown field",
			body:           map[string]string{"name": "Ada", "role": "admin"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   constants.CodeValidationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockAuthService{}
			if tt.serviceErr != nil {
				svc.RegisterFunc = func(ctx context.Context, reg *models.UserRegistration) (*models.AuthResult, error) {
					return nil, tt.serviceErr
				}
			}
			h := NewAuthHandler(svc, testConfig())

			rr := httptest.NewRecorder()
			h.Register(rr, jsonRequest(t, http.MethodPost, "/api/auth/register", tt.body))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			body := decodeResponse(t, rr)
			if tt.expectedCode != "" {
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tt.expectedCode, body["code"])
				assert.Nil(t, findCookie(rr, "token"))
				return
			}

			assert.Equal(t, true, body["success"])
			assert.Equal(t, "signed.jwt.token", body["token"])
			user := body["user"].(map[string]interface{})
			assert.Equal(t, "ada@example.com", user["email"])
			assert.NotContains(t, user, "password")
			assert.NotContains(t, user, "passwordHash")

			cookie := findCookie(rr, "token")
			require.NotNil(t, cookie)
			assert.Equal(t, "signed.jwt.token", cookie.Value)
			assert.True(t, cookie.HttpOnly)
			assert.False(t, cookie.Secure)
			assert.Equal(t, 30*24*60*60, cookie.MaxAge)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var got *models.UserCredentials
		svc := &MockAuthService{
			LoginFunc: func(ctx context.Context, creds *models.UserCredentials) (*models.AuthResult, error) {
				got = creds
				return testResult(testUser().Sanitize()), nil
			},
		}
		h := NewAuthHandler(svc, testConfig())

		rr := httptest.NewRecorder()
		h.Login(rr, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "ada@example.com", "password": "Passw0rd!"}))

		assert.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, got)
		assert.Equal(t, "ada@example.com", got.Email)
		assert.NotContains(t, rr.Body.String(), "secret-hash")
	})

	t.Run("invalid credentials", func(t *testing.T) {
		svc := &MockAuthService{
			LoginFunc: func(ctx context.Context, creds *models.UserCredentials) (*models.AuthResult, error) {
				return nil, utils.NewInvalidCredentialsError()
			},
		}
		h := NewAuthHandler(svc, testConfig())

		rr := httptest.NewRecorder()
		h.Login(rr, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "ada@example.com", "password": "nope"}))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		body := decodeResponse(t, rr)
		assert.Equal(t, constants.MsgInvalidCredentials, body["message"])
	})

	t.Run("empty body", func(t *testing.T) {
		h := NewAuthHandler(&MockAuthService{}, testConfig())
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", http.NoBody)

		h.Login(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("internal errors are not leaked", func(t *testing.T) {
		svc := &MockAuthService{
			LoginFunc: func(ctx context.Context, creds *models.UserCredentials) (*models.AuthResult, error) {
				return nil, errors.New("dial tcp 10.0.0.5:5432: connection refused")
			},
		}
		h := NewAuthHandler(svc, testConfig())

		rr := httptest.NewRecorder()
		h.Login(rr, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "ada@example.com", "password": "x"}))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "10.0.0.5")
	})
}

func TestAuthHandler_SecureCookieInProduction(t *testing.T) {
	cfg := testConfig()
	cfg.App.Environment = constants.EnvProduction
	h := NewAuthHandler(&MockAuthService{}, cfg)

	rr := httptest.NewRecorder()
	h.Login(rr, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "ada@example.com", "password": "Passw0rd!"}))

	cookie := findCookie(rr, "token")
	require.NotNil(t, cookie)
	assert.True(t, cookie.Secure)
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("revokes presented token and clears cookie", func(t *testing.T) {
		var revoked string
		svc := &MockAuthService{
			LogoutFunc: func(ctx context.Context, claims *auth.CustomClaims) error {
				revoked = claims.ID
				return nil
			},
		}
		h := NewAuthHandler(svc, testConfig())

		rr := httptest.NewRecorder()
		h.Logout(rr, withPrincipal(httptest.NewRequest(http.MethodGet, "/api/auth/logout", nil), testUser()))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "jti-current", revoked)
		body := decodeResponse(t, rr)
		assert.Equal(t, constants.MsgLogoutSuccess, body["message"])

		cookie := findCookie(rr, "token")
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		assert.Less(t, cookie.MaxAge, 0)
	})

	t.Run("no principal", func(t *testing.T) {
		h := NewAuthHandler(&MockAuthService{}, testConfig())
		rr := httptest.NewRecorder()

		h.Logout(rr, httptest.NewRequest(http.MethodGet, "/api/auth/logout", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("denylist failure", func(t *testing.T) {
		svc := &MockAuthService{
			LogoutFunc: func(ctx context.Context, claims *auth.CustomClaims) error {
				return utils.NewInternalServerError(errors.New("redis down"))
			},
		}
		h := NewAuthHandler(svc, testConfig())

		rr := httptest.NewRecorder()
		h.Logout(rr, withPrincipal(httptest.NewRequest(http.MethodGet, "/api/auth/logout", nil), testUser()))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestAuthHandler_GetMe(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{}, testConfig())

	rr := httptest.NewRecorder()
	h.GetMe(rr, withPrincipal(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), testUser()))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeResponse(t, rr)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Ada", data["name"])
	assert.NotContains(t, rr.Body.String(), "secret-hash")

	rr = httptest.NewRecorder()
	h.GetMe(rr, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthHandler_Refresh(t *testing.T) {
	var gotClaims *auth.CustomClaims
	svc := &MockAuthService{
		RefreshFunc: func(ctx context.Context, user *models.User, claims *auth.CustomClaims) (*models.AuthResult, error) {
			gotClaims = claims
			return &models.AuthResult{Token: "fresh.jwt.token", User: user}, nil
		},
	}
	h := NewAuthHandler(svc, testConfig())

	rr := httptest.NewRecorder()
	h.Refresh(rr, withPrincipal(httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil), testUser()))

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, gotClaims)
	assert.Equal(t, "jti-current", gotClaims.ID)
	cookie := findCookie(rr, "token")
	require.NotNil(t, cookie)
	assert.Equal(t, "fresh.jwt.token", cookie.Value)
}

func TestAuthHandler_UpdatePassword(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotID int64
		var gotCurrent, gotNew string
		svc := &MockAuthService{
			ChangePasswordFunc: func(ctx context.Context, userID int64, currentPassword, newPassword string) (*models.AuthResult, error) {
				gotID, gotCurrent, gotNew = userID, currentPassword, newPassword
				return testResult(testUser().Sanitize()), nil
			},
		}
		h := NewAuthHandler(svc, testConfig())

		req := jsonRequest(t, http.MethodPut, "/api/auth/updatepassword", map[string]string{"currentPassword": "Old1!pass", "newPassword": "New1!pass"})
		rr := httptest.NewRecorder()
		h.UpdatePassword(rr, withPrincipal(req, testUser()))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, int64(1), gotID)
		assert.Equal(t, "Old1!pass", gotCurrent)
		assert.Equal(t, "New1!pass", gotNew)
	})

	t.Run("wrong current password", func(t *testing.T) {
		svc := &MockAuthService{
			ChangePasswordFunc: func(ctx context.Context, userID int64, currentPassword, newPassword string) (*models.AuthResult, error) {
				return nil, utils.NewIncorrectPasswordError()
			},
		}
		h := NewAuthHandler(svc, testConfig())

		req := jsonRequest(t, http.MethodPut, "/api/auth/updatepassword", map[string]string{"currentPassword": "bad", "newPassword": "New1!pass"})
		rr := httptest.NewRecorder()
		h.UpdatePassword(rr, withPrincipal(req, testUser()))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Nil(t, findCookie(rr, "token"))
	})
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		expose      bool
		issue       *models.PasswordResetIssue
		wantToken   string
	}{
		{name: "token hidden by default", environment: constants.EnvDevelopment, issue: &models.PasswordResetIssue{Token: "raw"}},
		{name: "token exposed when enabled", environment: constants.EnvDevelopment, expose: true, issue: &models.PasswordResetIssue{Token: "raw"}, wantToken: "raw"},
		{name: "never exposed in production", environment: constants.EnvProduction, expose: true, issue: &models.PasswordResetIssue{Token: "raw"}},
		{name: "unknown email looks the same", environment: constants.EnvDevelopment, expose: true, issue: &models.PasswordResetIssue{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.App.Environment = tt.environment
			cfg.PasswordReset.ExposeToken = tt.expose
			svc := &MockAuthService{
				ForgotPasswordFunc: func(ctx context.Context, email string) (*models.PasswordResetIssue, error) {
					return tt.issue, nil
				},
			}
			h := NewAuthHandler(svc, cfg)

			rr := httptest.NewRecorder()
			h.ForgotPassword(rr, jsonRequest(t, http.MethodPost, "/api/auth/forgotpassword", map[string]string{"email": "ada@example.com"}))

			assert.Equal(t, http.StatusOK, rr.Code)
			body := decodeResponse(t, rr)
			assert.Equal(t, constants.MsgResetEmailSent, body["message"])
			if tt.wantToken == "" {
				assert.NotContains(t, body, "resetToken")
			} else {
				assert.Equal(t, tt.wantToken, body["resetToken"])
			}
		})
	}

	t.Run("revealed unknown email", func(t *testing.T) {
		svc := &MockAuthService{
			ForgotPasswordFunc: func(ctx context.Context, email string) (*models.PasswordResetIssue, error) {
				return nil, utils.NewNotFoundError(constants.MsgNoUserWithEmail)
			},
		}
		h := NewAuthHandler(svc, testConfig())

		rr := httptest.NewRecorder()
		h.ForgotPassword(rr, jsonRequest(t, http.MethodPost, "/api/auth/forgotpassword", map[string]string{"email": "nobody@example.com"}))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	newRouter := func(h *AuthHandler) http.Handler {
		r := chi.NewRouter()
		r.Put("/api/auth/resetpassword/{resettoken}", h.ResetPassword)
		return r
	}

	t.Run("token from path", func(t *testing.T) {
		var gotToken, gotPassword string
		svc := &MockAuthService{
			ResetPasswordFunc: func(ctx context.Context, rawToken, newPassword string) (*models.AuthResult, error) {
				gotToken, gotPassword = rawToken, newPassword
				return testResult(testUser().Sanitize()), nil
			},
		}

		rr := httptest.NewRecorder()
		newRouter(NewAuthHandler(svc, testConfig())).ServeHTTP(rr,
			jsonRequest(t, http.MethodPut, "/api/auth/resetpassword/abc123", map[string]string{"password": "New1!pass"}))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "abc123", gotToken)
		assert.Equal(t, "New1!pass", gotPassword)
		assert.NotNil(t, findCookie(rr, "token"))
	})

	t.Run("invalid token", func(t *testing.T) {
		svc := &MockAuthService{
			ResetPasswordFunc: func(ctx context.Context, rawToken, newPassword string) (*models.AuthResult, error) {
				return nil, utils.NewInvalidResetTokenError()
			},
		}

		rr := httptest.NewRecorder()
		newRouter(NewAuthHandler(svc, testConfig())).ServeHTTP(rr,
			jsonRequest(t, http.MethodPut, "/api/auth/resetpassword/expired", map[string]string{"password": "New1!pass"}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := decodeResponse(t, rr)
		assert.Equal(t, constants.MsgInvalidResetToken, body["message"])
	})
}
