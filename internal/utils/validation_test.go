package utils_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ecotrack/auth-service/internal/utils"
)

type signupPayload struct {
	Name     string `json:"name" validate:"required,notblank,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password_policy"`
}

func newJSONRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantErr   bool
		wantCheck func(error) bool
	}{
		{"Valid", `{"name":"Ann","email":"ann@x.com","password":"Secret123"}`, false, nil},
		{"Empty body", ``, true, func(err error) bool { return errors.Is(err, utils.ErrBadRequest) }},
		{"Malformed", `{"name":`, true, func(err error) bool { return errors.Is(err, utils.ErrBadRequest) }},
		{"Syntax error", `{"name" "Ann"}`, true, func(err error) bool { return errors.Is(err, utils.ErrBadRequest) }},
		{"Unknown field", `{"name":"Ann","role":"admin"}`, true, func(err error) bool { return errors.Is(err, utils.ErrValidation) }},
		{"Wrong type", `{"name":42}`, true, func(err error) bool { return errors.Is(err, utils.ErrValidation) }},
		{"Trailing object", `{"name":"Ann"}{"name":"Bob"}`, true, func(err error) bool { return errors.Is(err, utils.ErrBadRequest) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload signupPayload
			err := utils.DecodeJSON(newJSONRequest(tt.body), &payload)

			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantCheck != nil && !tt.wantCheck(err) {
				t.Errorf("DecodeJSON() error = %v has unexpected kind", err)
			}
		})
	}
}

func TestDecodeJSONRejectsOversizedBody(t *testing.T) {
	body := `{"name":"` + strings.Repeat("a", 2<<20) + `"}`
	var payload signupPayload

	err := utils.DecodeJSON(newJSONRequest(body), &payload)
	if !errors.Is(err, utils.ErrBadRequest) {
		t.Errorf("DecodeJSON() error = %v, want bad request", err)
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		payload    signupPayload
		wantFields []string
	}{
		{"Valid", signupPayload{Name: "Ann", Email: "ann@x.com", Password: "Secret123"}, nil},
		{"Missing everything", signupPayload{}, []string{"name", "email", "password"}},
		{"Bad email", signupPayload{Name: "Ann", Email: "not-an-email", Password: "Secret123"}, []string{"email"}},
		{"Short password", signupPayload{Name: "Ann", Email: "ann@x.com", Password: "12345"}, []string{"password"}},
		{"Blank password", signupPayload{Name: "Ann", Email: "ann@x.com", Password: "        "}, []string{"password"}},
		{"Blank name", signupPayload{Name: "   ", Email: "ann@x.com", Password: "Secret123"}, []string{"name"}},
		{"Long name", signupPayload{Name: strings.Repeat("n", 51), Email: "ann@x.com", Password: "Secret123"}, []string{"name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := utils.ValidateStruct(&tt.payload)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("ValidateStruct() unexpected error = %v", err)
				}
				return
			}

			var appErr *utils.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("ValidateStruct() error = %v, want *AppError", err)
			}
			for _, field := range tt.wantFields {
				if _, ok := appErr.Details[field]; !ok {
					t.Errorf("expected details for %s, got %v", field, appErr.Details)
				}
			}
			if len(appErr.Details) != len(tt.wantFields) {
				t.Errorf("details = %v, want fields %v", appErr.Details, tt.wantFields)
			}
		})
	}
}

func TestDecodeAndValidate(t *testing.T) {
	var payload signupPayload
	err := utils.DecodeAndValidate(newJSONRequest(`{"name":"Ann","email":"bad","password":"Secret123"}`), &payload)

	if !utils.IsValidationError(err) {
		t.Errorf("DecodeAndValidate() error = %v, want validation error", err)
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"ann@x.com", true},
		{"first.last+tag@example.co.uk", true},
		{"ann@", false},
		{"@x.com", false},
		{"plain", false},
	}

	for _, tt := range tests {
		if got := utils.IsValidEmail(tt.email); got != tt.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := utils.ValidatePassword("password", "Secret123"); err != nil {
		t.Errorf("ValidatePassword() unexpected error = %v", err)
	}

	err := utils.ValidatePassword("newPassword", "short")
	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("ValidatePassword() error = %v, want *AppError", err)
	}
	if _, ok := appErr.Details["newPassword"]; !ok {
		t.Errorf("expected error under newPassword, got %v", appErr.Details)
	}

	if err := utils.ValidatePassword("password", strings.Repeat("a", 72)); err != nil {
		t.Errorf("ValidatePassword() 72 bytes unexpected error = %v", err)
	}
	if err := utils.ValidatePassword("password", strings.Repeat("a", 73)); !utils.IsValidationError(err) {
		t.Errorf("ValidatePassword() 73 bytes error = %v, want validation error", err)
	}
	// 25 three-byte runes: long enough in characters, too long in bytes
	if err := utils.ValidatePassword("password", strings.Repeat("€", 25)); !utils.IsValidationError(err) {
		t.Errorf("ValidatePassword() multi-byte error = %v, want validation error", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := utils.NormalizeEmail("  Ann@X.Com "); got != "ann@x.com" {
		t.Errorf("NormalizeEmail() = %v, want ann@x.com", got)
	}
}
