package handlers

import (
	"net/http"
	"time"

	"github.com/ecotrack/auth-service/internal/auth"
	"github.com/ecotrack/auth-service/internal/config"
	"github.com/ecotrack/auth-service/internal/constants"
	"github.com/ecotrack/auth-service/internal/models"
	"github.com/ecotrack/auth-service/internal/utils"
)

// AuthHandler handles authentication-related routes
type AuthHandler struct {
	authService      AuthServiceInterface
	cookie           config.CookieSettings
	secureCookie     bool
	exposeResetToken bool
}

// NewAuthHandler creates a new AuthHandler.
// The reset token is only ever echoed back outside production.
func NewAuthHandler(authService AuthServiceInterface, cfg *config.AppConfig) *AuthHandler {
	if authService == nil {
		panic("authService cannot be nil")
	}
	production := cfg.App.IsProduction()
	return &AuthHandler{
		authService:      authService,
		cookie:           cfg.Cookie,
		secureCookie:     production,
		exposeResetToken: cfg.PasswordReset.ExposeToken && !production,
	}
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var reg models.UserRegistration
	if err := utils.DecodeJSON(r, &reg); err != nil {
		utils.HandleError(w, err)
		return
	}

	result, err := h.authService.Register(r.Context(), &reg)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	h.sendTokenResponse(w, http.StatusCreated, result)
}

// Login handles user authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.UserCredentials
	if err := utils.DecodeJSON(r, &creds); err != nil {
		utils.HandleError(w, err)
		return
	}

	result, err := h.authService.Login(r.Context(), &creds)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	h.sendTokenResponse(w, http.StatusOK, result)
}

// Logout revokes the current session token and clears the cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetClaims(r)
	if !ok {
		utils.Unauthorized(w, "")
		return
	}

	if err := h.authService.Logout(r.Context(), claims); err != nil {
		utils.HandleError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})

	utils.Message(w, http.StatusOK, constants.MsgLogoutSuccess)
}

// GetMe returns the authenticated user
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetUser(r)
	if !ok {
		utils.Unauthorized(w, "")
		return
	}

	utils.JSON(w, http.StatusOK, user.Public())
}

// Refresh exchanges the current session token for a new one
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	user, userOK := auth.GetUser(r)
	claims, claimsOK := auth.GetClaims(r)
	if !userOK || !claimsOK {
		utils.Unauthorized(w, "")
		return
	}

	result, err := h.authService.Refresh(r.Context(), user, claims)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	h.sendTokenResponse(w, http.StatusOK, result)
}

// UpdatePassword changes the password of the authenticated user
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, "")
		return
	}

	var req models.ChangePasswordRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.HandleError(w, err)
		return
	}

	result, err := h.authService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	h.sendTokenResponse(w, http.StatusOK, result)
}

// sendTokenResponse mirrors the session token into a cookie and writes it with the public user
func (h *AuthHandler) sendTokenResponse(w http.ResponseWriter, statusCode int, result *models.AuthResult) {
	maxAge := h.cookie.CookieMaxAge()
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    result.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
		Expires:  time.Now().Add(maxAge),
	})

	response := utils.Response{
		Success: true,
		Token:   result.Token,
	}
	if result.User != nil {
		response.User = result.User.Public()
	}

	utils.SendJSON(w, statusCode, response)
}
