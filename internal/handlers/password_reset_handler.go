package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ecotrack/auth-service/internal/constants"
	"github.com/ecotrack/auth-service/internal/models"
	"github.com/ecotrack/auth-service/internal/utils"
)

// ForgotPassword handles the request to initiate a password reset.
// The response is the same whether or not the email is registered,
// unless the service is configured to reveal unknown emails.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.HandleError(w, err)
		return
	}

	issue, err := h.authService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	response := utils.Response{
		Success: true,
		Message: constants.MsgResetEmailSent,
	}
	if h.exposeResetToken && issue.Issued() {
		response.ResetToken = issue.Token
	}

	utils.SendJSON(w, http.StatusOK, response)
}

// ResetPassword completes a password reset with the token from the path
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, constants.ParamResetToken)

	var req models.ResetPasswordRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.HandleError(w, err)
		return
	}

	result, err := h.authService.ResetPassword(r.Context(), token, req.Password)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	h.sendTokenResponse(w, http.StatusOK, result)
}
