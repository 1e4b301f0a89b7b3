// Package utils provides utility functions and helpers for the application.
// This file implements the response envelope shared by every endpoint.
//
// Every body carries a success flag. Successful auth operations add token and
// user, lookups add data, and failures add message, code and optional
// per-field errors. Secrets never appear in any of these fields.
package utils

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ecotrack/auth-service/internal/constants"
)

// Response represents a standardized API response.
type Response struct {
	Success    bool              `json:"success"`              // Whether the request was successful
	Message    string            `json:"message,omitempty"`    // Human-readable outcome
	Code       string            `json:"code,omitempty"`       // Machine-readable error code
	Token      string            `json:"token,omitempty"`      // Session claim for auth operations
	User       interface{}       `json:"user,omitempty"`       // Public projection for auth operations
	Data       interface{}       `json:"data,omitempty"`       // Payload for lookups
	ResetToken string            `json:"resetToken,omitempty"` // Raw reset token, only when explicitly exposed
	Errors     map[string]string `json:"errors,omitempty"`     // Per-field validation errors
}

// JSON sends a successful response with data.
//
// The function automatically sets the success flag based on the status code.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	response := Response{
		Success: statusCode >= 200 && statusCode < 300,
		Data:    data,
	}

	SendJSON(w, statusCode, response)
}

// Message sends a successful response that only carries a message.
func Message(w http.ResponseWriter, statusCode int, message string) {
	SendJSON(w, statusCode, Response{Success: true, Message: message})
}

// Error sends an error response with the given status code and error information.
//
// Parameters:
//   - w: The HTTP response writer
//   - statusCode: The HTTP status code
//   - code: A machine-readable error code
//   - message: A human-readable error message
//   - details: Per-field validation errors, may be nil
func Error(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	response := Response{
		Success: false,
		Message: message,
		Code:    code,
		Errors:  details,
	}

	SendJSON(w, statusCode, response)
}

// ErrorFromAppError sends an error response based on an AppError.
// Internal errors are logged with their developer info and answered with a generic message.
func ErrorFromAppError(w http.ResponseWriter, err *AppError) {
	if err.StatusCode >= http.StatusInternalServerError {
		log.Error().Str("dev_info", err.DevInfo).Msg("Internal server error")
		Error(w, http.StatusInternalServerError, constants.CodeInternalError, constants.MsgInternalServerError, nil)
		return
	}

	code := err.Code
	if code == "" {
		code = constants.CodeBadRequest
	}

	Error(w, err.StatusCode, code, err.Message, err.Details)
}

// HandleError translates any error into the matching error response.
func HandleError(w http.ResponseWriter, err error) {
	ErrorFromAppError(w, ParseError(err))
}

// SendJSON is a helper function to send JSON data with proper headers.
func SendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	// Marshal before writing headers so a failure can still change the status
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		w.WriteHeader(http.StatusInternalServerError)
		if _, err := w.Write([]byte(`{"success":false,"message":"Server Error","code":"internal_error"}`)); err != nil {
			log.Error().Err(err).Msg("Failed to write error response")
		}
		return
	}

	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(statusCode)

	if _, err = w.Write(jsonData); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// Unauthorized sends a 401 Unauthorized response with the given message.
func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = constants.MsgAuthRequired
	}
	Error(w, http.StatusUnauthorized, constants.CodeUnauthorized, message, nil)
}

// Forbidden sends a 403 Forbidden response with the given message.
func Forbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = constants.MsgAccessDenied
	}
	Error(w, http.StatusForbidden, constants.CodeForbidden, message, nil)
}

// NotFound sends a 404 Not Found response with the given message.
func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = constants.MsgResourceNotFound
	}
	Error(w, http.StatusNotFound, constants.CodeNotFound, message, nil)
}

// TooManyRequests sends a 429 response.
func TooManyRequests(w http.ResponseWriter) {
	Error(w, http.StatusTooManyRequests, constants.CodeRateLimited, constants.MsgTooManyRequests, nil)
}

// InternalServerError sends a 500 Internal Server Error response.
// The error is logged but not exposed to the client.
func InternalServerError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("Internal server error")
	Error(w, http.StatusInternalServerError, constants.CodeInternalError, constants.MsgInternalServerError, nil)
}

// ValidationError sends a 400 Bad Request response with validation error details.
func ValidationError(w http.ResponseWriter, errors map[string]string) {
	Error(w, http.StatusBadRequest, constants.CodeValidationError, constants.MsgValidationFailed, errors)
}
