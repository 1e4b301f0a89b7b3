package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ecotrack/auth-service/internal/auth"
	"github.com/ecotrack/auth-service/internal/constants"
	"github.com/ecotrack/auth-service/internal/utils"
)

const headerTotalCount = "X-Total-Count"

// UserHandler handles user administration routes
type UserHandler struct {
	userService UserServiceInterface
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService UserServiceInterface) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns a page of users. limit and offset are optional query parameters.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		utils.ErrorFromAppError(w, utils.NewValidationError("limit", "Must be a number"))
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		utils.ErrorFromAppError(w, utils.NewValidationError("offset", "Must be a number"))
		return
	}

	users, total, err := h.userService.ListUsers(r.Context(), limit, offset)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	w.Header().Set(headerTotalCount, utils.FormatInt64(total))
	utils.JSON(w, http.StatusOK, users)
}

// DeleteUser removes the user named in the path
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, "")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, constants.ParamID), 10, 64)
	if err != nil || id <= 0 {
		utils.ErrorFromAppError(w, utils.NewValidationError(constants.ParamID, "Must be a positive number"))
		return
	}

	if err := h.userService.DeleteUser(r.Context(), actorID, id); err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.Message(w, http.StatusOK, constants.MsgUserDeleted)
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
