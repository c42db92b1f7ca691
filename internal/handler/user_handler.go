package handler

import (
	"errors"
	"net/http"

	"stickynotes-server/internal/domain"
	"stickynotes-server/internal/middleware"
	"stickynotes-server/internal/service"
	"stickynotes-server/pkg/response"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		response.NotFound(w, "User not found")
		return
	}

	response.Success(w, user)
}

func (h *UserHandler) SetPin(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req domain.PinRequest
	if !decodeBody(w, r, nil, &req) {
		return
	}

	if err := h.users.SetPin(r.Context(), userID, req.Pin); err != nil {
		if errors.Is(err, domain.ErrInvalidPin) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to set pin")
		return
	}

	response.Success(w, map[string]string{"message": "Pin set successfully"})
}

func (h *UserHandler) VerifyPin(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req domain.PinRequest
	if !decodeBody(w, r, nil, &req) {
		return
	}

	valid, err := h.users.VerifyPin(r.Context(), userID, req.Pin)
	if err != nil {
		response.InternalError(w, "Failed to verify pin")
		return
	}

	response.Success(w, domain.PinVerifyResponse{Valid: valid})
}
