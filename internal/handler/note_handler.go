package handler

import (
	"errors"
	"net/http"

	"stickynotes-server/internal/domain"
	"stickynotes-server/internal/middleware"
	"stickynotes-server/internal/service"
	"stickynotes-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type NoteHandler struct {
	service  *service.NoteService
	validate *validator.Validate
}

func NewNoteHandler(service *service.NoteService) *NoteHandler {
	return &NoteHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	notes, err := h.service.List(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list notes")
		return
	}

	response.Success(w, notes)
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNoteRequest
	if !decodeBody(w, r, h.validate, &req) {
		return
	}

	userID := middleware.GetUserID(r)

	note, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		response.InternalError(w, "Failed to create note")
		return
	}

	response.Created(w, note)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	note, err := h.service.Get(r.Context(), userID, noteID)
	if err != nil {
		writeNoteError(w, err, "Failed to get note")
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]

	var req domain.UpdateNoteRequest
	if !decodeBody(w, r, h.validate, &req) {
		return
	}

	userID := middleware.GetUserID(r)

	note, err := h.service.Update(r.Context(), userID, noteID, &req)
	if err != nil {
		writeNoteError(w, err, "Failed to update note")
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	if err := h.service.Delete(r.Context(), userID, noteID); err != nil {
		writeNoteError(w, err, "Failed to delete note")
		return
	}

	response.Success(w, map[string]string{"message": "Note deleted successfully"})
}

func (h *NoteHandler) Share(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]

	username := r.URL.Query().Get("username")
	if username == "" {
		response.BadRequest(w, "username query parameter is required")
		return
	}

	userID := middleware.GetUserID(r)

	note, err := h.service.Share(r.Context(), userID, noteID, username)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSelfShare), errors.Is(err, domain.ErrUserNotFound):
			response.BadRequest(w, err.Error())
		default:
			writeNoteError(w, err, "Failed to share note")
		}
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) History(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["noteId"]
	userID := middleware.GetUserID(r)

	entries, err := h.service.History(r.Context(), userID, noteID)
	if err != nil {
		writeNoteError(w, err, "Failed to get note history")
		return
	}

	response.Success(w, entries)
}

func (h *NoteHandler) ShareCandidates(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	users, err := h.service.ShareCandidates(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list users")
		return
	}

	response.Success(w, users)
}

// writeNoteError maps domain failures to distinct statuses: a missing note is
// 404, an ownership or share violation is 403.
func writeNoteError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNoteNotFound):
		response.NotFound(w, domain.ErrNoteNotFound.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		response.Forbidden(w, domain.ErrUnauthorized.Error())
	default:
		response.InternalError(w, fallback)
	}
}
