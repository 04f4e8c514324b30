package posts

import (
	"net/http"

	"github.com/oggyb/yourcode/internal/repository"
	"github.com/oggyb/yourcode/internal/server"
)

// NextCursorHeader carries the keyset token for the next listing page.
const NextCursorHeader = "X-Next-Cursor"

type CreatePostRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	CodeImage   string  `json:"code_image" validate:"required,max=500"`
	Language    *string `json:"language" validate:"omitempty,max=50"`
	Description *string `json:"description"`
}

type CreatePostResponse struct {
	Message string `json:"message"`
	ID      uint64 `json:"id"`
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /api/posts.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := server.Caller(r)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	var req CreatePostRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, r, err)
		return
	}

	id, err := h.svc.Create(r.Context(), caller.UserID, req)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, CreatePostResponse{Message: "Post created successfully", ID: id})
}

// List handles GET /api/posts?limit=&offset=&cursor=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := server.IntQuery(r, "limit", repository.DefaultListLimit)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	offset, err := server.IntQuery(r, "offset", 0)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}

	views, next, err := h.svc.List(r.Context(), limit, offset, r.URL.Query().Get("cursor"))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	if next != "" {
		w.Header().Set(NextCursorHeader, next)
	}
	server.WriteJSON(w, http.StatusOK, views)
}

// Detail handles GET /api/posts/{id}.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := server.IDParam(r, "id")
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	view, err := h.svc.Detail(r.Context(), id)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, view)
}

// Delete handles DELETE /api/posts/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, err := server.Caller(r)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	id, err := server.IDParam(r, "id")
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id, caller.UserID); err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.Message(w, http.StatusOK, "Post deleted successfully")
}

// ByUser handles GET /api/users/{id}/posts.
func (h *Handler) ByUser(w http.ResponseWriter, r *http.Request) {
	caller, err := server.Caller(r)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	target, err := server.IDParam(r, "id")
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	views, err := h.svc.ByUser(r.Context(), caller.UserID, target)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, views)
}
