package users

import (
	"net/http"

	"github.com/oggyb/yourcode/internal/auth"
	svcErr "github.com/oggyb/yourcode/internal/errors"
	"github.com/oggyb/yourcode/internal/server"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest accepts a username or an email in Username.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest fields are optional; an empty github_url clears it.
type UpdateProfileRequest struct {
	Bio          *string `json:"bio" validate:"omitempty,max=1000"`
	ProfileImage *string `json:"profile_image" validate:"omitempty,max=500"`
	GithubURL    *string `json:"github_url" validate:"omitempty,url,max=255"`
}

type SessionResponse struct {
	Message string `json:"message"`
	*Session
}

type VerifyResponse struct {
	Valid bool          `json:"valid"`
	User  auth.Identity `json:"user"`
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, r, err)
		return
	}
	sess, err := h.svc.Register(r.Context(), req)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, SessionResponse{Message: "User created successfully", Session: sess})
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, r, err)
		return
	}
	sess, err := h.svc.Login(r.Context(), req)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, SessionResponse{Message: "Login successful", Session: sess})
}

// Verify handles GET /api/auth/verify.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	token, ok := server.BearerToken(r)
	if !ok {
		server.WriteError(w, r, svcErr.Unauthorized("No token provided"))
		return
	}
	id, err := h.svc.Verify(token)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, VerifyResponse{Valid: true, User: id})
}

// Me handles GET /api/users/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	caller, err := server.Caller(r)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	h.writeProfile(w, r, caller.UserID)
}

// Profile handles GET /api/users/{id}.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	id, err := server.IDParam(r, "id")
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	h.writeProfile(w, r, id)
}

func (h *Handler) writeProfile(w http.ResponseWriter, r *http.Request, id uint64) {
	p, err := h.svc.Profile(r.Context(), id)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, p)
}

// Update handles PUT /api/users/me.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller, err := server.Caller(r)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	var req UpdateProfileRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, r, err)
		return
	}
	if err := h.svc.UpdateProfile(r.Context(), caller.UserID, req); err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.Message(w, http.StatusOK, "Profile updated successfully")
}

// Search handles GET /api/users/search?q=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	found, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, found)
}
