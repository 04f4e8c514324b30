package swipe

import (
	"net/http"

	"github.com/oggyb/yourcode/internal/repository"
	"github.com/oggyb/yourcode/internal/server"
)

// DecisionRequest is the body of a like or pass.
type DecisionRequest struct {
	PostID uint64 `json:"postId" validate:"required,gt=0"`
}

// LikeResponse tells the client whether the like completed a match.
type LikeResponse struct {
	Message string `json:"message"`
	Matched bool   `json:"matched"`
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Feed handles GET /api/posts/swipe.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	caller, err := server.Caller(r)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	limit, err := server.IntQuery(r, "limit", repository.DefaultFeedLimit)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}

	batch, err := h.svc.Feed(r.Context(), caller.UserID, limit)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, batch)
}

// Like handles POST /api/posts/like.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	caller, req, ok := h.decision(w, r)
	if !ok {
		return
	}
	matched, err := h.svc.Like(r.Context(), caller, req.PostID)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, LikeResponse{Message: "Post liked successfully", Matched: matched})
}

// Pass handles POST /api/posts/pass.
func (h *Handler) Pass(w http.ResponseWriter, r *http.Request) {
	caller, req, ok := h.decision(w, r)
	if !ok {
		return
	}
	if err := h.svc.Pass(r.Context(), caller, req.PostID); err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.Message(w, http.StatusOK, "Post passed successfully")
}

func (h *Handler) decision(w http.ResponseWriter, r *http.Request) (uint64, DecisionRequest, bool) {
	var req DecisionRequest
	caller, err := server.Caller(r)
	if err == nil {
		err = server.DecodeJSON(r, &req)
	}
	if err != nil {
		server.WriteError(w, r, err)
		return 0, req, false
	}
	return caller.UserID, req, true
}
