package upload

import (
	"errors"
	"net/http"

	svcErr "github.com/oggyb/yourcode/internal/errors"
	"github.com/oggyb/yourcode/internal/server"
)

// FormField is the multipart field carrying the image.
const FormField = "image"

// multipartOverhead leaves room for boundaries and headers on top of the
// file itself.
const multipartOverhead = 64 << 10

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Upload handles POST /api/upload.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	caller, err := server.Caller(r)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}

	max := h.svc.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, max+multipartOverhead)
	if err := r.ParseMultipartForm(max); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			server.WriteError(w, r, svcErr.Validation("File too large"))
			return
		}
		server.WriteError(w, r, svcErr.Validation("No file uploaded"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(FormField)
	if err != nil {
		server.WriteError(w, r, svcErr.Validation("No file uploaded"))
		return
	}
	defer file.Close()

	res, err := h.svc.Store(r.Context(), caller.UserID, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, res)
}
