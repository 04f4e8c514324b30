// Package upload accepts code screenshots and puts them in the media store.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/oggyb/yourcode/internal/app"
	svcErr "github.com/oggyb/yourcode/internal/errors"
)

// sniffLen is how much of the file net/http looks at to detect its type.
const sniffLen = 512

// allowedTypes maps accepted image MIME types to the stored extension.
var allowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

type Result struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type Service struct {
	appCtx *app.AppContext
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx}
}

// MaxBytes is the largest accepted file.
func (s *Service) MaxBytes() int64 {
	if n := s.appCtx.Config.Media.MaxBytes; n > 0 {
		return n
	}
	return 5 << 20
}

// Store checks an uploaded image and saves it as code_<user>_<uuid>.<ext>.
// Both the declared type and the sniffed content must be an allowed image
// type.
func (s *Service) Store(ctx context.Context, userID uint64, r io.Reader, size int64, declared string) (*Result, error) {
	if s.appCtx.Media == nil {
		return nil, svcErr.Internal("media store", errors.New("no media store configured"))
	}
	if size <= 0 {
		return nil, svcErr.Validation("No file uploaded")
	}
	if size > s.MaxBytes() {
		return nil, svcErr.Validation(fmt.Sprintf("File too large. Maximum size is %d bytes", s.MaxBytes()))
	}
	if _, ok := allowedTypes[mediaType(declared)]; !ok {
		return nil, svcErr.Validation("Invalid file type. Only JPEG, PNG, GIF and WEBP are allowed")
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, svcErr.Internal("read upload", err)
	}
	head = head[:n]

	sniffed := mediaType(http.DetectContentType(head))
	ext, ok := allowedTypes[sniffed]
	if !ok {
		return nil, svcErr.Validation("File content is not an allowed image")
	}

	filename := fmt.Sprintf("code_%d_%s.%s", userID, uuid.NewString(), ext)
	url, err := s.appCtx.Media.Save(ctx, filename, io.MultiReader(bytes.NewReader(head), r), size, sniffed)
	if err != nil {
		s.appCtx.Logger.Error("save upload failed", "user", userID, "file", filename, "err", err)
		return nil, svcErr.Internal("Failed to upload file", err)
	}

	s.appCtx.Logger.Info("upload stored", "user", userID, "file", filename, "bytes", size)
	return &Result{Success: true, URL: url, Filename: filename}, nil
}

func mediaType(ct string) string {
	mt, _, _ := strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
