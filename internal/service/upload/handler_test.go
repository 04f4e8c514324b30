package upload_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/yourcode/internal/app"
	"github.com/oggyb/yourcode/internal/auth"
	"github.com/oggyb/yourcode/internal/media"
	"github.com/oggyb/yourcode/internal/server"
	"github.com/oggyb/yourcode/internal/service/upload"
	"github.com/oggyb/yourcode/internal/testutil"
)

// minimal PNG signature plus IHDR start; enough for content sniffing
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

func setup(t *testing.T) (*app.AppContext, string, http.Handler) {
	t.Helper()
	appCtx, _ := testutil.NewAppContext(t)
	dir := t.TempDir()
	store, err := media.NewLocalStore(dir, "/uploads")
	require.NoError(t, err)
	appCtx.Media = store
	h := server.NewRouter(appCtx.Config, server.RouterOptions{UploadDir: dir}, upload.NewRegistrar(appCtx))
	return appCtx, dir, h
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
		hdr.Set("Content-Type", contentType)
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func post(t *testing.T, appCtx *app.AppContext, h http.Handler, body *bytes.Buffer, ct string) *httptest.ResponseRecorder {
	t.Helper()
	tok, err := appCtx.Tokens.Issue(auth.Identity{UserID: 7})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUploadStoresImage(t *testing.T) {
	appCtx, dir, h := setup(t)

	body, ct := multipartBody(t, upload.FormField, "shot.png", "image/png", pngBytes)
	rec := post(t, appCtx, h, body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res upload.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Regexp(t, regexp.MustCompile(`^code_7_[0-9a-f-]{36}\.png$`), res.Filename)
	assert.Equal(t, "/uploads/"+res.Filename, res.URL)

	stored, err := os.ReadFile(filepath.Join(dir, res.Filename))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)

	// served back under the public prefix
	req := httptest.NewRequest(http.MethodGet, res.URL, nil)
	served := httptest.NewRecorder()
	h.ServeHTTP(served, req)
	assert.Equal(t, http.StatusOK, served.Code)
	assert.Equal(t, pngBytes, served.Body.Bytes())
}

func TestUploadRejections(t *testing.T) {
	appCtx, _, h := setup(t)

	cases := []struct {
		name  string
		field string
		ct    string
		data  []byte
	}{
		{"missing file", "", "", nil},
		{"wrong field", "file", "image/png", pngBytes},
		{"declared text", upload.FormField, "text/plain", pngBytes},
		{"disguised content", upload.FormField, "image/png", []byte("<?php echo 1; ?>")},
		{"too large", upload.FormField, "image/png", append(append([]byte{}, pngBytes...), make([]byte, 5<<20)...)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, ct := multipartBody(t, tc.field, "f.png", tc.ct, tc.data)
			rec := post(t, appCtx, h, body, ct)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestUploadRequiresAuth(t *testing.T) {
	_, _, h := setup(t)
	body, ct := multipartBody(t, upload.FormField, "shot.png", "image/png", pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
