package swipe_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/yourcode/internal/app"
	"github.com/oggyb/yourcode/internal/auth"
	"github.com/oggyb/yourcode/internal/repository"
	"github.com/oggyb/yourcode/internal/server"
	"github.com/oggyb/yourcode/internal/service/swipe"
	"github.com/oggyb/yourcode/internal/testutil"
)

func newRouter(t *testing.T, appCtx *app.AppContext) http.Handler {
	t.Helper()
	return server.NewRouter(appCtx.Config, server.RouterOptions{}, swipe.NewRegistrar(appCtx))
}

func bearer(t *testing.T, appCtx *app.AppContext, userID uint64) string {
	t.Helper()
	tok, err := appCtx.Tokens.Issue(auth.Identity{UserID: userID, Username: "u"})
	require.NoError(t, err)
	return "Bearer " + tok
}

func do(h http.Handler, method, path, authz, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSwipeEndpointsRequireAuth(t *testing.T) {
	appCtx, _ := testutil.NewAppContext(t)
	h := newRouter(t, appCtx)

	rec := do(h, http.MethodGet, "/api/posts/swipe", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodPost, "/api/posts/like", "Bearer nope", `{"postId":1}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body server.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unauthorized", body.Error)
}

func TestSwipeFlowOverHTTP(t *testing.T) {
	appCtx, _ := testutil.NewAppContext(t)
	h := newRouter(t, appCtx)

	testutil.CreateUser(t, appCtx.DB, 1, "alice")
	testutil.CreateUser(t, appCtx.DB, 2, "bob")
	p1 := testutil.CreatePost(t, appCtx.DB, 1, "p1", base)
	p2 := testutil.CreatePost(t, appCtx.DB, 2, "p2", base)
	alice, bob := bearer(t, appCtx, 1), bearer(t, appCtx, 2)

	rec := do(h, http.MethodGet, "/api/posts/swipe?limit=5", alice, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var feed []repository.PostView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feed))
	require.Len(t, feed, 1)
	assert.Equal(t, p2.ID, feed[0].ID)
	assert.Equal(t, "bob", feed[0].Username)

	rec = do(h, http.MethodPost, "/api/posts/like", alice, `{"postId":`+itoa(p2.ID)+`}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var like swipe.LikeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &like))
	assert.False(t, like.Matched)

	rec = do(h, http.MethodPost, "/api/posts/like", bob, `{"postId":`+itoa(p1.ID)+`}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &like))
	assert.True(t, like.Matched)

	rec = do(h, http.MethodGet, "/api/posts/swipe", alice, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSwipeBadRequests(t *testing.T) {
	appCtx, _ := testutil.NewAppContext(t)
	h := newRouter(t, appCtx)
	testutil.CreateUser(t, appCtx.DB, 1, "alice")
	alice := bearer(t, appCtx, 1)

	rec := do(h, http.MethodPost, "/api/posts/pass", alice, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPost, "/api/posts/pass", alice, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPost, "/api/posts/pass", alice, `{"postId":999}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodGet, "/api/posts/swipe?limit=abc", alice, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPut, "/api/posts/like", alice, `{"postId":1}`)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func itoa(n uint64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
