package swipe

import (
	"github.com/go-chi/chi/v5"

	"github.com/oggyb/yourcode/internal/app"
	"github.com/oggyb/yourcode/internal/server"
)

// Registrar ties the swipe endpoints into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the swipe service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the swipe handlers behind bearer auth
func (r *Registrar) Register(router chi.Router) {
	h := NewHandler(NewService(r.appCtx))
	router.Group(func(g chi.Router) {
		g.Use(server.RequireAuth(r.appCtx.Tokens))
		g.Get("/api/posts/swipe", h.Feed)
		g.Post("/api/posts/like", h.Like)
		g.Post("/api/posts/pass", h.Pass)
	})
}
