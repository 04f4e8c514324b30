package posts

import (
	"github.com/go-chi/chi/v5"

	"github.com/oggyb/yourcode/internal/app"
	"github.com/oggyb/yourcode/internal/server"
)

// Registrar ties the post endpoints into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

func (r *Registrar) Register(router chi.Router) {
	h := NewHandler(NewService(r.appCtx))
	router.Group(func(g chi.Router) {
		g.Use(server.RequireAuth(r.appCtx.Tokens))
		g.Get("/api/posts", h.List)
		g.Post("/api/posts", h.Create)
		g.Get("/api/posts/{id}", h.Detail)
		g.Delete("/api/posts/{id}", h.Delete)
		g.Get("/api/users/{id}/posts", h.ByUser)
	})
}
