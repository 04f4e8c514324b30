package users

import (
	"github.com/go-chi/chi/v5"

	"github.com/oggyb/yourcode/internal/app"
	"github.com/oggyb/yourcode/internal/server"
)

// Registrar ties account and profile endpoints into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

func (r *Registrar) Register(router chi.Router) {
	h := NewHandler(NewService(r.appCtx))

	// public
	router.Post("/api/auth/register", h.Register)
	router.Post("/api/auth/login", h.Login)
	router.Get("/api/auth/verify", h.Verify)

	router.Group(func(g chi.Router) {
		g.Use(server.RequireAuth(r.appCtx.Tokens))
		g.Get("/api/users/search", h.Search)
		g.Get("/api/users/me", h.Me)
		g.Put("/api/users/me", h.Update)
		g.Get("/api/users/{id}", h.Profile)
	})
}
