package upload

import (
	"github.com/go-chi/chi/v5"

	"github.com/oggyb/yourcode/internal/app"
	"github.com/oggyb/yourcode/internal/server"
)

// Registrar ties the upload endpoint into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

func (r *Registrar) Register(router chi.Router) {
	h := NewHandler(NewService(r.appCtx))
	router.With(server.RequireAuth(r.appCtx.Tokens)).Post("/api/upload", h.Upload)
}
