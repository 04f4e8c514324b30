package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/oggyb/yourcode/internal/config"
	"github.com/oggyb/yourcode/internal/logger"
)

// RouterOptions controls the parts of the router that depend on runtime
// wiring rather than config.
type RouterOptions struct {
	// UploadDir is served under the media public URL when set.
	UploadDir string
}

// NewRouter builds the chi router with the shared middleware stack and
// mounts every registrar.
func NewRouter(cfg *config.Config, opts RouterOptions, registrars ...Registrar) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		Message(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		Message(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if opts.UploadDir != "" {
		prefix := cfg.Media.PublicURL
		if prefix == "" || prefix[0] != '/' {
			prefix = "/uploads"
		}
		fs := http.StripPrefix(prefix, http.FileServer(noListingFS{http.Dir(opts.UploadDir)}))
		r.Handle(prefix+"/*", fs)
	}

	// register all services
	for _, reg := range registrars {
		reg.Register(r)
	}
	return r
}

// noListingFS serves files only; directories look missing so the upload
// dir cannot be enumerated.
type noListingFS struct {
	http.FileSystem
}

func (fs noListingFS) Open(name string) (http.File, error) {
	f, err := fs.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if st.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

// HTTPServer wraps net/http with graceful shutdown.
type HTTPServer struct {
	srv *http.Server
}

func NewHTTPServer(cfg *config.Config, handler http.Handler) *HTTPServer {
	return &HTTPServer{srv: &http.Server{
		Addr:              net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
	}}
}

// Start blocks until the server stops. A clean shutdown returns nil.
func (s *HTTPServer) Start() error {
	logger.Info("starting HTTP server", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
