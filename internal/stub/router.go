package stub

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Router returns the HTTP handler serving the stub API. The route
// table matches the surface the dashboard consumes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(withRequestLogging(s.log))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/config", s.handleConfig)

		r.Route("/user", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Post("/register", s.handleRegister)
			r.Post("/password", s.handleCheckPassword)

			r.Route("/me", func(r chi.Router) {
				r.Get("/", s.handleMe)
				r.Delete("/", s.handleDeleteMe)
				r.Post("/password", s.handleChangePassword)
				r.Post("/update", s.handleUpdateUser)
				r.Get("/links", s.handleMyLinks)
			})
		})

		r.Route("/link", func(r chi.Router) {
			r.Post("/shorten", s.handleShorten)
			r.Delete("/{slug}", s.handleDeleteLink)
		})

		r.Route("/domains", func(r chi.Router) {
			r.Get("/", s.handlePagedDomains)
			r.Get("/all", s.handleAllDomains)
			r.Post("/create", s.handleCreateDomain)
			r.Put("/{id}", s.handleUpdateDomain)
			r.Delete("/{id}", s.handleDeleteDomain)
		})

		r.Post("/setup/set", s.handleSetup)
	})

	return r
}

// withRequestLogging logs each request with its duration and status.
func withRequestLogging(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
