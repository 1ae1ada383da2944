// File: internal/infra/web/server.go
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ai-companion-chat/internal/catalog"
	"ai-companion-chat/internal/domain/ports/adapter"
	"ai-companion-chat/internal/domain/ports/repository"
	"ai-companion-chat/internal/infra/logging"
	"ai-companion-chat/internal/usecase"
)

// Server wires the persona catalog, chat sessions, account claims and media
// uploads into the public HTTP API.
type Server struct {
	catalog  *catalog.Catalog
	sessions *usecase.SessionManager
	accounts repository.AccountRepository
	media    adapter.MediaStore
	dev      bool
	log      *zerolog.Logger
}

func NewServer(
	cat *catalog.Catalog,
	sessions *usecase.SessionManager,
	accounts repository.AccountRepository,
	media adapter.MediaStore,
	dev bool,
	logger *zerolog.Logger,
) *Server {
	webLog := logger.With().Str("component", "web").Logger()
	return &Server{
		catalog:  cat,
		sessions: sessions,
		accounts: accounts,
		media:    media,
		dev:      dev,
		log:      &webLog,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLog)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/personas", s.handleListPersonas)
		api.Get("/personas/{personaID}", s.handleGetPersona)

		api.Post("/accounts", s.handleClaimAccount)
		api.Get("/accounts/{username}", s.handleCheckAccount)

		api.Route("/chats/{personaID}", func(c chi.Router) {
			c.Get("/", s.handleGetChat)
			c.Delete("/", s.handleClearChat)
			c.Post("/release", s.handleReleaseChat)
			c.Post("/messages", s.handleSendMessage)
			c.Post("/images", s.handleSendImage)
		})

		api.Post("/media", s.handleUploadMedia)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}

// requestLog stamps the request context with the chi request id so every
// downstream log line carries trace_id, and emits one debug line per request
// with the caller identity redacted outside dev.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithTraceID(r.Context(), middleware.GetReqID(r.Context()))
		r = r.WithContext(ctx)
		logging.With(ctx, s.log).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("username", logging.Redact(r.URL.Query().Get("username"), s.dev)).
			Msg("request")
		next.ServeHTTP(w, r)
	})
}
