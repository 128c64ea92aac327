package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// NewRouter mounts the API routes. Callers may add further routes, such as
// the MCP endpoint, to the returned router.
func NewRouter(h *Handler, origins []string, log zerolog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(30 * time.Second))

		r.Get("/players", h.GetPlayers)
		r.Get("/last-updated", h.GetLastUpdated)
		r.Post("/calculate", h.Calculate)
		r.Get("/table", h.GetTable)
		r.Post("/compare", h.Compare)
		r.Post("/refresh", h.Refresh)
		// older clients call refresh with GET
		r.Get("/refresh-data", h.Refresh)
	})

	// the roster documents, so another instance can use this one as its
	// http data source
	r.Route("/data", func(r chi.Router) {
		r.Get("/players.json", h.GetPlayers)
		r.Get("/last_updated.json", h.GetLastUpdated)
	})

	return r
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Str("request_id", chimiddleware.GetReqID(r.Context())).
					Msg("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
