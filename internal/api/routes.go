// Route registration and go-chi router setup. Public probe routes sit
// outside the API-key check; everything under /api/v1 is protected
// when a key is configured.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bytedent/assistant/internal/api/handlers"
	apmiddleware "github.com/bytedent/assistant/internal/api/middleware"
	"github.com/bytedent/assistant/internal/domain/chat"
	"github.com/bytedent/assistant/internal/infra/config"
	"github.com/bytedent/assistant/internal/infra/llm"
	"github.com/bytedent/assistant/internal/version"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Engine   *chat.Engine
	Provider llm.LLMProvider
	Cfg      config.Config
	Logger   *slog.Logger
}

// corsMethods expands the "*" wildcard, which go-chi/cors supports for
// origins and headers but not methods, into the verbs this API serves.
func corsMethods(methods []string) []string {
	if len(methods) == 1 && methods[0] == "*" {
		return []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}
	return methods
}

// NewRouter creates and configures the chi router with all routes.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Cfg.CORSOrigins,
		AllowCredentials: d.Cfg.CORSAllowCredentials,
		AllowedMethods:   corsMethods(d.Cfg.CORSAllowMethods),
		AllowedHeaders:   d.Cfg.CORSAllowHeaders,
	}))
	r.Use(apmiddleware.RequestLogger(d.Logger))
	r.Use(apmiddleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)

	chatHandler := handlers.NewChatHandler(d.Engine, d.Cfg.MaxMessageChars)
	healthHandler := handlers.NewHealthHandler(d.Provider, d.Engine, version.Version)
	metricsHandler := handlers.NewMetricsHandler(d.Engine)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"name":"bytedent-assistant","health":"/api/v1/health","chat":"/api/v1/chat"}`)) //nolint:errcheck
	})

	// Prometheus scrape endpoint.
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Probes stay public so load balancers never need credentials.
		r.Get("/health", healthHandler.Health)
		r.Get("/health/live", healthHandler.Live)
		r.Get("/health/ready", healthHandler.Ready)

		r.Group(func(r chi.Router) {
			r.Use(apmiddleware.APIKeyAuth(d.Cfg.APIKey))

			r.Post("/chat", chatHandler.Chat)
			r.Get("/metrics", metricsHandler.Metrics)
		})
	})

	return r
}
