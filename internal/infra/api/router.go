package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"wathaci-webhooks/internal/infra/metrics"
)

// Pinger is a dependency probed by /health.
type Pinger func(ctx context.Context) error

type RouterConfig struct {
	WebhookPath    string
	RequestTimeout time.Duration
	// Checks are probed by /health; a failing check answers 503.
	Checks map[string]Pinger
}

// NewRouter wires the webhook endpoint, health, metrics and the optional admin subtree.
func NewRouter(cfg RouterConfig, webhook *WebhookServer, admin http.Handler, logger *zerolog.Logger) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	r := chi.NewRouter()
	r.Use(chimw.RealIP, TraceID(), RequestLog(logger), Recover(logger), Timeout(cfg.RequestTimeout))

	r.Get("/health", healthHandler(cfg.Checks))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	webhook.Register(r, cfg.WebhookPath)
	if admin != nil {
		r.Mount("/admin", admin)
	}
	return r
}

func healthHandler(checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		out := map[string]string{}
		code := http.StatusOK
		for name, ping := range checks {
			if err := ping(ctx); err != nil {
				out[name] = "down"
				code = http.StatusServiceUnavailable
				continue
			}
			out[name] = "ok"
		}
		writeJSON(w, code, map[string]any{"status": http.StatusText(code), "checks": out})
	}
}
