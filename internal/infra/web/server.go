package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"wathaci-webhooks/internal/infra/logging"
	"wathaci-webhooks/internal/usecase"
)

// Server is the admin API over the webhook audit trail.
type Server struct {
	audit    usecase.AuditUseCase
	webhooks usecase.WebhookUseCase
	auth     *AuthManager
	log      *zerolog.Logger
}

func NewServer(audit usecase.AuditUseCase, webhooks usecase.WebhookUseCase, auth *AuthManager, logger *zerolog.Logger) *Server {
	return &Server{audit: audit, webhooks: webhooks, auth: auth, log: logger}
}

// Routes returns the admin subtree, meant to be mounted under /admin.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.authMiddleware)
	r.Get("/webhook-logs", listLogsHandler(s.audit))
	r.Get("/webhook-logs/{id}", getLogHandler(s.audit))
	r.Post("/webhook-logs/{id}/replay", replayHandler(s.webhooks, s.log))
	return r
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			logging.With(r.Context(), s.log).Debug().Err(err).Msg("admin auth rejected")
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		ctx := logging.WithUserID(r.Context(), claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
