package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"wathaci-webhooks/internal/domain"
	"wathaci-webhooks/internal/infra/logging"
	"wathaci-webhooks/internal/infra/payment"
	"wathaci-webhooks/internal/usecase"
)

const (
	msgMissingSignature = "Missing webhook signature"
	msgInvalidSignature = "Invalid webhook signature"
	msgInvalidPayload   = "Invalid webhook payload"
	msgInternal         = "Internal server error"

	DefaultMaxBodyBytes int64 = 1 << 20
)

type webhookResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// WebhookServer is the HTTP face of the Lenco webhook pipeline.
type WebhookServer struct {
	uc      usecase.WebhookUseCase
	maxBody int64
	log     *zerolog.Logger
}

func NewWebhookServer(uc usecase.WebhookUseCase, maxBody int64, logger *zerolog.Logger) *WebhookServer {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &WebhookServer{uc: uc, maxBody: maxBody, log: logger}
}

// Register mounts POST and the CORS preflight on path.
func (s *WebhookServer) Register(r chi.Router, path string) {
	r.With(CORS()).Post(path, s.handleWebhook)
	r.With(CORS()).Options(path, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *WebhookServer) handleWebhook(w http.ResponseWriter, r *http.Request) {
	in := usecase.InboundWebhook{
		Source:    usecase.SourceLenco,
		Signature: r.Header.Get(payment.SignatureHeader),
	}
	in.Body, in.ReadErr = readBody(w, r, s.maxBody)

	res := s.uc.Handle(r.Context(), in)
	if res.HTTPStatus == http.StatusOK {
		writeJSON(w, http.StatusOK, webhookResponse{Success: true})
		return
	}
	if res.HTTPStatus >= http.StatusInternalServerError {
		logging.With(r.Context(), s.log).Error().Err(res.Err).Str("log_id", res.LogID).Msg("webhook failed")
	}
	writeJSON(w, res.HTTPStatus, webhookResponse{Success: false, Error: messageFor(res)})
}

// readBody reads at most limit bytes. Oversize bodies are ErrPayloadTooLarge and
// any other read failure is ErrMalformedPayload.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err == nil {
		return body, nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, fmt.Errorf("body over %d bytes: %w", tooLarge.Limit, domain.ErrPayloadTooLarge)
	}
	return nil, fmt.Errorf("read body: %v: %w", err, domain.ErrMalformedPayload)
}

func messageFor(res usecase.WebhookResult) string {
	switch {
	case errors.Is(res.Err, domain.ErrMissingSignature):
		return msgMissingSignature
	case res.HTTPStatus == http.StatusUnauthorized:
		return msgInvalidSignature
	case res.HTTPStatus == http.StatusBadRequest:
		return msgInvalidPayload
	default:
		return msgInternal
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
