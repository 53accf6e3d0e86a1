package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"wathaci-webhooks/internal/domain"
	"wathaci-webhooks/internal/domain/model"
	"wathaci-webhooks/internal/domain/ports/repository"
	"wathaci-webhooks/internal/infra/logging"
	"wathaci-webhooks/internal/usecase"
)

// webhookLogView is the admin rendering of one audit row.
type webhookLogView struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	Event      string          `json:"event"`
	Reference  string          `json:"reference,omitempty"`
	HTTPStatus int             `json:"http_status"`
	Status     string          `json:"status"`
	Error      *string         `json:"error,omitempty"`
	Verified   bool            `json:"verified"`
	Replayable bool            `json:"replayable"`
	CreatedAt  time.Time       `json:"created_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	RawPayload string          `json:"raw_payload,omitempty"`
}

func viewOf(l *model.WebhookLog, withPayload bool) webhookLogView {
	v := webhookLogView{
		ID:         l.ID,
		Source:     l.Source,
		Event:      l.Event,
		Reference:  l.Reference,
		HTTPStatus: l.HTTPStatus,
		Status:     string(l.Status),
		Error:      l.Error,
		Verified:   l.Verified,
		Replayable: l.Replayable(),
		CreatedAt:  l.CreatedAt,
	}
	if withPayload && len(l.Payload) > 0 {
		if json.Valid(l.Payload) {
			v.Payload = json.RawMessage(l.Payload)
		} else {
			v.RawPayload = string(l.Payload)
		}
	}
	return v
}

type replayResponse struct {
	LogID      string `json:"log_id"`
	HTTPStatus int    `json:"http_status"`
	Status     string `json:"status"`
	Applied    bool   `json:"applied"`
	Error      string `json:"error,omitempty"`
}

// listLogsHandler serves GET /webhook-logs?limit=N&status=S, newest first.
func listLogsHandler(audit usecase.AuditUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := repository.WebhookLogFilter{}
		if raw := q.Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "Invalid limit")
				return
			}
			f.Limit = n
		}
		switch s := model.WebhookLogStatus(q.Get("status")); s {
		case "", model.WebhookLogProcessed, model.WebhookLogRejected, model.WebhookLogFailed:
			f.Status = s
		default:
			writeError(w, http.StatusBadRequest, "Invalid status")
			return
		}

		logs, err := audit.List(r.Context(), f)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]webhookLogView, 0, len(logs))
		for _, l := range logs {
			out = append(out, viewOf(l, false))
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": out, "count": len(out)})
	}
}

func getLogHandler(audit usecase.AuditUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := audit.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, viewOf(l, true))
	}
}

func replayHandler(webhooks usecase.WebhookUseCase, logger *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		res, err := webhooks.Replay(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		logging.With(r.Context(), logger).Info().
			Str("replayed_log_id", id).
			Str("log_id", res.LogID).
			Int("http_status", res.HTTPStatus).
			Msg("webhook replayed")

		out := replayResponse{
			LogID:      res.LogID,
			HTTPStatus: res.HTTPStatus,
			Status:     string(res.Status),
			Applied:    res.Applied,
		}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "Invalid id")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, domain.ErrReplayNotAllowed):
		writeError(w, http.StatusConflict, "Log is not replayable")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
