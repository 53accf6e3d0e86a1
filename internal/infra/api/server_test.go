//go:build !integration

package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"wathaci-webhooks/internal/domain"
	"wathaci-webhooks/internal/domain/model"
	"wathaci-webhooks/internal/domain/ports/repository"
	"wathaci-webhooks/internal/infra/api"
	"wathaci-webhooks/internal/infra/payment"
	"wathaci-webhooks/internal/usecase"
)

const (
	testSecret  = "whsec_test_secret"
	webhookPath = "/webhooks/lenco"
	successBody = `{"event":"payment.success","data":{"reference":"WC_1","amount":"150.00","currency":"ZMW","status":"success","metadata":{"user_id":"u1","subscription_id":"s1"}}}`
)

// ---- stage fakes ----

type stages struct {
	mu       sync.Mutex
	recorded []*model.WebhookEvent
	entries  []usecase.AuditEntry
	panicOn  bool
}

func (s *stages) RecordPayment(_ context.Context, ev *model.WebhookEvent) (bool, error) {
	if s.panicOn {
		panic("ledger exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorded = append(s.recorded, ev)
	return true, nil
}

func (s *stages) Reconcile(context.Context, *model.WebhookEvent) error { return nil }
func (s *stages) Notify(context.Context, *model.WebhookEvent) error    { return nil }

func (s *stages) Log(_ context.Context, e usecase.AuditEntry) *model.WebhookLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return &model.WebhookLog{ID: "01JABCDEF0000000000000000"}
}

func (s *stages) Get(context.Context, string) (*model.WebhookLog, error) {
	return nil, domain.ErrNotFound
}

func (s *stages) List(context.Context, repository.WebhookLogFilter) ([]*model.WebhookLog, error) {
	return nil, nil
}

func newLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func newTestRouter(st *stages, maxBody int64) http.Handler {
	logger := newLogger()
	uc := usecase.NewWebhookUseCase(
		payment.NewLencoVerifier(testSecret),
		payment.NewLencoDecoder(),
		st, st, st, st,
		logger,
	)
	srv := api.NewWebhookServer(uc, maxBody, logger)
	return api.NewRouter(api.RouterConfig{WebhookPath: webhookPath}, srv, nil, logger)
}

func post(h http.Handler, body, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, webhookPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sig != "" {
		req.Header.Set(payment.SignatureHeader, sig)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestWebhookEndpoint(t *testing.T) {
	t.Run("should answer 200 success for a signed well-formed delivery", func(t *testing.T) {
		// --- Arrange ---
		st := &stages{}
		h := newTestRouter(st, 0)

		// --- Act ---
		rec := post(h, successBody, payment.SignLencoBody([]byte(successBody), testSecret))

		// --- Assert ---
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := decode(t, rec); got["success"] != true || got["error"] != nil {
			t.Errorf("unexpected body %v", got)
		}
		if len(st.recorded) != 1 || st.recorded[0].Reference != "WC_1" {
			t.Errorf("expected ledger write for WC_1, got %v", st.recorded)
		}
		if len(st.entries) != 1 || st.entries[0].Status != model.WebhookLogProcessed {
			t.Errorf("expected one processed audit entry, got %+v", st.entries)
		}
		if rec.Header().Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID response header")
		}
	})

	t.Run("should reject a delivery without signature with 401", func(t *testing.T) {
		// --- Arrange ---
		st := &stages{}
		h := newTestRouter(st, 0)

		// --- Act ---
		rec := post(h, successBody, "")

		// --- Assert ---
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		got := decode(t, rec)
		if got["success"] != false || got["error"] != "Missing webhook signature" {
			t.Errorf("unexpected body %v", got)
		}
		if len(st.recorded) != 0 {
			t.Error("expected no ledger write")
		}
		if len(st.entries) != 1 || st.entries[0].Status != model.WebhookLogRejected {
			t.Errorf("expected one rejected audit entry, got %+v", st.entries)
		}
	})

	t.Run("should reject a garbage signature with 401 Invalid webhook signature", func(t *testing.T) {
		// --- Arrange ---
		st := &stages{}
		h := newTestRouter(st, 0)

		// --- Act ---
		rec := post(h, successBody, "not-a-signature")

		// --- Assert ---
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if got := decode(t, rec); got["error"] != "Invalid webhook signature" {
			t.Errorf("unexpected body %v", got)
		}
		if len(st.recorded) != 0 {
			t.Error("expected no ledger write")
		}
	})

	t.Run("should answer 400 for signed malformed JSON", func(t *testing.T) {
		// --- Arrange ---
		st := &stages{}
		h := newTestRouter(st, 0)
		body := `{"event":"payment.success","data":`

		// --- Act ---
		rec := post(h, body, payment.SignLencoBody([]byte(body), testSecret))

		// --- Assert ---
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if got := decode(t, rec); got["error"] != "Invalid webhook payload" {
			t.Errorf("unexpected body %v", got)
		}
		if len(st.recorded) != 0 {
			t.Error("expected no ledger write")
		}
	})

	t.Run("should answer 400 when the body exceeds the limit", func(t *testing.T) {
		// --- Arrange ---
		st := &stages{}
		h := newTestRouter(st, 64)

		// --- Act ---
		rec := post(h, successBody, payment.SignLencoBody([]byte(successBody), testSecret))

		// --- Assert ---
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if got := decode(t, rec); got["error"] != "Invalid webhook payload" {
			t.Errorf("unexpected body %v", got)
		}
		if len(st.entries) != 1 {
			t.Fatalf("expected one audit entry, got %d", len(st.entries))
		}
	})

	t.Run("should degrade to 500 when processing panics", func(t *testing.T) {
		// --- Arrange ---
		st := &stages{panicOn: true}
		h := newTestRouter(st, 0)

		// --- Act ---
		rec := post(h, successBody, payment.SignLencoBody([]byte(successBody), testSecret))

		// --- Assert ---
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if got := decode(t, rec); got["error"] != "Internal server error" {
			t.Errorf("unexpected body %v", got)
		}
		if len(st.entries) != 1 || st.entries[0].Status != model.WebhookLogFailed {
			t.Errorf("expected one failed audit entry, got %+v", st.entries)
		}
	})

	t.Run("should answer preflight with 204 and CORS headers", func(t *testing.T) {
		// --- Arrange ---
		st := &stages{}
		h := newTestRouter(st, 0)
		req := httptest.NewRequest(http.MethodOptions, webhookPath, nil)
		rec := httptest.NewRecorder()

		// --- Act ---
		h.ServeHTTP(rec, req)

		// --- Assert ---
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("expected permissive CORS origin")
		}
		if !strings.Contains(rec.Header().Get("Access-Control-Allow-Headers"), "x-lenco-signature") {
			t.Errorf("expected signature header to be allowed, got %q", rec.Header().Get("Access-Control-Allow-Headers"))
		}
		if len(st.entries) != 0 {
			t.Error("preflight must not be audited")
		}
	})
}

func TestHealth(t *testing.T) {
	t.Run("should report 503 when a dependency is down", func(t *testing.T) {
		// --- Arrange ---
		logger := newLogger()
		srv := api.NewWebhookServer(nil, 0, logger)
		h := api.NewRouter(api.RouterConfig{
			WebhookPath: webhookPath,
			Checks: map[string]api.Pinger{
				"postgres": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return domain.ErrOperationFailed },
			},
		}, srv, nil, logger)
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		// --- Act ---
		h.ServeHTTP(rec, req)

		// --- Assert ---
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		checks, _ := decode(t, rec)["checks"].(map[string]any)
		if checks["postgres"] != "ok" || checks["redis"] != "down" {
			t.Errorf("unexpected checks %v", checks)
		}
	})
}
