package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"wathaci-webhooks/internal/domain"
	"wathaci-webhooks/internal/domain/model"
	"wathaci-webhooks/internal/domain/ports/adapter"
	"wathaci-webhooks/internal/infra/logging"
	"wathaci-webhooks/internal/infra/metrics"
)

const (
	SourceLenco       = "lenco"
	SourceLencoReplay = "lenco-replay"
)

var _ WebhookUseCase = (*webhookUC)(nil)

// InboundWebhook is one raw delivery as received over HTTP.
type InboundWebhook struct {
	Source    string
	Signature string
	Body      []byte
	// ReadErr is set when the transport could not read the whole body.
	ReadErr error
}

// WebhookResult is the terminal state of one delivery.
type WebhookResult struct {
	HTTPStatus int
	Status     model.WebhookLogStatus
	// Err is the rejection cause for non-2xx results. For 200 results it carries
	// downstream partial failures, which are logged but never change the status.
	Err     error
	Event   *model.WebhookEvent
	Applied bool
	LogID   string
}

type WebhookUseCase interface {
	// Handle drives one delivery through verify, parse, ledger, reconcile and notify,
	// and always finishes by writing the audit log.
	Handle(ctx context.Context, in InboundWebhook) WebhookResult
	// Replay feeds a stored, previously verified payload back through the pipeline.
	Replay(ctx context.Context, logID string) (WebhookResult, error)
}

type webhookUC struct {
	verifier adapter.WebhookVerifier
	decoder  adapter.WebhookDecoder
	ledger   LedgerUseCase
	recon    ReconcileUseCase
	notifier NotificationUseCase
	audit    AuditUseCase
	log      *zerolog.Logger
}

func NewWebhookUseCase(
	verifier adapter.WebhookVerifier,
	decoder adapter.WebhookDecoder,
	ledger LedgerUseCase,
	recon ReconcileUseCase,
	notifier NotificationUseCase,
	audit AuditUseCase,
	logger *zerolog.Logger,
) *webhookUC {
	return &webhookUC{
		verifier: verifier,
		decoder:  decoder,
		ledger:   ledger,
		recon:    recon,
		notifier: notifier,
		audit:    audit,
		log:      logger,
	}
}

func (u *webhookUC) Handle(ctx context.Context, in InboundWebhook) WebhookResult {
	defer logging.TraceDuration(u.log, "WebhookUC.Handle")()
	start := time.Now()
	if in.Source == "" {
		in.Source = SourceLenco
	}
	ctx = logging.WithSource(ctx, in.Source)

	var res WebhookResult
	verified := false
	switch {
	case in.ReadErr != nil:
		res = reject(http.StatusBadRequest, in.ReadErr)
	case in.Signature == "":
		res = reject(http.StatusUnauthorized, domain.ErrMissingSignature)
	case !u.verifier.Verify(in.Signature, in.Body):
		res = reject(http.StatusUnauthorized, domain.ErrAuthentication)
	default:
		verified = true
		res = u.apply(ctx, in.Body)
	}

	u.finish(context.WithoutCancel(ctx), in.Source, in.Body, verified, &res, start)
	return res
}

func (u *webhookUC) Replay(ctx context.Context, logID string) (WebhookResult, error) {
	defer logging.TraceDuration(u.log, "WebhookUC.Replay")()
	start := time.Now()

	rec, err := u.audit.Get(ctx, logID)
	if err != nil {
		return WebhookResult{}, err
	}
	if !rec.Replayable() {
		return WebhookResult{}, fmt.Errorf("log %s (%s): %w", rec.ID, rec.Status, domain.ErrReplayNotAllowed)
	}

	ctx = logging.WithSource(ctx, SourceLencoReplay)
	res := u.apply(ctx, rec.Payload)
	u.finish(context.WithoutCancel(ctx), SourceLencoReplay, rec.Payload, true, &res, start)
	return res, nil
}

// apply runs the post-verification stages. Panics escaping the per-stage guards
// degrade the delivery to a 500.
func (u *webhookUC) apply(ctx context.Context, body []byte) (res WebhookResult) {
	ev, err := u.decoder.Decode(body)
	if err != nil {
		return reject(http.StatusBadRequest, err)
	}
	ctx = logging.WithReference(ctx, ev.Reference)

	defer func() {
		if rec := recover(); rec != nil {
			logging.With(ctx, u.log).Error().Interface("panic", rec).Msg("webhook processing panicked")
			res = WebhookResult{
				HTTPStatus: http.StatusInternalServerError,
				Status:     model.WebhookLogFailed,
				Err:        fmt.Errorf("%w: %v", domain.ErrUnexpected, rec),
				Event:      ev,
			}
		}
	}()

	// LEDGER_UPDATED -> RECONCILED -> NOTIFIED; each stage runs whatever the previous returned.
	applied, ledgerErr := u.ledger.RecordPayment(ctx, ev)
	reconErr := u.recon.Reconcile(ctx, ev)
	notifyErr := u.notifier.Notify(ctx, ev)

	partial := errors.Join(ledgerErr, reconErr, notifyErr)
	if partial != nil {
		logging.With(ctx, u.log).Warn().Err(partial).Msg("webhook processed with partial failures")
	}
	return WebhookResult{
		HTTPStatus: http.StatusOK,
		Status:     model.WebhookLogProcessed,
		Err:        partial,
		Event:      ev,
		Applied:    applied,
	}
}

// finish writes the audit record and metrics; it is the terminal LOGGED state.
// Callers detach ctx from cancellation so a timed-out request still leaves its row.
func (u *webhookUC) finish(ctx context.Context, source string, body []byte, verified bool, res *WebhookResult, start time.Time) {
	entry := AuditEntry{
		Source:     source,
		Payload:    body,
		HTTPStatus: res.HTTPStatus,
		Status:     res.Status,
		Err:        res.Err,
		Verified:   verified,
	}
	if res.Event != nil {
		entry.Event = res.Event.EventType
		entry.Reference = res.Event.Reference
	}
	if rec := u.audit.Log(ctx, entry); rec != nil {
		res.LogID = rec.ID
	}

	reason := reasonOf(res)
	metrics.ObserveWebhook(source, string(res.Status), reason, time.Since(start))

	lvl := zerolog.InfoLevel
	if res.HTTPStatus >= http.StatusBadRequest {
		lvl = zerolog.WarnLevel
	}
	logging.With(ctx, u.log).WithLevel(lvl).
		Int("http_status", res.HTTPStatus).
		Str("result", string(res.Status)).
		Str("reason", reason).
		Bool("applied", res.Applied).
		Dur("duration", time.Since(start)).
		Msg("webhook handled")
}

func reject(code int, err error) WebhookResult {
	status := model.WebhookLogRejected
	if code >= http.StatusInternalServerError {
		status = model.WebhookLogFailed
	}
	return WebhookResult{HTTPStatus: code, Status: status, Err: err}
}

func reasonOf(res *WebhookResult) string {
	switch {
	case res.HTTPStatus == http.StatusOK:
		return "ok"
	case errors.Is(res.Err, domain.ErrMissingSignature):
		return "missing_signature"
	case errors.Is(res.Err, domain.ErrAuthentication):
		return "bad_signature"
	case errors.Is(res.Err, domain.ErrPayloadTooLarge):
		return "too_large"
	case errors.Is(res.Err, domain.ErrMalformedPayload):
		return "bad_payload"
	default:
		return "internal"
	}
}
