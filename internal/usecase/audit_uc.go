package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"wathaci-webhooks/internal/domain"
	"wathaci-webhooks/internal/domain/model"
	"wathaci-webhooks/internal/domain/ports/repository"
	"wathaci-webhooks/internal/infra/logging"
)

var _ AuditUseCase = (*auditUC)(nil)

const (
	maxAuditListLimit     = 200
	defaultAuditListLimit = 50
)

// AuditEntry is the outcome of one webhook attempt, ready to be persisted.
type AuditEntry struct {
	Source     string
	Event      string
	Reference  string
	Payload    []byte
	HTTPStatus int
	Status     model.WebhookLogStatus
	Err        error
	Verified   bool
}

type AuditUseCase interface {
	// Log persists entry. It never fails: storage errors are written to the service log.
	Log(ctx context.Context, entry AuditEntry) *model.WebhookLog
	Get(ctx context.Context, id string) (*model.WebhookLog, error)
	List(ctx context.Context, f repository.WebhookLogFilter) ([]*model.WebhookLog, error)
}

type auditUC struct {
	logs repository.WebhookLogRepository
	log  *zerolog.Logger
	now  func() time.Time
}

func NewAuditUseCase(logs repository.WebhookLogRepository, logger *zerolog.Logger) *auditUC {
	return &auditUC{logs: logs, log: logger, now: time.Now}
}

func (u *auditUC) Log(ctx context.Context, e AuditEntry) (rec *model.WebhookLog) {
	l := logging.With(ctx, u.log)
	defer func() {
		if r := recover(); r != nil {
			l.Error().Interface("panic", r).Msg("audit log write panicked")
		}
	}()

	ts := u.now().UTC()
	rec = &model.WebhookLog{
		ID:         ulid.MustNew(ulid.Timestamp(ts), ulid.DefaultEntropy()).String(),
		Source:     e.Source,
		Event:      e.Event,
		Reference:  e.Reference,
		Payload:    e.Payload,
		HTTPStatus: e.HTTPStatus,
		Status:     e.Status,
		Verified:   e.Verified,
		CreatedAt:  ts,
	}
	if rec.Event == "" {
		rec.Event = "unknown"
	}
	if e.Err != nil {
		msg := e.Err.Error()
		rec.Error = &msg
	}

	if err := u.logs.Save(ctx, repository.NoTX, rec); err != nil {
		l.Error().Err(err).
			Str("log_id", rec.ID).
			Int("http_status", rec.HTTPStatus).
			Str("status", string(rec.Status)).
			Msg("persist webhook log failed")
	}
	return rec
}

func (u *auditUC) Get(ctx context.Context, id string) (*model.WebhookLog, error) {
	if _, err := ulid.ParseStrict(id); err != nil {
		return nil, fmt.Errorf("webhook log id %q: %w", id, domain.ErrInvalidArgument)
	}
	return u.logs.FindByID(ctx, repository.NoTX, id)
}

func (u *auditUC) List(ctx context.Context, f repository.WebhookLogFilter) ([]*model.WebhookLog, error) {
	if f.Limit <= 0 {
		f.Limit = defaultAuditListLimit
	}
	if f.Limit > maxAuditListLimit {
		f.Limit = maxAuditListLimit
	}
	return u.logs.List(ctx, repository.NoTX, f)
}
