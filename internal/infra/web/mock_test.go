//go:build !integration

package web

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"wathaci-webhooks/internal/domain"
	"wathaci-webhooks/internal/domain/model"
	"wathaci-webhooks/internal/domain/ports/repository"
	"wathaci-webhooks/internal/usecase"
)

// ---- Mock AuditUseCase ----

type mockAudit struct {
	logs     map[string]*model.WebhookLog
	order    []string
	LastList repository.WebhookLogFilter
	ListErr  error
}

var _ usecase.AuditUseCase = (*mockAudit)(nil)

func newMockAudit(seed ...*model.WebhookLog) *mockAudit {
	m := &mockAudit{logs: map[string]*model.WebhookLog{}}
	for _, l := range seed {
		m.logs[l.ID] = l
		m.order = append(m.order, l.ID)
	}
	return m
}

func (m *mockAudit) Log(context.Context, usecase.AuditEntry) *model.WebhookLog { return nil }

func (m *mockAudit) Get(_ context.Context, id string) (*model.WebhookLog, error) {
	if id == "bad-id" {
		return nil, domain.ErrInvalidArgument
	}
	if l, ok := m.logs[id]; ok {
		return l, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockAudit) List(_ context.Context, f repository.WebhookLogFilter) ([]*model.WebhookLog, error) {
	m.LastList = f
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := []*model.WebhookLog{}
	for _, id := range m.order {
		if f.Status != "" && m.logs[id].Status != f.Status {
			continue
		}
		out = append(out, m.logs[id])
	}
	return out, nil
}

// ---- Mock WebhookUseCase ----

type mockWebhooks struct {
	ReplayFunc func(ctx context.Context, id string) (usecase.WebhookResult, error)
	Replayed   []string
}

var _ usecase.WebhookUseCase = (*mockWebhooks)(nil)

func (m *mockWebhooks) Handle(context.Context, usecase.InboundWebhook) usecase.WebhookResult {
	return usecase.WebhookResult{}
}

func (m *mockWebhooks) Replay(ctx context.Context, id string) (usecase.WebhookResult, error) {
	m.Replayed = append(m.Replayed, id)
	if m.ReplayFunc != nil {
		return m.ReplayFunc(ctx, id)
	}
	return usecase.WebhookResult{}, domain.ErrNotFound
}

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}
