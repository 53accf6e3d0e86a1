package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"wathaci-webhooks/internal/domain/model"
	"wathaci-webhooks/internal/domain/ports/adapter"
	"wathaci-webhooks/internal/domain/ports/repository"
	"wathaci-webhooks/internal/infra/logging"
	"wathaci-webhooks/internal/infra/metrics"
)

// Compile-time check
var _ NotificationUseCase = (*notificationUC)(nil)

type NotificationUseCase interface {
	// Notify stores a payment notification for the paying user and pushes it in real time.
	// It is a no-op without metadata.user_id. Push failures are logged, never returned.
	Notify(ctx context.Context, ev *model.WebhookEvent) error
}

type notificationTemplate struct {
	title   string
	message string // %[1]s amount, %[2]s reference
}

var paymentTemplates = map[string]notificationTemplate{
	model.EventPaymentSuccess: {
		title:   "Payment Successful",
		message: "Your payment of %[1]s was successful. Reference: %[2]s",
	},
	model.EventPaymentFailed: {
		title:   "Payment Failed",
		message: "Your payment of %[1]s could not be completed. Reference: %[2]s",
	},
	model.EventPaymentPending: {
		title:   "Payment Pending",
		message: "Your payment of %[1]s is being processed. Reference: %[2]s",
	},
	model.EventPaymentCancelled: {
		title:   "Payment Cancelled",
		message: "Your payment of %[1]s was cancelled. Reference: %[2]s",
	},
}

var fallbackTemplate = notificationTemplate{
	title:   "Payment Update",
	message: "There is an update on your payment of %[1]s. Reference: %[2]s",
}

// MoneyFormat renders minor-unit amounts for humans.
type MoneyFormat struct {
	LocalCurrency string // e.g. ZMW
	LocalSymbol   string // e.g. K
}

// Format prefixes the local symbol for the local currency and appends the ISO code
// otherwise: 15000 ZMW -> "K150.00", 15000 USD -> "150.00 USD".
func (f MoneyFormat) Format(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	num := fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" || currency == strings.ToUpper(f.LocalCurrency) {
		return f.LocalSymbol + num
	}
	return num + " " + currency
}

type notificationUC struct {
	notes repository.NotificationRepository
	push  adapter.RealtimePublisher
	money MoneyFormat
	log   *zerolog.Logger
}

func NewNotificationUseCase(notes repository.NotificationRepository, push adapter.RealtimePublisher, money MoneyFormat, logger *zerolog.Logger) *notificationUC {
	return &notificationUC{notes: notes, push: push, money: money, log: logger}
}

// BuildPaymentNotification renders the title/message pair for an event.
func (n *notificationUC) BuildPaymentNotification(ev *model.WebhookEvent) (*model.Notification, error) {
	tpl, ok := paymentTemplates[ev.EventType]
	if !ok {
		tpl = fallbackTemplate
	}
	msg := fmt.Sprintf(tpl.message, n.money.Format(ev.AmountMinor, ev.Currency), ev.Reference)
	return model.NewPaymentNotification(ev.Metadata.UserID, tpl.title, msg, ev.Reference)
}

// Notify never panics: a panic in the store or push becomes an error.
func (n *notificationUC) Notify(ctx context.Context, ev *model.WebhookEvent) (err error) {
	defer logging.TraceDuration(n.log, "NotificationUC.Notify")()
	defer func() {
		if rec := recover(); rec != nil {
			metrics.IncNotification("store", "error")
			err = fmt.Errorf("notification panicked: %v", rec)
			logging.With(ctx, n.log).Error().Err(err).Msg("notify failed")
		}
	}()
	return n.notify(ctx, ev)
}

func (n *notificationUC) notify(ctx context.Context, ev *model.WebhookEvent) error {
	if ev.Metadata.UserID == "" {
		metrics.IncNotification("store", "skipped")
		return nil
	}
	ctx = logging.WithUserID(ctx, ev.Metadata.UserID)
	l := logging.With(ctx, n.log)

	note, err := n.BuildPaymentNotification(ev)
	if err != nil {
		return err
	}
	if err := n.notes.Save(ctx, repository.NoTX, note); err != nil {
		metrics.IncNotification("store", "error")
		l.Error().Err(err).Msg("store notification failed")
		return fmt.Errorf("store notification: %w", err)
	}
	metrics.IncNotification("store", "ok")

	if n.push == nil {
		return nil
	}
	if err := n.push.Publish(ctx, adapter.UserChannel(note.UserID), adapter.RealtimeEventPaymentUpdate, note); err != nil {
		metrics.IncNotification("push", "error")
		l.Warn().Err(err).Msg("realtime push failed")
		return nil
	}
	metrics.IncNotification("push", "ok")
	return nil
}
