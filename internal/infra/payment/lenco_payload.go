package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"wathaci-webhooks/internal/domain"
	"wathaci-webhooks/internal/domain/model"
	"wathaci-webhooks/internal/domain/ports/adapter"
)

var _ adapter.WebhookDecoder = (*LencoDecoder)(nil)

// lencoWebhook is the wire shape of a Lenco webhook body.
type lencoWebhook struct {
	Event     string     `json:"event" validate:"required"`
	Data      *lencoData `json:"data" validate:"required"`
	CreatedAt string     `json:"created_at"`
}

type lencoData struct {
	ID              json.RawMessage `json:"id"`
	Reference       string          `json:"reference" validate:"required"`
	Amount          json.RawMessage `json:"amount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	GatewayResponse string          `json:"gateway_response"`
	PaidAt          *string         `json:"paid_at"`
	Metadata        map[string]any  `json:"metadata"`
}

// LencoDecoder validates and normalises Lenco webhook bodies.
type LencoDecoder struct {
	validate *validator.Validate
}

func NewLencoDecoder() *LencoDecoder {
	return &LencoDecoder{validate: validator.New()}
}

func (d *LencoDecoder) Decode(body []byte) (*model.WebhookEvent, error) {
	var w lencoWebhook
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON object", domain.ErrMalformedPayload)
	}
	w.Event = strings.TrimSpace(w.Event)
	if w.Data != nil {
		w.Data.Reference = strings.TrimSpace(w.Data.Reference)
	}
	if err := d.validate.Struct(&w); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	amount, err := toMinorUnits(scalarString(w.Data.Amount))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	md := metadataFrom(w.Data.Metadata)
	ev := &model.WebhookEvent{
		EventType:       w.Event,
		Reference:       w.Data.Reference,
		GatewayID:       scalarString(w.Data.ID),
		AmountMinor:     amount,
		Currency:        strings.ToUpper(strings.TrimSpace(w.Data.Currency)),
		RawStatus:       w.Data.Status,
		Status:          model.NormalizeGatewayStatus(w.Data.Status),
		GatewayResponse: w.Data.GatewayResponse,
		Metadata:        md,
		Purpose:         model.PurposeOf(md),
	}
	if w.Data.PaidAt != nil {
		ev.PaidAt = parseTime(*w.Data.PaidAt)
	}
	ev.CreatedAt = parseTime(w.CreatedAt)
	return ev, nil
}

func metadataFrom(raw map[string]any) model.WebhookMetadata {
	md := model.WebhookMetadata{Extra: map[string]string{}}
	for k, v := range raw {
		s := anyString(v)
		switch k {
		case "user_id":
			md.UserID = s
		case "subscription_id":
			md.SubscriptionID = s
		case "service_id":
			md.ServiceID = s
		default:
			md.Extra[k] = s
		}
	}
	return md
}

func anyString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// scalarString unwraps a JSON string or number into its textual form.
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return string(raw)
}

// toMinorUnits converts a non-negative major-unit decimal ("150.00", "150", "1,250.5")
// into minor units. Fractions beyond two digits are truncated. An empty amount is 0;
// signs, exponents and any other non-digit input are errors.
func toMinorUnits(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("amount %q: no digits", s)
	}
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseUint(whole, 10, 63)
	if err != nil || w > math.MaxInt64/100 {
		return 0, fmt.Errorf("amount %q: invalid whole part", s)
	}
	for _, c := range frac {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("amount %q: invalid fraction", s)
		}
	}
	if len(frac) > 2 {
		frac = frac[:2]
	}
	for len(frac) < 2 {
		frac += "0"
	}
	f, _ := strconv.ParseUint(frac, 10, 8)
	return int64(w)*100 + int64(f), nil
}

func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z0700", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
