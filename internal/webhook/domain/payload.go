package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	validation "github.com/jellydator/validation"
	"github.com/shopspring/decimal"

	"github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
	orderDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/order/domain"
	customValidation "github.com/getachewzemene/minalesh-amplify-sub001/internal/validation"
)

// Payload is the provider-neutral payment notification body.
type Payload struct {
	Provider         string                    `json:"provider"`
	Status           orderDomain.PaymentStatus `json:"status"`
	OrderID          string                    `json:"orderId,omitempty"`
	OrderNumber      string                    `json:"orderNumber,omitempty"`
	PaymentReference string                    `json:"paymentReference,omitempty"`
	Amount           *decimal.Decimal          `json:"amount,omitempty"`
	EventID          string                    `json:"eventId,omitempty"`
	Meta             map[string]any            `json:"meta,omitempty"`
}

// ParsePayload decodes a raw body and normalizes provider and status to lower case.
func ParsePayload(body []byte) (*Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, errors.Wrap(ErrInvalidPayload, err.Error())
	}

	p.Provider = strings.ToLower(strings.TrimSpace(p.Provider))
	p.Status = orderDomain.PaymentStatus(strings.ToLower(strings.TrimSpace(string(p.Status))))
	p.OrderID = strings.TrimSpace(p.OrderID)
	p.OrderNumber = strings.TrimSpace(p.OrderNumber)
	p.PaymentReference = strings.TrimSpace(p.PaymentReference)
	p.EventID = strings.TrimSpace(p.EventID)
	return &p, nil
}

// Validate checks the payload carries a provider, a known status and at least one order locator.
func (p *Payload) Validate() error {
	noLocator := p.OrderID == "" && p.OrderNumber == "" && p.PaymentReference == ""
	// A malformed orderId next to another locator is ignored during resolution.
	onlyOrderID := p.OrderNumber == "" && p.PaymentReference == ""

	err := validation.ValidateStruct(p,
		validation.Field(&p.Provider, validation.Required, customValidation.NotBlank, validation.Length(1, 64)),
		validation.Field(&p.Status, validation.Required, validation.In(
			orderDomain.PaymentStatusCompleted,
			orderDomain.PaymentStatusFailed,
			orderDomain.PaymentStatusPending,
		)),
		validation.Field(&p.OrderID,
			validation.Required.When(noLocator).Error("one of orderId, orderNumber or paymentReference is required"),
			validation.When(onlyOrderID, customValidation.UUIDString),
		),
		validation.Field(&p.Amount, customValidation.NonNegativeDecimal),
	)
	return customValidation.WrapValidationError(err)
}

// ExtractEventID derives the idempotency key of a payload: meta.eventId, then eventId,
// then paymentReference. An empty result means the delivery cannot be deduplicated.
func ExtractEventID(p *Payload) string {
	if p == nil {
		return ""
	}
	if id := stringValue(p.Meta["eventId"]); id != "" {
		return id
	}
	if p.EventID != "" {
		return p.EventID
	}
	return p.PaymentReference
}

// DeclaredStatus returns the payment status carried by the payload stored on a ledger row,
// or an empty status when the stored body cannot be parsed.
func DeclaredStatus(e *Event) orderDomain.PaymentStatus {
	if e == nil || len(e.Payload) == 0 {
		return ""
	}
	p, err := ParsePayload(e.Payload)
	if err != nil {
		return ""
	}
	return p.Status
}

// PeekProvider reads the lower-cased provider from a raw body without validating the rest.
// It returns an empty string when the body is not JSON or has no provider.
func PeekProvider(body []byte) string {
	var head struct {
		Provider string `json:"provider"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(head.Provider))
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}
