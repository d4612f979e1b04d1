package dto

import (
	"time"

	"github.com/getachewzemene/minalesh-amplify-sub001/internal/httputil"
	orderDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/order/domain"
	webhookDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/domain"
	webhookUsecase "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/usecase"
)

// OrderResponse is the order view returned to payment providers.
type OrderResponse struct {
	ID            string     `json:"id"`
	OrderNumber   string     `json:"orderNumber"`
	PaymentStatus string     `json:"paymentStatus"`
	Status        string     `json:"status"`
	TotalAmount   string     `json:"totalAmount"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// SettleResponse is the body of every 200 answer of POST /payments/webhook.
type SettleResponse struct {
	OK      bool           `json:"ok"`
	Outcome string         `json:"outcome"`
	Message string         `json:"message,omitempty"`
	Order   *OrderResponse `json:"order,omitempty"`
}

// MapSettleResultToResponse converts a settlement result to its response body.
func MapSettleResultToResponse(result *webhookUsecase.SettleResult) SettleResponse {
	resp := SettleResponse{
		OK:      true,
		Outcome: string(result.Outcome),
		Message: result.Message,
	}
	if result.Order != nil {
		order := MapOrderToResponse(result.Order)
		resp.Order = &order
	}
	return resp
}

// MapOrderToResponse converts a domain order to its response view.
func MapOrderToResponse(order *orderDomain.Order) OrderResponse {
	return OrderResponse{
		ID:            order.ID.String(),
		OrderNumber:   order.OrderNumber,
		PaymentStatus: string(order.PaymentStatus),
		Status:        order.Status,
		TotalAmount:   order.TotalAmount.StringFixed(2),
		PaidAt:        order.PaidAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

// EventResponse is a webhook ledger row in admin responses. The raw payload and
// presented signature are omitted.
type EventResponse struct {
	ID             string     `json:"id"`
	Provider       string     `json:"provider"`
	EventID        *string    `json:"event_id"`
	Status         string     `json:"status"`
	AuthMethod     string     `json:"auth_method"`
	SignatureHash  *string    `json:"signature_hash,omitempty"`
	SourceIP       string     `json:"source_ip"`
	OrderID        *string    `json:"order_id,omitempty"`
	LatencyMs      *int64     `json:"latency_ms,omitempty"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
	Attempts       int        `json:"attempts"`
	Deliveries     int        `json:"deliveries"`
	Archived       bool       `json:"archived"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
	LastDeliveryAt time.Time  `json:"last_delivery_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ListEventsResponse is a page of ledger rows. NextOffset is absent on the last page.
type ListEventsResponse struct {
	Data       []EventResponse `json:"data"`
	Offset     int             `json:"offset"`
	Limit      int             `json:"limit"`
	NextOffset *int            `json:"next_offset,omitempty"`
}

// MapEventToResponse converts a ledger row to its admin view.
func MapEventToResponse(event *webhookDomain.Event) EventResponse {
	resp := EventResponse{
		ID:             event.ID.String(),
		Provider:       event.Provider,
		EventID:        event.EventID,
		Status:         string(event.Status),
		AuthMethod:     string(event.AuthMethod),
		SignatureHash:  event.SignatureHash,
		SourceIP:       event.SourceIP,
		LatencyMs:      event.LatencyMs,
		ErrorMessage:   event.ErrorMessage,
		Attempts:       event.Attempts,
		Deliveries:     event.Deliveries,
		Archived:       event.Archived,
		ProcessedAt:    event.ProcessedAt,
		LastDeliveryAt: event.LastDeliveryAt,
		CreatedAt:      event.CreatedAt,
		UpdatedAt:      event.UpdatedAt,
	}
	if event.OrderID != nil {
		orderID := event.OrderID.String()
		resp.OrderID = &orderID
	}
	return resp
}

// MapEventsToListResponse converts ledger rows to a list response.
func MapEventsToListResponse(events []*webhookDomain.Event, page httputil.Page) ListEventsResponse {
	data := make([]EventResponse, 0, len(events))
	for _, event := range events {
		data = append(data, MapEventToResponse(event))
	}
	return ListEventsResponse{
		Data:       data,
		Offset:     page.Offset,
		Limit:      page.Limit,
		NextOffset: page.Next(len(events)),
	}
}
