package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
)

func TestNewOutboxEvent(t *testing.T) {
	orderID := uuid.Must(uuid.NewV7())

	event, err := NewOutboxEvent(EventTypeOrderSettled, SettlementPayload{
		OrderID:  orderID,
		Provider: "chapa",
		EventKey: "evt-9",
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, EventTypeOrderSettled, event.EventType)
	assert.Equal(t, OutboxEventStatusPending, event.Status)
	assert.Zero(t, event.Retries)
	assert.JSONEq(t, `{"orderId":"`+orderID.String()+`","provider":"chapa","eventKey":"evt-9"}`, event.Payload)

	payload, err := event.DecodeSettlementPayload()
	require.NoError(t, err)
	assert.Equal(t, orderID, payload.OrderID)
	assert.Equal(t, "evt-9", payload.EventKey)
}

func TestNewOutboxEvent_Unencodable(t *testing.T) {
	_, err := NewOutboxEvent(EventTypeOrderSettled, map[string]any{"ch": make(chan int)})

	assert.Error(t, err)
}

func TestOutboxEvent_DecodeSettlementPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "InvalidJSON", payload: `not json`},
		{name: "MissingOrderID", payload: `{"provider":"cbe"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := &OutboxEvent{ID: uuid.Must(uuid.NewV7()), Payload: tt.payload}

			_, err := event.DecodeSettlementPayload()

			assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}

func TestOutboxEvent_RecordFailure(t *testing.T) {
	event := &OutboxEvent{Status: OutboxEventStatusPending}

	event.RecordFailure(errors.New("smtp down"), 2)
	assert.Equal(t, 1, event.Retries)
	assert.Equal(t, OutboxEventStatusPending, event.Status)
	require.NotNil(t, event.LastError)
	assert.Equal(t, "smtp down", *event.LastError)

	event.RecordFailure(errors.New("smtp still down"), 2)
	assert.Equal(t, 2, event.Retries)
	assert.Equal(t, OutboxEventStatusFailed, event.Status)
}

func TestOutboxEvent_MarkProcessed(t *testing.T) {
	event := &OutboxEvent{Status: OutboxEventStatusPending}
	now := time.Now().UTC()

	event.MarkProcessed(now)

	assert.Equal(t, OutboxEventStatusProcessed, event.Status)
	require.NotNil(t, event.ProcessedAt)
	assert.Equal(t, now, *event.ProcessedAt)
}
