package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("WithKeyAndSignature", func(t *testing.T) {
		v := &Verification{Provider: "cbe", Method: AuthMethodProviderHMAC, Presented: "abc", Computed: "abc"}

		e := NewEvent("cbe", "evt-1", []byte(`{}`), v, "10.0.0.1", now)

		require.NotNil(t, e.EventID)
		assert.Equal(t, "evt-1", *e.EventID)
		assert.Equal(t, EventStatusReceived, e.Status)
		assert.Equal(t, AuthMethodProviderHMAC, e.AuthMethod)
		require.NotNil(t, e.Signature)
		assert.Equal(t, "abc", *e.Signature)
		assert.Equal(t, 1, e.Attempts)
		assert.Equal(t, 1, e.Deliveries)
		assert.Equal(t, now, e.CreatedAt)
		assert.Equal(t, byte(7), e.ID[6]>>4)
	})

	t.Run("AnonymousPlainSecret", func(t *testing.T) {
		v := &Verification{Method: AuthMethodPlainSecret, Computed: "def", Downgraded: true}

		e := NewEvent("generic", "", nil, v, "", now)

		assert.Nil(t, e.EventID)
		assert.Nil(t, e.Signature)
		require.NotNil(t, e.SignatureHash)
		assert.Equal(t, "def", *e.SignatureHash)
	})
}

func TestEvent_IsReclaimable(t *testing.T) {
	now := time.Now().UTC()
	stale := 5 * time.Minute

	tests := []struct {
		name     string
		status   EventStatus
		age      time.Duration
		expected bool
	}{
		{"error is always reclaimable", EventStatusError, 0, true},
		{"fresh received", EventStatusReceived, time.Minute, false},
		{"stale received", EventStatusReceived, 6 * time.Minute, true},
		{"fresh processing", EventStatusProcessing, time.Second, false},
		{"stale processing", EventStatusProcessing, 10 * time.Minute, true},
		{"processed never", EventStatusProcessed, time.Hour, false},
		{"failed never", EventStatusFailed, time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Event{Status: tt.status, UpdatedAt: now.Add(-tt.age)}
			assert.Equal(t, tt.expected, e.IsReclaimable(now, stale))
		})
	}
}

func TestClaimResult_Proceeds(t *testing.T) {
	assert.True(t, (&ClaimResult{Outcome: ClaimFirstSight}).Proceeds())
	assert.True(t, (&ClaimResult{Outcome: ClaimReclaimed}).Proceeds())
	assert.True(t, (&ClaimResult{Outcome: ClaimSuperseded}).Proceeds())
	assert.False(t, (&ClaimResult{Outcome: ClaimDuplicateProcessed}).Proceeds())
	assert.False(t, (&ClaimResult{Outcome: ClaimDuplicateFailed}).Proceeds())
	assert.False(t, (&ClaimResult{Outcome: ClaimInFlight}).Proceeds())
	assert.Equal(t, "in_flight", ClaimInFlight.String())
	assert.Equal(t, "superseded", ClaimSuperseded.String())
}

func TestSecretConfig_ProviderSecret(t *testing.T) {
	cfg := SecretConfig{Generic: "generic", Providers: map[string]string{"chapa": "chapa-secret"}}

	assert.Equal(t, "chapa-secret", cfg.ProviderSecret("Chapa"))
	assert.Equal(t, "generic", cfg.ProviderSecret("telebirr"))
}
