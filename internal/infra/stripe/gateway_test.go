package stripe

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v75/webhook"

	"gallery-api/internal/domain/catalog"
)

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		price string
		want  int64
	}{
		{"100", 10000},
		{"99.99", 9999},
		{"0.5", 50},
		{"12.345", 1235},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MinorUnits(decimal.RequireFromString(tt.price)), tt.price)
	}
}

func TestNextArtworkStatus(t *testing.T) {
	to, from, ok := NextArtworkStatus(EventCheckoutCompleted)
	require.True(t, ok)
	assert.Equal(t, catalog.StatusSold, to)
	assert.Contains(t, from, catalog.StatusReserved)

	to, from, ok = NextArtworkStatus(EventCheckoutExpired)
	require.True(t, ok)
	assert.Equal(t, catalog.StatusAvailable, to)
	assert.Equal(t, []catalog.ArtworkStatus{catalog.StatusReserved}, from)

	_, _, ok = NextArtworkStatus("invoice.paid")
	assert.False(t, ok)
}

func signedPayload(t *testing.T, secret, eventType string) ([]byte, string) {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":          "evt_1",
		"object":      "event",
		"type":        eventType,
		"api_version": "2023-08-16",
		"data": map[string]any{
			"object": map[string]any{
				"id":       "cs_test_1",
				"object":   "checkout.session",
				"metadata": map[string]string{"artwork_id": "art-1"},
			},
		},
	})
	require.NoError(t, err)

	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, secret)
	return payload, fmt.Sprintf("t=%d,v1=%x", now.Unix(), sig)
}

func TestParseWebhook(t *testing.T) {
	c := NewClient("sk_test_x", "whsec_test", "EUR")

	payload, header := signedPayload(t, "whsec_test", EventCheckoutCompleted)
	ev, err := c.ParseWebhook(payload, header)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, EventCheckoutCompleted, ev.Type)
	assert.Equal(t, "cs_test_1", ev.SessionID)
	assert.Equal(t, "art-1", ev.ArtworkID)
}

func TestParseWebhookIgnoredType(t *testing.T) {
	c := NewClient("sk_test_x", "whsec_test", "eur")

	payload, header := signedPayload(t, "whsec_test", "customer.created")
	ev, err := c.ParseWebhook(payload, header)
	require.NoError(t, err)
	assert.Empty(t, ev.ArtworkID)
}

func TestParseWebhookBadSignature(t *testing.T) {
	c := NewClient("sk_test_x", "whsec_test", "eur")

	payload, header := signedPayload(t, "whsec_other", EventCheckoutCompleted)
	_, err := c.ParseWebhook(payload, header)
	assert.ErrorIs(t, err, ErrBadSignature)
}
