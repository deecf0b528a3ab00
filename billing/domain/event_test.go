package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
)

func newTestEvent(t *testing.T, eventType string, payload string) stripe.Event {
	t.Helper()

	return stripe.Event{
		ID:   "evt_test_1",
		Type: eventType,
		Data: &stripe.EventData{
			Raw: json.RawMessage(payload),
		},
	}
}

func TestParseEvent(t *testing.T) {
	t.Run("subscription event decodes the subscription", func(t *testing.T) {
		event := newTestEvent(t, "customer.subscription.updated", `{"id":"sub_123","status":"active"}`)

		parsed, err := ParseEvent(event)
		require.NoError(t, err)

		require.NotNil(t, parsed.Subscription)
		assert.Equal(t, "sub_123", parsed.Subscription.ID)
		assert.Nil(t, parsed.CheckoutSession)
		assert.Nil(t, parsed.Invoice)
	})

	t.Run("checkout session event decodes the session", func(t *testing.T) {
		event := newTestEvent(t, "checkout.session.completed", `{"id":"cs_123","mode":"subscription"}`)

		parsed, err := ParseEvent(event)
		require.NoError(t, err)

		require.NotNil(t, parsed.CheckoutSession)
		assert.Equal(t, "cs_123", parsed.CheckoutSession.ID)
	})

	t.Run("invoice event decodes the invoice", func(t *testing.T) {
		event := newTestEvent(t, "invoice.paid", `{"id":"in_123","amount_due":4900}`)

		parsed, err := ParseEvent(event)
		require.NoError(t, err)

		require.NotNil(t, parsed.Invoice)
		assert.Equal(t, "in_123", parsed.Invoice.ID)
		assert.Equal(t, int64(4900), parsed.Invoice.AmountDue)
	})

	t.Run("payment intent event decodes the intent", func(t *testing.T) {
		event := newTestEvent(t, "payment_intent.succeeded", `{"id":"pi_123"}`)

		parsed, err := ParseEvent(event)
		require.NoError(t, err)

		require.NotNil(t, parsed.PaymentIntent)
		assert.Equal(t, "pi_123", parsed.PaymentIntent.ID)
	})

	t.Run("unknown event type keeps the raw payload only", func(t *testing.T) {
		event := newTestEvent(t, "customer.updated", `{"id":"cus_123"}`)

		parsed, err := ParseEvent(event)
		require.NoError(t, err)

		assert.Nil(t, parsed.Subscription)
		assert.Nil(t, parsed.CheckoutSession)
		assert.Nil(t, parsed.Invoice)
		assert.Nil(t, parsed.PaymentIntent)
		assert.JSONEq(t, `{"id":"cus_123"}`, string(parsed.Raw))
	})

	t.Run("malformed payload returns an error", func(t *testing.T) {
		event := newTestEvent(t, "customer.subscription.updated", `{"id":`)

		_, err := ParseEvent(event)
		assert.Error(t, err)
	})
}
