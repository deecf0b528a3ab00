package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v74"

	"github.com/pennihq/console-api/billing/consts"
)

// EventStatus is the terminal (or in-flight) state of a ledger entry.
type EventStatus string

const (
	EventStatusProcessing EventStatus = "processing"
	EventStatusHandled    EventStatus = "handled"
	EventStatusIgnored    EventStatus = "ignored"
	EventStatusErrored    EventStatus = "errored"
	EventStatusDuplicate  EventStatus = "duplicate"
)

// WebhookEventLogRecord is one idempotency-ledger entry, keyed by the
// provider event id.
type WebhookEventLogRecord struct {
	EventID     string      `firestore:"eventId" json:"eventId"`
	EventType   string      `firestore:"eventType" json:"eventType"`
	Status      EventStatus `firestore:"status" json:"status"`
	Notes       string      `firestore:"notes,omitempty" json:"notes,omitempty"`
	ReceivedAt  time.Time   `firestore:"receivedAt" json:"receivedAt"`
	ProcessedAt time.Time   `firestore:"processedAt,omitempty" json:"processedAt,omitempty"`
}

// EventOutcome is what a single event handler reports back to the
// dispatcher for ledger finalization.
type EventOutcome struct {
	Status EventStatus
	Notes  string
}

func Handled(notes string) EventOutcome {
	return EventOutcome{Status: EventStatusHandled, Notes: notes}
}

func Ignored(notes string) EventOutcome {
	return EventOutcome{Status: EventStatusIgnored, Notes: notes}
}

func Duplicate(notes string) EventOutcome {
	return EventOutcome{Status: EventStatusDuplicate, Notes: notes}
}

// ParsedEvent is the decoded form of a provider event. Exactly one of
// the payload fields is set, matched by Type; unhandled types carry the
// raw payload only.
type ParsedEvent struct {
	ID      string
	Type    string
	Created int64

	CheckoutSession *stripe.CheckoutSession
	Subscription    *stripe.Subscription
	Invoice         *stripe.Invoice
	PaymentIntent   *stripe.PaymentIntent
	Raw             json.RawMessage
}

// ParseEvent decodes the payload object of a verified provider event
// into the variant the dispatcher routes on. Unknown event types decode
// to a raw-only variant rather than an error.
func ParseEvent(event stripe.Event) (ParsedEvent, error) {
	parsed := ParsedEvent{
		ID:      event.ID,
		Type:    event.Type,
		Created: event.Created,
		Raw:     json.RawMessage(event.Data.Raw),
	}

	switch event.Type {
	case consts.EventCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return parsed, fmt.Errorf("parsing %s payload of event %s: %w", event.Type, event.ID, err)
		}

		parsed.CheckoutSession = &session
	case consts.EventSubscriptionCreated, consts.EventSubscriptionUpdated, consts.EventSubscriptionDeleted, consts.EventSubscriptionTrialWillEnd:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return parsed, fmt.Errorf("parsing %s payload of event %s: %w", event.Type, event.ID, err)
		}

		parsed.Subscription = &sub
	case consts.EventInvoicePaid, consts.EventInvoicePaymentFailed:
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return parsed, fmt.Errorf("parsing %s payload of event %s: %w", event.Type, event.ID, err)
		}

		parsed.Invoice = &invoice
	case consts.EventPaymentIntentSucceeded, consts.EventPaymentIntentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return parsed, fmt.Errorf("parsing %s payload of event %s: %w", event.Type, event.ID, err)
		}

		parsed.PaymentIntent = &intent
	}

	return parsed, nil
}
