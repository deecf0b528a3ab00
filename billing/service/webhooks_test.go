package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/pennihq/console-api/billing/dal"
	dalMocks "github.com/pennihq/console-api/billing/dal/mocks"
	"github.com/pennihq/console-api/billing/domain"
)

const testSignKey = "whsec_test_secret"

func newTestWebhookService(billingDAL *dalMocks.IBillingFirestore, notifier *testNotifier) *BillingWebhookService {
	return &BillingWebhookService{
		loggerProvider: testLoggerProvider,
		stripeClient:   &Client{webhookSignKey: testSignKey},
		billingDAL:     billingDAL,
		reconciler:     NewSubscriptionReconciler(testLoggerProvider, billingDAL, notifier, testPriceTable()),
		notifier:       notifier,
		prices:         testPriceTable(),
		subscriptions:  &stubSubscriptionAPI{},
	}
}

func signTestPayload(t *testing.T, payload []byte) string {
	t.Helper()

	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, testSignKey)

	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
}

func TestHandleEventRejectsBadSignature(t *testing.T) {
	s := newTestWebhookService(&dalMocks.IBillingFirestore{}, &testNotifier{})

	_, err := s.HandleEvent(context.Background(), []byte(`{}`), "t=1,v1=bogus", "")

	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestHandleEventDuplicateShortCircuits(t *testing.T) {
	billingDAL := &dalMocks.IBillingFirestore{}
	s := newTestWebhookService(billingDAL, &testNotifier{})

	body := []byte(`{"id":"evt_dup","type":"customer.subscription.updated","data":{"object":{"id":"sub_1"}}}`)

	billingDAL.
		On("ReserveEvent", mock.Anything, "evt_dup", "customer.subscription.updated").
		Return(false, nil)

	outcome, err := s.HandleEvent(context.Background(), body, signTestPayload(t, body), "")
	require.NoError(t, err)

	assert.Equal(t, domain.EventStatusDuplicate, outcome.Status)
	billingDAL.AssertNotCalled(t, "FinalizeEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	billingDAL.AssertNotCalled(t, "RecordSubscription", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleEventUnhandledTypeIsIgnored(t *testing.T) {
	billingDAL := &dalMocks.IBillingFirestore{}
	s := newTestWebhookService(billingDAL, &testNotifier{})

	body := []byte(`{"id":"evt_1","type":"customer.updated","data":{"object":{"id":"cus_1"}}}`)

	billingDAL.
		On("ReserveEvent", mock.Anything, "evt_1", "customer.updated").
		Return(true, nil)
	billingDAL.
		On("FinalizeEvent", mock.Anything, "evt_1", domain.EventStatusIgnored, "unhandled event type").
		Return(nil)

	outcome, err := s.HandleEvent(context.Background(), body, signTestPayload(t, body), "")
	require.NoError(t, err)

	assert.Equal(t, domain.EventStatusIgnored, outcome.Status)
	billingDAL.AssertExpectations(t)
}

func TestProcessEventCheckoutSessionCompleted(t *testing.T) {
	ctx := context.Background()

	t.Run("subscription checkout closes the session record and reconciles", func(t *testing.T) {
		billingDAL := &dalMocks.IBillingFirestore{}
		notifier := &testNotifier{}
		s := newTestWebhookService(billingDAL, notifier)

		subStub := &stubSubscriptionAPI{sub: newTestSubscription()}
		s.subscriptions = subStub

		parsed := domain.ParsedEvent{
			ID:   "evt_cs",
			Type: "checkout.session.completed",
			CheckoutSession: &stripe.CheckoutSession{
				ID:       "cs_1",
				Mode:     stripe.CheckoutSessionModeSubscription,
				Customer: &stripe.Customer{ID: "cus_1"},
				Metadata: map[string]string{"firebase_uid": "user-1", "plan": "growth"},
				Subscription: &stripe.Subscription{
					ID: "sub_1",
				},
			},
		}

		billingDAL.On("SaveStripeCustomerID", mock.Anything, "user-1", "cus_1").Return(nil)
		billingDAL.On("CompleteCheckoutSession", mock.Anything, "cs_1", "sub_1", "").Return(nil)
		billingDAL.
			On("RecordSubscription", mock.Anything, "user-1", mock.MatchedBy(func(snap *domain.SubscriptionSnapshot) bool {
				return snap.ID == "sub_1" && snap.PlanKey == domain.PlanGrowth
			}), mock.AnythingOfType("domain.FeatureCapabilities")).
			Return(true, nil)

		outcome, err := s.processEvent(ctx, parsed)
		require.NoError(t, err)

		assert.Equal(t, domain.EventStatusHandled, outcome.Status)
		assert.Equal(t, []string{"sub_1"}, subStub.getCalls)

		require.Len(t, notifier.updates, 1)
		assert.Equal(t, domain.PlanGrowth, notifier.updates[0].plan)

		billingDAL.AssertExpectations(t)
	})

	t.Run("payment checkout fulfills the addon", func(t *testing.T) {
		billingDAL := &dalMocks.IBillingFirestore{}
		notifier := &testNotifier{}
		s := newTestWebhookService(billingDAL, notifier)

		parsed := domain.ParsedEvent{
			ID:   "evt_cs",
			Type: "checkout.session.completed",
			CheckoutSession: &stripe.CheckoutSession{
				ID:       "cs_2",
				Mode:     stripe.CheckoutSessionModePayment,
				Customer: &stripe.Customer{ID: "cus_1"},
				Metadata: map[string]string{"firebase_uid": "user-1", "plan": "event"},
				PaymentIntent: &stripe.PaymentIntent{
					ID: "pi_1",
				},
			},
		}

		billingDAL.On("SaveStripeCustomerID", mock.Anything, "user-1", "cus_1").Return(nil)
		billingDAL.On("CompleteCheckoutSession", mock.Anything, "cs_2", "", "pi_1").Return(nil)
		billingDAL.On("FulfillAddon", mock.Anything, "user-1", "pi_1", "eventAccess").Return(dal.ErrAddonRecordMissing).Once()
		billingDAL.
			On("RecordAddonPurchase", mock.Anything, "user-1", mock.MatchedBy(func(record *domain.AddonRecord) bool {
				return record.AddonID == "eventAccess" &&
					record.PaymentIntentID == "pi_1" &&
					record.PriceID == "price_event" &&
					record.ProductID == "prod_event"
			})).
			Return(nil)
		billingDAL.On("FulfillAddon", mock.Anything, "user-1", "pi_1", "eventAccess").Return(nil).Once()

		outcome, err := s.processEvent(ctx, parsed)
		require.NoError(t, err)

		assert.Equal(t, domain.EventStatusHandled, outcome.Status)
		require.Len(t, notifier.updates, 1)
		assert.Equal(t, domain.PlanEvent, notifier.updates[0].plan)

		billingDAL.AssertExpectations(t)
	})

	t.Run("unresolvable user is ignored", func(t *testing.T) {
		billingDAL := &dalMocks.IBillingFirestore{}
		s := newTestWebhookService(billingDAL, &testNotifier{})

		parsed := domain.ParsedEvent{
			ID:   "evt_cs",
			Type: "checkout.session.completed",
			CheckoutSession: &stripe.CheckoutSession{
				ID:       "cs_3",
				Mode:     stripe.CheckoutSessionModeSubscription,
				Customer: &stripe.Customer{ID: "cus_unknown"},
			},
		}

		billingDAL.
			On("GetUIDByStripeCustomer", mock.Anything, "cus_unknown").
			Return("", domain.ErrCustomerNotMapped)

		outcome, err := s.processEvent(ctx, parsed)
		require.NoError(t, err)

		assert.Equal(t, domain.EventStatusIgnored, outcome.Status)
		billingDAL.AssertNotCalled(t, "CompleteCheckoutSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestProcessEventTrialWillEnd(t *testing.T) {
	billingDAL := &dalMocks.IBillingFirestore{}
	s := newTestWebhookService(billingDAL, &testNotifier{})

	parsed := domain.ParsedEvent{
		ID:   "evt_trial",
		Type: "customer.subscription.trial_will_end",
		Subscription: &stripe.Subscription{
			ID:       "sub_1",
			Customer: &stripe.Customer{ID: "cus_1"},
			Metadata: map[string]string{"firebase_uid": "user-1"},
		},
	}

	billingDAL.On("SetTrialWillEnd", mock.Anything, "user-1", "sub_1").Return(nil)

	outcome, err := s.processEvent(context.Background(), parsed)
	require.NoError(t, err)

	assert.Equal(t, domain.EventStatusHandled, outcome.Status)
	billingDAL.AssertExpectations(t)
}

func TestProcessEventInvoicePaid(t *testing.T) {
	billingDAL := &dalMocks.IBillingFirestore{}
	s := newTestWebhookService(billingDAL, &testNotifier{})

	parsed := domain.ParsedEvent{
		ID:   "evt_inv",
		Type: "invoice.paid",
		Invoice: &stripe.Invoice{
			ID:         "in_1",
			Status:     stripe.InvoiceStatusPaid,
			AmountDue:  4900,
			AmountPaid: 4900,
			Currency:   stripe.CurrencyUSD,
			Customer:   &stripe.Customer{ID: "cus_1"},
			Subscription: &stripe.Subscription{
				ID: "sub_1",
			},
		},
	}

	billingDAL.On("GetUIDByStripeCustomer", mock.Anything, "cus_1").Return("user-1", nil)
	billingDAL.
		On("RecordInvoice", mock.Anything, "user-1", mock.MatchedBy(func(record *domain.InvoiceRecord) bool {
			return record.ID == "in_1" && record.SubscriptionID == "sub_1" && record.AmountPaid == 4900
		})).
		Return(nil)

	outcome, err := s.processEvent(context.Background(), parsed)
	require.NoError(t, err)

	assert.Equal(t, domain.EventStatusHandled, outcome.Status)
	billingDAL.AssertExpectations(t)
}

func TestProcessEventInvoicePaymentFailed(t *testing.T) {
	billingDAL := &dalMocks.IBillingFirestore{}
	s := newTestWebhookService(billingDAL, &testNotifier{})

	parsed := domain.ParsedEvent{
		ID:   "evt_inv_fail",
		Type: "invoice.payment_failed",
		Invoice: &stripe.Invoice{
			ID:        "in_2",
			Status:    stripe.InvoiceStatusOpen,
			AmountDue: 4900,
			Currency:  stripe.CurrencyUSD,
			Customer:  &stripe.Customer{ID: "cus_1"},
			Subscription: &stripe.Subscription{
				ID: "sub_1",
			},
		},
	}

	billingDAL.On("GetUIDByStripeCustomer", mock.Anything, "cus_1").Return("user-1", nil)
	billingDAL.On("RecordInvoice", mock.Anything, "user-1", mock.AnythingOfType("*domain.InvoiceRecord")).Return(nil)
	billingDAL.On("MarkSubscriptionPastDue", mock.Anything, "user-1", "sub_1").Return(nil)

	outcome, err := s.processEvent(context.Background(), parsed)
	require.NoError(t, err)

	assert.Equal(t, domain.EventStatusHandled, outcome.Status)
	billingDAL.AssertExpectations(t)
}

func TestProcessEventPaymentIntent(t *testing.T) {
	ctx := context.Background()

	t.Run("intent without addon metadata is ignored", func(t *testing.T) {
		billingDAL := &dalMocks.IBillingFirestore{}
		s := newTestWebhookService(billingDAL, &testNotifier{})

		parsed := domain.ParsedEvent{
			ID:   "evt_pi",
			Type: "payment_intent.succeeded",
			PaymentIntent: &stripe.PaymentIntent{
				ID: "pi_1",
			},
		}

		outcome, err := s.processEvent(ctx, parsed)
		require.NoError(t, err)

		assert.Equal(t, domain.EventStatusIgnored, outcome.Status)
	})

	t.Run("intent with addon metadata fulfills it", func(t *testing.T) {
		billingDAL := &dalMocks.IBillingFirestore{}
		notifier := &testNotifier{}
		s := newTestWebhookService(billingDAL, notifier)

		parsed := domain.ParsedEvent{
			ID:   "evt_pi",
			Type: "payment_intent.succeeded",
			PaymentIntent: &stripe.PaymentIntent{
				ID:       "pi_2",
				Customer: &stripe.Customer{ID: "cus_1"},
				Metadata: map[string]string{"addon": "eventAccess", "firebase_uid": "user-1"},
			},
		}

		billingDAL.On("FulfillAddon", mock.Anything, "user-1", "pi_2", "eventAccess").Return(nil)

		outcome, err := s.processEvent(ctx, parsed)
		require.NoError(t, err)

		assert.Equal(t, domain.EventStatusHandled, outcome.Status)
		require.Len(t, notifier.updates, 1)
		billingDAL.AssertExpectations(t)
	})

	t.Run("failed intent is logged and ignored", func(t *testing.T) {
		billingDAL := &dalMocks.IBillingFirestore{}
		s := newTestWebhookService(billingDAL, &testNotifier{})

		parsed := domain.ParsedEvent{
			ID:   "evt_pi",
			Type: "payment_intent.payment_failed",
			PaymentIntent: &stripe.PaymentIntent{
				ID: "pi_3",
			},
		}

		outcome, err := s.processEvent(ctx, parsed)
		require.NoError(t, err)

		assert.Equal(t, domain.EventStatusIgnored, outcome.Status)
	})
}
