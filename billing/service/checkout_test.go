package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"

	dalMocks "github.com/pennihq/console-api/billing/dal/mocks"
	"github.com/pennihq/console-api/billing/domain"
)

func newTestBillingService(billingDAL *dalMocks.IBillingFirestore, notifier *testNotifier) *BillingService {
	return &BillingService{
		loggerProvider:   testLoggerProvider,
		billingDAL:       billingDAL,
		notifier:         notifier,
		prices:           testPriceTable(),
		subscriptions:    &stubSubscriptionAPI{},
		checkoutSessions: &stubCheckoutSessionAPI{},
		customers:        &stubCustomerAPI{},
		invoices:         &stubInvoiceAPI{},
	}
}

func growthSubscriberState() *domain.UserBillingState {
	return &domain.UserBillingState{
		StripeCustomerID: "cus_1",
		CurrentPlan: domain.CurrentPlan{
			PlanKey:        domain.PlanGrowth,
			SubscriptionID: "sub_1",
			PriceID:        "price_growth",
			Status:         "active",
		},
	}
}

func TestBillingIdempotencyKey(t *testing.T) {
	t.Run("stable for the same inputs", func(t *testing.T) {
		assert.Equal(t,
			billingIdempotencyKey("user-1", "growth", "subscription", "checkout"),
			billingIdempotencyKey("user-1", "growth", "subscription", "checkout"),
		)
	})

	t.Run("distinct for different inputs", func(t *testing.T) {
		assert.NotEqual(t,
			billingIdempotencyKey("user-1", "growth", "subscription", "checkout"),
			billingIdempotencyKey("user-1", "starter", "subscription", "checkout"),
		)
		assert.NotEqual(t,
			billingIdempotencyKey("user-1", "growth"),
			billingIdempotencyKey("user-2", "growth"),
		)
	})

	t.Run("part boundaries matter", func(t *testing.T) {
		assert.NotEqual(t,
			billingIdempotencyKey("ab", "c"),
			billingIdempotencyKey("a", "bc"),
		)
	})
}

func TestStartCheckoutRejectsInvalidPlan(t *testing.T) {
	s := newTestBillingService(&dalMocks.IBillingFirestore{}, &testNotifier{})

	for _, plan := range []string{"free", "enterprise", ""} {
		_, err := s.StartCheckout(context.Background(), "user-1", "u@example.com", CheckoutRequest{Plan: plan})
		assert.ErrorIs(t, err, domain.ErrInvalidPlan, "plan %q", plan)
	}
}

func TestStartCheckoutInPlaceUpdate(t *testing.T) {
	billingDAL := &dalMocks.IBillingFirestore{}
	s := newTestBillingService(billingDAL, &testNotifier{})

	subStub := &stubSubscriptionAPI{
		sub: newTestSubscription(),
		updated: &stripe.Subscription{
			ID:            "sub_1",
			LatestInvoice: &stripe.Invoice{ID: "in_42", AmountDue: 0},
		},
	}
	s.subscriptions = subStub

	billingDAL.On("GetUser", mock.Anything, "user-1").Return(growthSubscriberState(), nil).Once()

	resp, err := s.StartCheckout(context.Background(), "user-1", "u@example.com", CheckoutRequest{Plan: "starter"})
	require.NoError(t, err)

	assert.Equal(t, StatusUpdated, resp.Status)
	assert.Equal(t, "sub_1", resp.SubscriptionID)
	assert.Equal(t, domain.ChangeTypeDowngrade, resp.ChangeType)

	require.NotNil(t, resp.Invoice)
	assert.Equal(t, "in_42", resp.Invoice.ID)

	require.Len(t, subStub.updateCalls, 1)
	billingDAL.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
	billingDAL.AssertExpectations(t)
}

func TestStartCheckoutFallsBackToSessionOnTransientError(t *testing.T) {
	billingDAL := &dalMocks.IBillingFirestore{}
	s := newTestBillingService(billingDAL, &testNotifier{})

	s.subscriptions = &stubSubscriptionAPI{getErr: &stripe.Error{HTTPStatusCode: 503}}
	s.checkoutSessions = &stubCheckoutSessionAPI{
		session: &stripe.CheckoutSession{
			ID:   "cs_9",
			URL:  "https://checkout.stripe.com/c/pay/cs_9",
			Mode: stripe.CheckoutSessionModeSubscription,
		},
	}

	billingDAL.On("GetUser", mock.Anything, "user-1").Return(growthSubscriberState(), nil).Once()
	billingDAL.On("CreateCheckoutSession", mock.Anything, mock.AnythingOfType("*domain.CheckoutSessionRecord")).Return(nil)

	resp, err := s.StartCheckout(context.Background(), "user-1", "u@example.com", CheckoutRequest{Plan: "starter"})
	require.NoError(t, err)

	assert.Equal(t, StatusCheckout, resp.Status)
	assert.Equal(t, "cs_9", resp.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_9", resp.URL)

	billingDAL.AssertExpectations(t)
}
