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

func newTestSubscription() *stripe.Subscription {
	return &stripe.Subscription{
		ID:                 "sub_1",
		Status:             stripe.SubscriptionStatusActive,
		CurrentPeriodStart: 1700000000,
		CurrentPeriodEnd:   1702592000,
		CancelAtPeriodEnd:  false,
		Customer:           &stripe.Customer{ID: "cus_1"},
		Metadata: map[string]string{
			"plan":         "growth",
			"firebase_uid": "user-1",
		},
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{
				{
					ID:       "si_1",
					Quantity: 1,
					Price: &stripe.Price{
						ID:       "price_growth",
						Nickname: "Growth Monthly",
						Product:  &stripe.Product{ID: "prod_1"},
					},
				},
			},
		},
	}
}

func newTestReconciler(billingDAL *dalMocks.IBillingFirestore, notifier *testNotifier) *SubscriptionReconciler {
	return NewSubscriptionReconciler(testLoggerProvider, billingDAL, notifier, testPriceTable())
}

func TestNewSubscriptionSnapshot(t *testing.T) {
	r := newTestReconciler(&dalMocks.IBillingFirestore{}, &testNotifier{})

	snap := r.newSubscriptionSnapshot(newTestSubscription(), "customer.subscription.updated")

	assert.Equal(t, "sub_1", snap.ID)
	assert.Equal(t, "cus_1", snap.StripeCustomerID)
	assert.Equal(t, domain.PlanGrowth, snap.PlanKey)
	assert.Equal(t, "price_growth", snap.PriceID)
	assert.Equal(t, "prod_1", snap.ProductID)
	assert.Equal(t, "active", snap.Status)
	assert.Equal(t, int64(1700000000000), snap.CurrentPeriodStart)
	assert.Equal(t, int64(1702592000000), snap.CurrentPeriodEnd)
	assert.Equal(t, "customer.subscription.updated", snap.Source)

	require.Len(t, snap.Items, 1)
	assert.Equal(t, "price_growth", snap.Items[0].PriceID)
	assert.Equal(t, int64(1), snap.Items[0].Quantity)
}

func TestNewSubscriptionSnapshotPlanFromPrice(t *testing.T) {
	r := newTestReconciler(&dalMocks.IBillingFirestore{}, &testNotifier{})

	sub := newTestSubscription()
	sub.Metadata = nil

	snap := r.newSubscriptionSnapshot(sub, "customer.subscription.created")

	assert.Equal(t, domain.PlanGrowth, snap.PlanKey)
}

func TestEntitledCapabilities(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   domain.PlanKey
	}{
		{
			name:   "active earns the plan bundle",
			status: "active",
			want:   domain.PlanGrowth,
		},
		{
			name:   "trialing earns the plan bundle",
			status: "trialing",
			want:   domain.PlanGrowth,
		},
		{
			name:   "past due keeps the plan bundle during dunning",
			status: "past_due",
			want:   domain.PlanGrowth,
		},
		{
			name:   "canceled drops to the free bundle",
			status: "canceled",
			want:   domain.PlanFree,
		},
		{
			name:   "unpaid drops to the free bundle",
			status: "unpaid",
			want:   domain.PlanFree,
		},
		{
			name:   "incomplete_expired drops to the free bundle",
			status: "incomplete_expired",
			want:   domain.PlanFree,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := entitledCapabilities(domain.PlanGrowth, tt.status)
			assert.Equal(t, tt.want, caps.PlanKey)
		})
	}
}

func TestReconcileSubscription(t *testing.T) {
	ctx := context.Background()

	t.Run("applied update is handled and published", func(t *testing.T) {
		billingDAL := &dalMocks.IBillingFirestore{}
		notifier := &testNotifier{}
		r := newTestReconciler(billingDAL, notifier)

		billingDAL.
			On("RecordSubscription", mock.Anything, "user-1", mock.AnythingOfType("*domain.SubscriptionSnapshot"), mock.AnythingOfType("domain.FeatureCapabilities")).
			Return(true, nil)

		outcome, err := r.ReconcileSubscription(ctx, newTestSubscription(), "customer.subscription.updated")
		require.NoError(t, err)

		assert.Equal(t, domain.EventStatusHandled, outcome.Status)

		require.Len(t, notifier.updates, 1)
		assert.Equal(t, "user-1", notifier.updates[0].uid)
		assert.Equal(t, domain.PlanGrowth, notifier.updates[0].plan)

		billingDAL.AssertExpectations(t)
	})

	t.Run("stale update is ignored and not published", func(t *testing.T) {
		billingDAL := &dalMocks.IBillingFirestore{}
		notifier := &testNotifier{}
		r := newTestReconciler(billingDAL, notifier)

		billingDAL.
			On("RecordSubscription", mock.Anything, "user-1", mock.AnythingOfType("*domain.SubscriptionSnapshot"), mock.AnythingOfType("domain.FeatureCapabilities")).
			Return(false, nil)

		outcome, err := r.ReconcileSubscription(ctx, newTestSubscription(), "customer.subscription.updated")
		require.NoError(t, err)

		assert.Equal(t, domain.EventStatusIgnored, outcome.Status)
		assert.Empty(t, notifier.updates)
	})

	t.Run("unmapped customer is ignored", func(t *testing.T) {
		billingDAL := &dalMocks.IBillingFirestore{}
		notifier := &testNotifier{}
		r := newTestReconciler(billingDAL, notifier)

		sub := newTestSubscription()
		sub.Metadata = map[string]string{"plan": "growth"}

		billingDAL.
			On("GetUIDByStripeCustomer", mock.Anything, "cus_1").
			Return("", domain.ErrCustomerNotMapped)

		outcome, err := r.ReconcileSubscription(ctx, sub, "customer.subscription.updated")
		require.NoError(t, err)

		assert.Equal(t, domain.EventStatusIgnored, outcome.Status)
		billingDAL.AssertNotCalled(t, "RecordSubscription", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unresolvable plan is ignored", func(t *testing.T) {
		billingDAL := &dalMocks.IBillingFirestore{}
		notifier := &testNotifier{}
		r := newTestReconciler(billingDAL, notifier)

		sub := newTestSubscription()
		sub.Metadata = map[string]string{"firebase_uid": "user-1"}
		sub.Items.Data[0].Price.ID = "price_unknown"

		outcome, err := r.ReconcileSubscription(ctx, sub, "customer.subscription.updated")
		require.NoError(t, err)

		assert.Equal(t, domain.EventStatusIgnored, outcome.Status)
		billingDAL.AssertNotCalled(t, "RecordSubscription", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("terminal status writes the free bundle", func(t *testing.T) {
		billingDAL := &dalMocks.IBillingFirestore{}
		notifier := &testNotifier{}
		r := newTestReconciler(billingDAL, notifier)

		sub := newTestSubscription()
		sub.Status = stripe.SubscriptionStatusCanceled

		billingDAL.
			On("RecordSubscription", mock.Anything, "user-1", mock.AnythingOfType("*domain.SubscriptionSnapshot"), mock.MatchedBy(func(caps domain.FeatureCapabilities) bool {
				return caps.PlanKey == domain.PlanFree
			})).
			Return(true, nil)

		outcome, err := r.ReconcileSubscription(ctx, sub, "customer.subscription.updated")
		require.NoError(t, err)

		assert.Equal(t, domain.EventStatusHandled, outcome.Status)
		billingDAL.AssertExpectations(t)
	})
}

func TestReconcileDeleted(t *testing.T) {
	ctx := context.Background()

	billingDAL := &dalMocks.IBillingFirestore{}
	notifier := &testNotifier{}
	r := newTestReconciler(billingDAL, notifier)

	sub := newTestSubscription()
	sub.Status = stripe.SubscriptionStatusCanceled

	billingDAL.
		On("RecordSubscription", mock.Anything, "user-1", mock.AnythingOfType("*domain.SubscriptionSnapshot"), mock.MatchedBy(func(caps domain.FeatureCapabilities) bool {
			return caps.PlanKey == domain.PlanFree
		})).
		Return(true, nil)
	billingDAL.
		On("SetFreePlan", mock.Anything, "user-1", "customer.subscription.deleted").
		Return(nil)

	outcome, err := r.ReconcileDeleted(ctx, sub, "customer.subscription.deleted")
	require.NoError(t, err)

	assert.Equal(t, domain.EventStatusHandled, outcome.Status)

	require.Len(t, notifier.updates, 1)
	assert.Equal(t, domain.PlanFree, notifier.updates[0].plan)

	billingDAL.AssertExpectations(t)
}
