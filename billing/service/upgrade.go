package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v74"

	"github.com/pennihq/console-api/billing/consts"
	"github.com/pennihq/console-api/billing/domain"
)

const (
	prorationCreate = "create_prorations"
	prorationNone   = "none"
)

// Response statuses of the interactive billing endpoints.
const (
	StatusUpdated  = "updated"
	StatusPreview  = "preview"
	StatusCheckout = "checkout"
)

// inPlaceUpdateResult reports whether an existing subscription absorbed
// the plan change. When updated is false the caller falls back to a
// hosted checkout session; retryable marks provider failures the
// checkout path may also fall back on.
type inPlaceUpdateResult struct {
	updated    bool
	retryable  bool
	changeType domain.ChangeType
	sub        *stripe.Subscription
}

// attemptInPlaceUpdate switches the user's active subscription to the
// requested plan when one exists. Upgrades prorate immediately;
// downgrades take effect without proration and keep the billing anchor.
func (s *BillingService) attemptInPlaceUpdate(ctx context.Context, uid string, user *domain.UserBillingState, plan domain.PlanKey, priceID, idempotencyKey string) (inPlaceUpdateResult, error) {
	if user == nil {
		return inPlaceUpdateResult{}, nil
	}

	current := user.CurrentPlan
	if current.SubscriptionID == "" || !current.PlanKey.IsRecurring() || !isSwitchableStatus(current.Status) {
		return inPlaceUpdateResult{}, nil
	}

	if current.PlanKey == plan {
		return inPlaceUpdateResult{}, ErrSamePlan
	}

	sub, err := s.subscriptions.Get(current.SubscriptionID, nil)
	if err != nil {
		return inPlaceUpdateResult{retryable: isRetryableProviderError(err)},
			fmt.Errorf("fetching subscription %s: %w", current.SubscriptionID, err)
	}

	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return inPlaceUpdateResult{}, ErrSubscriptionMissing
	}

	changeType := domain.ChangeTypeFor(current.PlanKey, plan)

	if idempotencyKey == "" {
		idempotencyKey = billingIdempotencyKey(uid, string(plan), sub.ID, string(changeType))
	}

	params := buildSubscriptionUpdateParams(sub.Items.Data[0].ID, priceID, uid, plan, changeType)
	params.SetIdempotencyKey(idempotencyKey)

	updated, err := s.subscriptions.Update(sub.ID, params)
	if err != nil {
		return inPlaceUpdateResult{retryable: isRetryableProviderError(err)},
			fmt.Errorf("updating subscription %s to plan %s: %w", sub.ID, plan, err)
	}

	// Local state is reconciled by the subscription.updated webhook.
	return inPlaceUpdateResult{
		updated:    true,
		changeType: changeType,
		sub:        updated,
	}, nil
}

// isRetryableProviderError separates transient provider failures from
// request errors. Anything that is not a Stripe 4xx counts as
// transient, network errors included.
func isRetryableProviderError(err error) bool {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.HTTPStatusCode >= 500
	}

	return true
}

func isSwitchableStatus(subStatus string) bool {
	switch stripe.SubscriptionStatus(subStatus) {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing, stripe.SubscriptionStatusPastDue:
		return true
	default:
		return false
	}
}

// buildSubscriptionUpdateParams assembles the provider update for a
// plan switch. Downgrades must not generate proration credit and must
// not move the billing cycle anchor.
func buildSubscriptionUpdateParams(itemID, priceID, uid string, plan domain.PlanKey, changeType domain.ChangeType) *stripe.SubscriptionParams {
	params := &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(itemID),
				Price: stripe.String(priceID),
			},
		},
	}

	if changeType == domain.ChangeTypeDowngrade {
		params.ProrationBehavior = stripe.String(prorationNone)
		params.BillingCycleAnchorUnchanged = stripe.Bool(true)
	} else {
		params.ProrationBehavior = stripe.String(prorationCreate)
	}

	params.AddMetadata(consts.MetadataPlan, string(plan))
	params.AddMetadata(consts.MetadataFirebaseUID, uid)

	return params
}

// invoiceSummaryOf maps a provider invoice reference to the summary the
// interactive endpoints return. Unexpanded references carry the id only.
func invoiceSummaryOf(invoice *stripe.Invoice) *domain.InvoiceSummary {
	if invoice == nil {
		return nil
	}

	return &domain.InvoiceSummary{
		ID:        invoice.ID,
		AmountDue: invoice.AmountDue,
		Currency:  string(invoice.Currency),
		Status:    string(invoice.Status),
	}
}

type PlanChangeRequest struct {
	Plan           string `json:"plan"`
	Confirm        bool   `json:"confirm"`
	IdempotencyKey string `json:"idempotencyKey"`
}

type PlanChangeResponse struct {
	Status         string                 `json:"status"`
	CurrentPlan    domain.PlanKey         `json:"currentPlan,omitempty"`
	NewPlan        domain.PlanKey         `json:"newPlan"`
	ChangeType     domain.ChangeType      `json:"changeType"`
	SubscriptionID string                 `json:"subscriptionId,omitempty"`
	Invoice        *domain.InvoiceSummary `json:"invoice,omitempty"`
}

// ChangePlan switches an existing subscriber between paid plans.
// Without Confirm it returns the proration invoice preview and changes
// nothing.
func (s *BillingService) ChangePlan(ctx context.Context, uid string, req PlanChangeRequest) (*PlanChangeResponse, error) {
	plan, ok := domain.ParsePlanKey(req.Plan)
	if !ok || !plan.IsRecurring() {
		return nil, domain.ErrInvalidPlan
	}

	priceID, err := s.prices.PriceIDForPlan(plan)
	if err != nil {
		return nil, err
	}

	user, err := s.billingDAL.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	current := user.CurrentPlan
	if current.SubscriptionID == "" || !current.PlanKey.IsRecurring() {
		return nil, ErrSubscriptionMissing
	}

	if current.PlanKey == plan {
		return nil, ErrSamePlan
	}

	changeType := domain.ChangeTypeFor(current.PlanKey, plan)

	if !req.Confirm {
		preview, err := s.previewPlanChange(ctx, user.StripeCustomerID, current.SubscriptionID, priceID, changeType)
		if err != nil {
			return nil, err
		}

		return &PlanChangeResponse{
			Status:      StatusPreview,
			CurrentPlan: current.PlanKey,
			NewPlan:     plan,
			ChangeType:  changeType,
			Invoice:     preview,
		}, nil
	}

	result, err := s.attemptInPlaceUpdate(ctx, uid, user, plan, priceID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	if !result.updated {
		return nil, ErrSubscriptionMissing
	}

	s.loggerProvider(ctx).Infof("user %s changed plan to %s (%s)", uid, plan, changeType)

	return &PlanChangeResponse{
		Status:         StatusUpdated,
		NewPlan:        plan,
		ChangeType:     changeType,
		SubscriptionID: result.sub.ID,
		Invoice:        invoiceSummaryOf(result.sub.LatestInvoice),
	}, nil
}

// previewPlanChange asks the provider for the upcoming invoice as it
// would look after the switch.
func (s *BillingService) previewPlanChange(ctx context.Context, customerID, subscriptionID, priceID string, changeType domain.ChangeType) (*domain.InvoiceSummary, error) {
	sub, err := s.subscriptions.Get(subscriptionID, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching subscription %s: %w", subscriptionID, err)
	}

	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil, ErrSubscriptionMissing
	}

	proration := prorationCreate
	if changeType == domain.ChangeTypeDowngrade {
		proration = prorationNone
	}

	invoice, err := s.invoices.Upcoming(&stripe.InvoiceUpcomingParams{
		Customer:     stripe.String(customerID),
		Subscription: stripe.String(subscriptionID),
		SubscriptionItems: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(sub.Items.Data[0].ID),
				Price: stripe.String(priceID),
			},
		},
		SubscriptionProrationBehavior: stripe.String(proration),
	})
	if err != nil {
		return nil, fmt.Errorf("previewing upcoming invoice for subscription %s: %w", subscriptionID, err)
	}

	return invoiceSummaryOf(invoice), nil
}

// CancelPlan resets the user to the free plan and bundle. An active
// subscription is additionally set to cancel at period end on the
// provider side; the deletion webhook later confirms the downgrade.
func (s *BillingService) CancelPlan(ctx context.Context, uid string) error {
	l := s.loggerProvider(ctx)

	user, err := s.billingDAL.GetUser(ctx, uid)
	if err != nil && err != domain.ErrUserNotFound {
		return err
	}

	if user != nil && user.CurrentPlan.SubscriptionID != "" && isSwitchableStatus(user.CurrentPlan.Status) {
		params := &stripe.SubscriptionParams{
			CancelAtPeriodEnd: stripe.Bool(true),
		}
		params.SetIdempotencyKey(billingIdempotencyKey(uid, user.CurrentPlan.SubscriptionID, "cancel"))

		if _, err := s.subscriptions.Update(user.CurrentPlan.SubscriptionID, params); err != nil {
			return fmt.Errorf("scheduling cancellation of subscription %s: %w", user.CurrentPlan.SubscriptionID, err)
		}

		l.Infof("user %s scheduled cancellation of subscription %s", uid, user.CurrentPlan.SubscriptionID)
	}

	if err := s.billingDAL.SetFreePlan(ctx, uid, "user request"); err != nil {
		return fmt.Errorf("resetting user %s to free plan: %w", uid, err)
	}

	s.notifier.PublishUpdate(ctx, uid, domain.PlanFree, "user request")

	l.Infof("user %s reset to free plan", uid)

	return nil
}
