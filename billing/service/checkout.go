package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v74"

	"github.com/pennihq/console-api/billing/consts"
	"github.com/pennihq/console-api/billing/dal"
	"github.com/pennihq/console-api/billing/domain"
	"github.com/pennihq/console-api/common"
)

type CheckoutRequest struct {
	Plan           string `json:"plan"`
	SuccessURL     string `json:"successUrl"`
	CancelURL      string `json:"cancelUrl"`
	IdempotencyKey string `json:"idempotencyKey"`
}

// CheckoutResponse is returned by the checkout endpoint. When the plan
// change was applied to an existing subscription in place the status is
// "updated" and there is no redirect; otherwise the status is
// "checkout" and the URL points at the hosted session.
type CheckoutResponse struct {
	Status         string                 `json:"status"`
	SessionID      string                 `json:"sessionId,omitempty"`
	URL            string                 `json:"url,omitempty"`
	SubscriptionID string                 `json:"subscriptionId,omitempty"`
	Invoice        *domain.InvoiceSummary `json:"invoice,omitempty"`
	ChangeType     domain.ChangeType      `json:"changeType,omitempty"`
}

// StartCheckout begins a paid-plan purchase for the user. Existing
// recurring subscribers are switched in place; everyone else gets a
// hosted checkout session to redirect to.
func (s *BillingService) StartCheckout(ctx context.Context, uid, email string, req CheckoutRequest) (*CheckoutResponse, error) {
	l := s.loggerProvider(ctx)

	plan, ok := domain.ParsePlanKey(req.Plan)
	if !ok || plan == domain.PlanFree {
		return nil, domain.ErrInvalidPlan
	}

	priceID, err := s.prices.PriceIDForPlan(plan)
	if err != nil {
		return nil, err
	}

	user, err := s.billingDAL.GetUser(ctx, uid)
	if err != nil && err != domain.ErrUserNotFound {
		return nil, err
	}

	customerID, err := s.getOrCreateCustomer(ctx, uid, email, user)
	if err != nil {
		return nil, err
	}

	if plan.IsRecurring() {
		// The client key is reserved for the session call below; an
		// idempotency key must not span two different provider requests.
		result, err := s.attemptInPlaceUpdate(ctx, uid, user, plan, priceID, "")
		if err != nil && !result.retryable {
			return nil, err
		}

		if err != nil {
			l.Warningf("in-place plan switch for user %s failed, falling back to a checkout session: %s", uid, err)
		}

		if result.updated {
			l.Infof("user %s switched to plan %s in place (%s)", uid, plan, result.changeType)

			return &CheckoutResponse{
				Status:         StatusUpdated,
				SubscriptionID: result.sub.ID,
				Invoice:        invoiceSummaryOf(result.sub.LatestInvoice),
				ChangeType:     result.changeType,
			}, nil
		}
	}

	session, err := s.createCheckoutSession(ctx, uid, customerID, plan, priceID, req)
	if err != nil {
		return nil, err
	}

	if err := s.billingDAL.CreateCheckoutSession(ctx, &domain.CheckoutSessionRecord{
		ID:               session.ID,
		FirebaseUID:      uid,
		Plan:             plan,
		Mode:             string(session.Mode),
		StripeCustomerID: customerID,
	}); err != nil && !errors.Is(err, dal.ErrCheckoutSessionExists) {
		return nil, fmt.Errorf("recording pending checkout session %s: %w", session.ID, err)
	}

	l.Infof("user %s started checkout session %s for plan %s", uid, session.ID, plan)

	return &CheckoutResponse{
		Status:    StatusCheckout,
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}

// getOrCreateCustomer returns the user's Stripe customer id, creating
// the customer on first purchase. The uid doubles as the idempotency
// key so concurrent first purchases cannot create two customers.
func (s *BillingService) getOrCreateCustomer(ctx context.Context, uid, email string, user *domain.UserBillingState) (string, error) {
	if user != nil && user.StripeCustomerID != "" {
		return user.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{}

	if email != "" {
		params.Email = stripe.String(email)
	}

	params.AddMetadata(consts.MetadataFirebaseUID, uid)
	params.SetIdempotencyKey(uid)

	customer, err := s.customers.New(params)
	if err != nil {
		return "", fmt.Errorf("creating stripe customer for user %s: %w", uid, err)
	}

	if err := s.billingDAL.SaveStripeCustomerID(ctx, uid, customer.ID); err != nil {
		return "", fmt.Errorf("saving stripe customer %s for user %s: %w", customer.ID, uid, err)
	}

	return customer.ID, nil
}

func (s *BillingService) createCheckoutSession(ctx context.Context, uid, customerID string, plan domain.PlanKey, priceID string, req CheckoutRequest) (*stripe.CheckoutSession, error) {
	mode := stripe.CheckoutSessionModeSubscription
	if !plan.IsRecurring() {
		mode = stripe.CheckoutSessionModePayment
	}

	successURL := req.SuccessURL
	if successURL == "" {
		successURL = common.GetEnv("BILLING_SUCCESS_URL", "https://console.penni.io/billing/success")
	}

	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = common.GetEnv("BILLING_CANCEL_URL", "https://console.penni.io/billing")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(mode)),
		Customer:          stripe.String(customerID),
		ClientReferenceID: stripe.String(uid),
		SuccessURL:        stripe.String(successURL + "?checkout_session={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
	}

	params.AddMetadata(consts.MetadataPlan, string(plan))
	params.AddMetadata(consts.MetadataFirebaseUID, uid)

	switch mode {
	case stripe.CheckoutSessionModeSubscription:
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				consts.MetadataPlan:        string(plan),
				consts.MetadataFirebaseUID: uid,
			},
		}
	case stripe.CheckoutSessionModePayment:
		params.AddMetadata(consts.MetadataAddon, consts.AddonEventAccess)
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{
				consts.MetadataAddon:       consts.AddonEventAccess,
				consts.MetadataPlan:        string(plan),
				consts.MetadataFirebaseUID: uid,
			},
		}
	}

	idempotencyKey := req.IdempotencyKey
	if idempotencyKey == "" {
		idempotencyKey = billingIdempotencyKey(uid, string(plan), string(mode), "checkout")
	}

	params.SetIdempotencyKey(idempotencyKey)

	session, err := s.checkoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("creating checkout session for user %s: %w", uid, err)
	}

	return session, nil
}

// billingIdempotencyKey derives a stable key from the operation inputs
// so a retried request replays the original Stripe call instead of
// issuing a second one.
func billingIdempotencyKey(parts ...string) string {
	h := sha256.New()

	for i, part := range parts {
		if i > 0 {
			h.Write([]byte{'|'})
		}

		h.Write([]byte(part))
	}

	return hex.EncodeToString(h.Sum(nil))
}
