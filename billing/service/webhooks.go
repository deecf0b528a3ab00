package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/pennihq/console-api/billing/consts"
	"github.com/pennihq/console-api/billing/dal"
	"github.com/pennihq/console-api/billing/domain"
	"github.com/pennihq/console-api/logger"
)

func (s *BillingWebhookService) constructWebhookEvent(body []byte, signature string, apiVersion string) (*stripe.Event, error) {
	if apiVersion == stripe.APIVersion {
		event, err := webhook.ConstructEvent(body, signature, s.stripeClient.webhookSignKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSignature, err)
		}

		return &event, nil
	}

	// Stripe pins each webhook endpoint to an api version; tolerate a
	// mismatch with the SDK version instead of rejecting the delivery.
	event, err := webhook.ConstructEventWithOptions(body, signature, s.stripeClient.webhookSignKey, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}

	return &event, nil
}

// HandleEvent verifies, deduplicates and dispatches one webhook
// delivery, recording the outcome on the idempotency ledger.
func (s *BillingWebhookService) HandleEvent(ctx context.Context, body []byte, signature string, apiVersion string) (domain.EventOutcome, error) {
	l := s.loggerProvider(ctx)

	event, err := s.constructWebhookEvent(body, signature, apiVersion)
	if err != nil {
		return domain.EventOutcome{}, err
	}

	l.SetLabels(map[string]string{
		logger.LabelEventType: event.Type,
		"eventId":             event.ID,
	})

	isNew, err := s.billingDAL.ReserveEvent(ctx, event.ID, event.Type)
	if err != nil {
		return domain.EventOutcome{}, fmt.Errorf("reserving event %s: %w", event.ID, err)
	}

	if !isNew {
		l.Infof("event %s (%s) already seen, skipping", event.ID, event.Type)
		return domain.Duplicate("duplicate delivery"), nil
	}

	parsed, err := domain.ParseEvent(*event)
	if err != nil {
		s.finalize(ctx, event.ID, domain.EventOutcome{Status: domain.EventStatusErrored, Notes: err.Error()})
		return domain.EventOutcome{}, err
	}

	outcome, err := s.processEvent(ctx, parsed)
	if err != nil {
		s.finalize(ctx, event.ID, domain.EventOutcome{Status: domain.EventStatusErrored, Notes: err.Error()})
		return domain.EventOutcome{}, err
	}

	s.finalize(ctx, event.ID, outcome)

	return outcome, nil
}

func (s *BillingWebhookService) finalize(ctx context.Context, eventID string, outcome domain.EventOutcome) {
	if err := s.billingDAL.FinalizeEvent(ctx, eventID, outcome.Status, outcome.Notes); err != nil {
		s.loggerProvider(ctx).Errorf("finalizing event %s as %s: %s", eventID, outcome.Status, err)
	}
}

func (s *BillingWebhookService) processEvent(ctx context.Context, parsed domain.ParsedEvent) (domain.EventOutcome, error) {
	l := s.loggerProvider(ctx)

	switch parsed.Type {
	case consts.EventCheckoutSessionCompleted:
		return s.handleCheckoutSessionCompleted(ctx, parsed.CheckoutSession)
	case consts.EventSubscriptionCreated, consts.EventSubscriptionUpdated:
		return s.reconciler.ReconcileSubscription(ctx, parsed.Subscription, parsed.Type)
	case consts.EventSubscriptionDeleted:
		return s.reconciler.ReconcileDeleted(ctx, parsed.Subscription, parsed.Type)
	case consts.EventSubscriptionTrialWillEnd:
		return s.handleTrialWillEnd(ctx, parsed.Subscription)
	case consts.EventInvoicePaid, consts.EventInvoicePaymentFailed:
		return s.handleInvoiceEvent(ctx, parsed.Type, parsed.Invoice)
	case consts.EventPaymentIntentSucceeded:
		return s.handlePaymentIntentSucceeded(ctx, parsed.PaymentIntent)
	case consts.EventPaymentIntentFailed:
		return s.handlePaymentIntentFailed(ctx, parsed.PaymentIntent)
	default:
		l.Warningf("unhandled Stripe webhook event type: %s", parsed.Type)
		return domain.Ignored("unhandled event type"), nil
	}
}

// handleCheckoutSessionCompleted closes the loop opened by the checkout
// orchestrator: persist the customer mapping, mark the pending session
// record completed and fulfill one-time purchases.
func (s *BillingWebhookService) handleCheckoutSessionCompleted(ctx context.Context, session *stripe.CheckoutSession) (domain.EventOutcome, error) {
	l := s.loggerProvider(ctx)

	uid := session.Metadata[consts.MetadataFirebaseUID]
	if uid == "" {
		uid = session.ClientReferenceID
	}

	custID := ""
	if session.Customer != nil {
		custID = session.Customer.ID
	}

	if uid == "" && custID != "" {
		mapped, err := s.billingDAL.GetUIDByStripeCustomer(ctx, custID)
		if err != nil && err != domain.ErrCustomerNotMapped {
			return domain.EventOutcome{}, err
		}

		uid = mapped
	}

	if uid == "" {
		l.Warningf("checkout session %s completed without a resolvable user, skipping", session.ID)
		return domain.Ignored("unresolvable user"), nil
	}

	if custID != "" {
		if err := s.billingDAL.SaveStripeCustomerID(ctx, uid, custID); err != nil {
			return domain.EventOutcome{}, fmt.Errorf("saving customer mapping for user %s: %w", uid, err)
		}
	}

	subID := ""
	if session.Subscription != nil {
		subID = session.Subscription.ID
	}

	piID := ""
	if session.PaymentIntent != nil {
		piID = session.PaymentIntent.ID
	}

	if err := s.billingDAL.CompleteCheckoutSession(ctx, session.ID, subID, piID); err != nil {
		if errors.Is(err, dal.ErrCheckoutSessionMissing) {
			// Sessions created from the Stripe dashboard have no
			// pending record. Still fulfill the purchase below.
			l.Warningf("checkout session %s has no pending record", session.ID)
		} else {
			return domain.EventOutcome{}, fmt.Errorf("completing checkout session %s: %w", session.ID, err)
		}
	}

	if session.Mode == stripe.CheckoutSessionModePayment {
		if addonID := s.addonFromMetadata(session.Metadata); addonID != "" {
			recordID := piID
			if recordID == "" {
				recordID = session.ID
			}

			invoiceID := ""
			if session.Invoice != nil {
				invoiceID = session.Invoice.ID
			}

			if err := s.fulfillAddonPurchase(ctx, uid, s.newAddonRecord(addonID, custID, recordID, invoiceID)); err != nil {
				return domain.EventOutcome{}, err
			}

			l.Infof("checkout session %s fulfilled addon %s for user %s", session.ID, addonID, uid)
			s.notifier.PublishUpdate(ctx, uid, domain.PlanEvent, consts.EventCheckoutSessionCompleted)

			return domain.Handled(fmt.Sprintf("addon %s fulfilled", addonID)), nil
		}
	}

	// The session payload carries the subscription as an unexpanded
	// reference; fetch it and reconcile right away instead of waiting
	// for the lifecycle event, which may be lost or arrive unresolvable.
	// The staleness guard makes the two paths commute.
	if session.Mode == stripe.CheckoutSessionModeSubscription && subID != "" {
		sub, err := s.subscriptions.Get(subID, nil)
		if err != nil {
			return domain.EventOutcome{}, fmt.Errorf("fetching subscription %s from session %s: %w", subID, session.ID, err)
		}

		return s.reconciler.ReconcileSubscription(ctx, sub, consts.EventCheckoutSessionCompleted)
	}

	l.Infof("checkout session %s completed for user %s", session.ID, uid)

	return domain.Handled("session completed"), nil
}

func (s *BillingWebhookService) handleTrialWillEnd(ctx context.Context, sub *stripe.Subscription) (domain.EventOutcome, error) {
	l := s.loggerProvider(ctx)

	uid, err := s.reconciler.resolveUID(ctx, sub)
	if err != nil {
		if err == domain.ErrCustomerNotMapped {
			l.Warningf("trial ending on subscription %s: customer not mapped, skipping", sub.ID)
			return domain.Ignored("unresolvable customer"), nil
		}

		return domain.EventOutcome{}, err
	}

	if err := s.billingDAL.SetTrialWillEnd(ctx, uid, sub.ID); err != nil {
		return domain.EventOutcome{}, fmt.Errorf("flagging trial end on subscription %s: %w", sub.ID, err)
	}

	return domain.Handled("trial ending flagged"), nil
}

// handleInvoiceEvent mirrors the invoice under the user document. A
// failed payment additionally flags the current plan as past due; the
// entitlement bundle stays untouched until the subscription lifecycle
// resolves the dunning.
func (s *BillingWebhookService) handleInvoiceEvent(ctx context.Context, eventType string, invoice *stripe.Invoice) (domain.EventOutcome, error) {
	l := s.loggerProvider(ctx)

	custID := ""
	if invoice.Customer != nil {
		custID = invoice.Customer.ID
	}

	if custID == "" {
		return domain.Ignored("invoice without customer"), nil
	}

	uid, err := s.billingDAL.GetUIDByStripeCustomer(ctx, custID)
	if err != nil {
		if err == domain.ErrCustomerNotMapped {
			l.Warningf("invoice %s: customer %s not mapped to a user, skipping", invoice.ID, custID)
			return domain.Ignored("unresolvable customer"), nil
		}

		return domain.EventOutcome{}, err
	}

	record := &domain.InvoiceRecord{
		ID:               invoice.ID,
		Status:           string(invoice.Status),
		AmountDue:        invoice.AmountDue,
		AmountPaid:       invoice.AmountPaid,
		Currency:         string(invoice.Currency),
		HostedInvoiceURL: invoice.HostedInvoiceURL,
	}

	if invoice.Subscription != nil {
		record.SubscriptionID = invoice.Subscription.ID
	}

	if err := s.billingDAL.RecordInvoice(ctx, uid, record); err != nil {
		return domain.EventOutcome{}, fmt.Errorf("recording invoice %s for user %s: %w", invoice.ID, uid, err)
	}

	if eventType == consts.EventInvoicePaymentFailed && record.SubscriptionID != "" {
		if err := s.billingDAL.MarkSubscriptionPastDue(ctx, uid, record.SubscriptionID); err != nil && err != domain.ErrUserNotFound {
			return domain.EventOutcome{}, fmt.Errorf("marking subscription %s past due for user %s: %w", record.SubscriptionID, uid, err)
		}

		return domain.Handled(fmt.Sprintf("invoice %s mirrored, plan flagged past due", invoice.ID)), nil
	}

	return domain.Handled(fmt.Sprintf("invoice %s mirrored", invoice.ID)), nil
}

// handlePaymentIntentSucceeded fulfills addon purchases made outside a
// checkout session, such as dashboard-created payment links.
func (s *BillingWebhookService) handlePaymentIntentSucceeded(ctx context.Context, pi *stripe.PaymentIntent) (domain.EventOutcome, error) {
	l := s.loggerProvider(ctx)

	addonID := s.addonFromMetadata(pi.Metadata)
	if addonID == "" {
		return domain.Ignored("no addon metadata"), nil
	}

	custID := ""
	if pi.Customer != nil {
		custID = pi.Customer.ID
	}

	uid := pi.Metadata[consts.MetadataFirebaseUID]
	if uid == "" && custID != "" {
		mapped, err := s.billingDAL.GetUIDByStripeCustomer(ctx, custID)
		if err != nil && err != domain.ErrCustomerNotMapped {
			return domain.EventOutcome{}, err
		}

		uid = mapped
	}

	if uid == "" {
		l.Warningf("payment intent %s succeeded without a resolvable user, skipping", pi.ID)
		return domain.Ignored("unresolvable user"), nil
	}

	invoiceID := ""
	if pi.Invoice != nil {
		invoiceID = pi.Invoice.ID
	}

	if err := s.fulfillAddonPurchase(ctx, uid, s.newAddonRecord(addonID, custID, pi.ID, invoiceID)); err != nil {
		return domain.EventOutcome{}, err
	}

	s.notifier.PublishUpdate(ctx, uid, domain.PlanEvent, consts.EventPaymentIntentSucceeded)

	return domain.Handled(fmt.Sprintf("addon %s fulfilled", addonID)), nil
}

func (s *BillingWebhookService) handlePaymentIntentFailed(ctx context.Context, pi *stripe.PaymentIntent) (domain.EventOutcome, error) {
	l := s.loggerProvider(ctx)

	l.Warningf("payment intent %s failed for customer %s", pi.ID, customerIDOfIntent(pi))

	return domain.Ignored("payment failure logged"), nil
}

func customerIDOfIntent(pi *stripe.PaymentIntent) string {
	if pi.Customer == nil {
		return ""
	}

	return pi.Customer.ID
}
