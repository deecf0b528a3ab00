package service

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v74"

	"github.com/pennihq/console-api/billing/consts"
	"github.com/pennihq/console-api/billing/dal"
	"github.com/pennihq/console-api/billing/domain"
	"github.com/pennihq/console-api/logger"
)

// SubscriptionReconciler folds provider subscription objects into the
// local billing state. Every reconciliation recomputes the snapshot and
// the entitlement bundle in full from the provider object, so repeated
// or reordered deliveries converge on the same state.
type SubscriptionReconciler struct {
	loggerProvider logger.Provider
	billingDAL     dal.IBillingFirestore
	notifier       EntitlementNotifier
	prices         PriceTable
}

func NewSubscriptionReconciler(loggerProvider logger.Provider, billingDAL dal.IBillingFirestore, notifier EntitlementNotifier, prices PriceTable) *SubscriptionReconciler {
	return &SubscriptionReconciler{
		loggerProvider: loggerProvider,
		billingDAL:     billingDAL,
		notifier:       notifier,
		prices:         prices,
	}
}

// newSubscriptionSnapshot derives the local snapshot from the provider
// subscription. Period boundaries are stored as epoch milliseconds.
func (r *SubscriptionReconciler) newSubscriptionSnapshot(sub *stripe.Subscription, source string) *domain.SubscriptionSnapshot {
	snap := &domain.SubscriptionSnapshot{
		ID:                 sub.ID,
		Status:             string(sub.Status),
		CurrentPeriodStart: sub.CurrentPeriodStart * 1000,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd * 1000,
		TrialStart:         sub.TrialStart * 1000,
		TrialEnd:           sub.TrialEnd * 1000,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		CancelAt:           sub.CancelAt * 1000,
		CanceledAt:         sub.CanceledAt * 1000,
		Source:             source,
	}

	if sub.Customer != nil {
		snap.StripeCustomerID = sub.Customer.ID
	}

	if sub.LatestInvoice != nil {
		snap.LatestInvoiceID = sub.LatestInvoice.ID
	}

	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item.Price == nil {
				continue
			}

			snap.Items = append(snap.Items, domain.SubscriptionLineItem{
				PriceID:  item.Price.ID,
				Quantity: item.Quantity,
				Nickname: item.Price.Nickname,
			})

			if snap.PriceID == "" {
				snap.PriceID = item.Price.ID

				if item.Price.Product != nil {
					snap.ProductID = item.Price.Product.ID
				}
			}
		}
	}

	snap.PlanKey = r.prices.ResolvePlanKey(sub.Metadata, snap.PriceID)

	return snap
}

// entitledCapabilities projects the bundle the subscription status earns.
// Terminal statuses drop to the free bundle regardless of the plan, so a
// missed deletion event still fails safe.
func entitledCapabilities(plan domain.PlanKey, subStatus string) domain.FeatureCapabilities {
	switch stripe.SubscriptionStatus(subStatus) {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing, stripe.SubscriptionStatusPastDue:
		return domain.BuildFeatureCapabilities(plan)
	default:
		return domain.BuildFeatureCapabilities(domain.PlanFree)
	}
}

// ReconcileSubscription applies one provider subscription to the user's
// billing state and reports the handler outcome for the event ledger.
func (r *SubscriptionReconciler) ReconcileSubscription(ctx context.Context, sub *stripe.Subscription, source string) (domain.EventOutcome, error) {
	l := r.loggerProvider(ctx)

	uid, err := r.resolveUID(ctx, sub)
	if err != nil {
		if err == domain.ErrCustomerNotMapped {
			l.Warningf("subscription %s: customer %s not mapped to a user, skipping", sub.ID, customerID(sub))
			return domain.Ignored("unresolvable customer"), nil
		}

		return domain.EventOutcome{}, err
	}

	snap := r.newSubscriptionSnapshot(sub, source)
	if snap.PlanKey == "" {
		l.Warningf("subscription %s: price %s resolves to no known plan, skipping", sub.ID, snap.PriceID)
		return domain.Ignored("unresolvable plan"), nil
	}

	caps := entitledCapabilities(snap.PlanKey, snap.Status)

	applied, err := r.billingDAL.RecordSubscription(ctx, uid, snap, caps)
	if err != nil {
		return domain.EventOutcome{}, fmt.Errorf("recording subscription %s for user %s: %w", sub.ID, uid, err)
	}

	if !applied {
		l.Infof("subscription %s: stale update from %s skipped", sub.ID, source)
		return domain.Ignored("stale period, newer state already stored"), nil
	}

	l.SetLabel(logger.LabelPlan, string(snap.PlanKey))
	l.Infof("subscription %s reconciled to plan %s (%s) for user %s", sub.ID, snap.PlanKey, snap.Status, uid)

	r.notifier.PublishUpdate(ctx, uid, caps.PlanKey, source)

	return domain.Handled(fmt.Sprintf("plan %s, status %s", snap.PlanKey, snap.Status)), nil
}

// ReconcileDeleted handles the terminal deletion of a subscription. The
// final snapshot is stored for the audit trail, then the user drops to
// the free plan and bundle.
func (r *SubscriptionReconciler) ReconcileDeleted(ctx context.Context, sub *stripe.Subscription, source string) (domain.EventOutcome, error) {
	l := r.loggerProvider(ctx)

	uid, err := r.resolveUID(ctx, sub)
	if err != nil {
		if err == domain.ErrCustomerNotMapped {
			l.Warningf("deleted subscription %s: customer %s not mapped to a user, skipping", sub.ID, customerID(sub))
			return domain.Ignored("unresolvable customer"), nil
		}

		return domain.EventOutcome{}, err
	}

	snap := r.newSubscriptionSnapshot(sub, source)

	if _, err := r.billingDAL.RecordSubscription(ctx, uid, snap, domain.BuildFeatureCapabilities(domain.PlanFree)); err != nil {
		return domain.EventOutcome{}, fmt.Errorf("recording deleted subscription %s for user %s: %w", sub.ID, uid, err)
	}

	if err := r.billingDAL.SetFreePlan(ctx, uid, source); err != nil {
		return domain.EventOutcome{}, fmt.Errorf("resetting user %s to free plan: %w", uid, err)
	}

	l.Infof("subscription %s deleted, user %s reset to free plan", sub.ID, uid)

	r.notifier.PublishUpdate(ctx, uid, domain.PlanFree, source)

	return domain.Handled("subscription deleted, reset to free plan"), nil
}

// resolveUID maps the provider subscription to its owning user. The
// metadata tag we stamp during checkout wins; the customer reverse
// index covers subscriptions created from the Stripe dashboard.
func (r *SubscriptionReconciler) resolveUID(ctx context.Context, sub *stripe.Subscription) (string, error) {
	if uid, ok := sub.Metadata[consts.MetadataFirebaseUID]; ok && uid != "" {
		return uid, nil
	}

	custID := customerID(sub)
	if custID == "" {
		return "", domain.ErrCustomerNotMapped
	}

	return r.billingDAL.GetUIDByStripeCustomer(ctx, custID)
}

func customerID(sub *stripe.Subscription) string {
	if sub.Customer == nil {
		return ""
	}

	return sub.Customer.ID
}
