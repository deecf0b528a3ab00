package dal

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pennihq/console-api/billing/consts"
	"github.com/pennihq/console-api/billing/domain"
	"github.com/pennihq/console-api/framework/connection"
)

// BillingFirestore is used to interact with billing data stored on Firestore.
type BillingFirestore struct {
	firestoreClientFun connection.FirestoreFromContextFun
}

// NewBillingFirestore returns a new BillingFirestore instance with given project id.
func NewBillingFirestore(ctx context.Context, projectID string) (*BillingFirestore, error) {
	fs, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return NewBillingFirestoreWithClient(
		func(ctx context.Context) *firestore.Client {
			return fs
		}), nil
}

// NewBillingFirestoreWithClient returns a new BillingFirestore using given client.
func NewBillingFirestoreWithClient(fun connection.FirestoreFromContextFun) *BillingFirestore {
	return &BillingFirestore{
		firestoreClientFun: fun,
	}
}

func (d *BillingFirestore) getUserRef(ctx context.Context, uid string) *firestore.DocumentRef {
	return d.firestoreClientFun(ctx).Collection(consts.UsersCollection).Doc(uid)
}

func (d *BillingFirestore) getSubscriptionRef(ctx context.Context, uid, subscriptionID string) *firestore.DocumentRef {
	return d.getUserRef(ctx, uid).Collection(consts.SubscriptionsCollection).Doc(subscriptionID)
}

func (d *BillingFirestore) getEventRef(ctx context.Context, eventID string) *firestore.DocumentRef {
	return d.firestoreClientFun(ctx).Collection(consts.WebhookEventsCollection).Doc(eventID)
}

func (d *BillingFirestore) getCheckoutSessionRef(ctx context.Context, sessionID string) *firestore.DocumentRef {
	return d.firestoreClientFun(ctx).Collection(consts.CheckoutSessionsCollection).Doc(sessionID)
}

func (d *BillingFirestore) getStripeCustomerRef(ctx context.Context, customerID string) *firestore.DocumentRef {
	return d.firestoreClientFun(ctx).Collection(consts.StripeCustomersCollection).Doc(customerID)
}

// GetUser returns the billing slice of the user document.
func (d *BillingFirestore) GetUser(ctx context.Context, uid string) (*domain.UserBillingState, error) {
	docSnap, err := d.getUserRef(ctx, uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrUserNotFound
		}

		return nil, err
	}

	var user domain.UserBillingState

	if err := docSnap.DataTo(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

// SaveStripeCustomerID stores the customer id on the user document and
// maintains the reverse index used by webhook handlers.
func (d *BillingFirestore) SaveStripeCustomerID(ctx context.Context, uid string, customerID string) error {
	userRef := d.getUserRef(ctx, uid)
	customerRef := d.getStripeCustomerRef(ctx, customerID)

	return d.firestoreClientFun(ctx).RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Set(userRef, map[string]interface{}{
			consts.FieldStripeCustomerID: customerID,
		}, firestore.MergeAll); err != nil {
			return err
		}

		return tx.Set(customerRef, map[string]interface{}{
			"uid":       uid,
			"updatedAt": time.Now().UTC(),
		})
	}, firestore.MaxAttempts(10))
}

// GetUIDByStripeCustomer resolves a provider customer id to the owning
// user through the reverse index.
func (d *BillingFirestore) GetUIDByStripeCustomer(ctx context.Context, customerID string) (string, error) {
	docSnap, err := d.getStripeCustomerRef(ctx, customerID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", domain.ErrCustomerNotMapped
		}

		return "", err
	}

	v, err := docSnap.DataAt("uid")
	if err != nil {
		return "", err
	}

	uid, ok := v.(string)
	if !ok || uid == "" {
		return "", domain.ErrCustomerNotMapped
	}

	return uid, nil
}

// ReserveEvent claims the ledger entry for the given event id. It
// returns false without error when the event was already seen, so the
// caller can short-circuit the duplicate delivery.
func (d *BillingFirestore) ReserveEvent(ctx context.Context, eventID string, eventType string) (bool, error) {
	eventRef := d.getEventRef(ctx, eventID)

	isNew := false

	err := d.firestoreClientFun(ctx).RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		isNew = false

		_, err := tx.Get(eventRef)
		if err == nil {
			return nil
		}

		if status.Code(err) != codes.NotFound {
			return err
		}

		if err := tx.Create(eventRef, domain.WebhookEventLogRecord{
			EventID:    eventID,
			EventType:  eventType,
			Status:     domain.EventStatusProcessing,
			ReceivedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}

		isNew = true

		return nil
	}, firestore.MaxAttempts(10))
	if err != nil {
		return false, err
	}

	return isNew, nil
}

// FinalizeEvent records the terminal status of a reserved ledger entry.
func (d *BillingFirestore) FinalizeEvent(ctx context.Context, eventID string, eventStatus domain.EventStatus, notes string) error {
	_, err := d.getEventRef(ctx, eventID).Update(ctx, []firestore.Update{
		{FieldPath: []string{consts.FieldStatus}, Value: eventStatus},
		{FieldPath: []string{consts.FieldNotes}, Value: notes},
		{FieldPath: []string{consts.FieldProcessedAt}, Value: time.Now().UTC()},
	})

	return err
}

// RecordSubscription writes the full reconciliation of one provider
// subscription in a single transaction: the snapshot, the user's
// current-plan pointer, the whole entitlement bundle, the customer
// reverse index and an audit history entry. It returns false when the
// incoming snapshot is staler than the stored one and nothing was
// written.
func (d *BillingFirestore) RecordSubscription(ctx context.Context, uid string, snap *domain.SubscriptionSnapshot, caps domain.FeatureCapabilities) (bool, error) {
	userRef := d.getUserRef(ctx, uid)
	subRef := d.getSubscriptionRef(ctx, uid, snap.ID)
	customerRef := d.getStripeCustomerRef(ctx, snap.StripeCustomerID)

	now := time.Now().UTC()
	historyRef := userRef.Collection(consts.SubscriptionHistoryCollection).Doc(fmt.Sprintf("%s-%d", snap.ID, now.UnixMilli()))

	applied := false

	err := d.firestoreClientFun(ctx).RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		applied = false

		storedSnap, err := tx.Get(subRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		if err == nil {
			var stored domain.SubscriptionSnapshot
			if err := storedSnap.DataTo(&stored); err != nil {
				return err
			}

			// Events can arrive out of order. Never let an older
			// billing period overwrite a newer one.
			if stored.CurrentPeriodStart > snap.CurrentPeriodStart {
				return nil
			}
		}

		toWrite := *snap
		toWrite.UpdatedAt = now

		if err := tx.Set(subRef, toWrite); err != nil {
			return err
		}

		caps.UpdatedAt = now

		currentPlan := domain.CurrentPlan{
			PlanKey:           snap.PlanKey,
			SubscriptionID:    snap.ID,
			PriceID:           snap.PriceID,
			Status:            snap.Status,
			CurrentPeriodEnd:  snap.CurrentPeriodEnd,
			TrialEnd:          snap.TrialEnd,
			CancelAtPeriodEnd: snap.CancelAtPeriodEnd,
			RefreshDate:       now,
		}

		if err := tx.Set(userRef, map[string]interface{}{
			consts.FieldStripeCustomerID:    snap.StripeCustomerID,
			consts.FieldCurrentPlan:         currentPlan,
			consts.FieldFeatureCapabilities: caps,
		}, firestore.Merge(
			firestore.FieldPath{consts.FieldStripeCustomerID},
			firestore.FieldPath{consts.FieldCurrentPlan},
			firestore.FieldPath{consts.FieldFeatureCapabilities},
		)); err != nil {
			return err
		}

		if err := tx.Set(customerRef, map[string]interface{}{
			"uid":       uid,
			"updatedAt": now,
		}); err != nil {
			return err
		}

		if err := tx.Create(historyRef, domain.SubscriptionHistoryRecord{
			SubscriptionID: snap.ID,
			Status:         snap.Status,
			PlanKey:        snap.PlanKey,
			Source:         snap.Source,
			RecordedAt:     now,
		}); err != nil {
			return err
		}

		applied = true

		return nil
	}, firestore.MaxAttempts(10))
	if err != nil {
		return false, err
	}

	return applied, nil
}

// SetFreePlan resets the user to the free plan and its full entitlement
// bundle, appending an audit entry.
func (d *BillingFirestore) SetFreePlan(ctx context.Context, uid string, source string) error {
	userRef := d.getUserRef(ctx, uid)

	now := time.Now().UTC()
	historyRef := userRef.Collection(consts.SubscriptionHistoryCollection).Doc(fmt.Sprintf("free-%d", now.UnixMilli()))

	caps := domain.BuildFeatureCapabilities(domain.PlanFree)
	caps.UpdatedAt = now

	currentPlan := domain.CurrentPlan{
		PlanKey:     domain.PlanFree,
		Status:      "active",
		RefreshDate: now,
	}

	return d.firestoreClientFun(ctx).RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Set(userRef, map[string]interface{}{
			consts.FieldCurrentPlan:         currentPlan,
			consts.FieldFeatureCapabilities: caps,
		}, firestore.Merge(
			firestore.FieldPath{consts.FieldCurrentPlan},
			firestore.FieldPath{consts.FieldFeatureCapabilities},
		)); err != nil {
			return err
		}

		return tx.Create(historyRef, domain.SubscriptionHistoryRecord{
			Status:     "canceled",
			PlanKey:    domain.PlanFree,
			Source:     source,
			RecordedAt: now,
		})
	}, firestore.MaxAttempts(10))
}

// SetTrialWillEnd flags the stored subscription so the product surface
// can prompt the user before the trial converts.
func (d *BillingFirestore) SetTrialWillEnd(ctx context.Context, uid string, subscriptionID string) error {
	_, err := d.getSubscriptionRef(ctx, uid, subscriptionID).Set(ctx, map[string]interface{}{
		consts.FieldTrialWillEnd: true,
		consts.FieldUpdatedAt:    time.Now().UTC(),
	}, firestore.MergeAll)

	return err
}

// MarkSubscriptionPastDue flags the user's current plan as past due
// after a failed invoice payment. Entitlements stay in place during
// dunning; only the status flips. An invoice for a subscription other
// than the current one is a no-op.
func (d *BillingFirestore) MarkSubscriptionPastDue(ctx context.Context, uid string, subscriptionID string) error {
	userRef := d.getUserRef(ctx, uid)

	return d.firestoreClientFun(ctx).RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(userRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return domain.ErrUserNotFound
			}

			return err
		}

		var user domain.UserBillingState
		if err := docSnap.DataTo(&user); err != nil {
			return err
		}

		if user.CurrentPlan.SubscriptionID != subscriptionID || user.CurrentPlan.Status == "past_due" {
			return nil
		}

		return tx.Update(userRef, []firestore.Update{
			{FieldPath: []string{consts.FieldCurrentPlan, consts.FieldStatus}, Value: "past_due"},
			{FieldPath: []string{consts.FieldCurrentPlan, consts.FieldRefreshDate}, Value: time.Now().UTC()},
		})
	}, firestore.MaxAttempts(10))
}

// RecordInvoice mirrors a provider invoice under the user document.
func (d *BillingFirestore) RecordInvoice(ctx context.Context, uid string, invoice *domain.InvoiceRecord) error {
	toWrite := *invoice
	toWrite.UpdatedAt = time.Now().UTC()

	_, err := d.getUserRef(ctx, uid).Collection(consts.InvoicesCollection).Doc(invoice.ID).Set(ctx, toWrite)

	return err
}

// CreateCheckoutSession records a pending checkout session. Write-once;
// a second create for the same session id fails.
func (d *BillingFirestore) CreateCheckoutSession(ctx context.Context, session *domain.CheckoutSessionRecord) error {
	toWrite := *session
	toWrite.Status = domain.CheckoutSessionPending
	toWrite.CreatedAt = time.Now().UTC()

	_, err := d.getCheckoutSessionRef(ctx, session.ID).Create(ctx, toWrite)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrCheckoutSessionExists
		}

		return err
	}

	return nil
}

// GetCheckoutSession returns the stored checkout session record.
func (d *BillingFirestore) GetCheckoutSession(ctx context.Context, sessionID string) (*domain.CheckoutSessionRecord, error) {
	docSnap, err := d.getCheckoutSessionRef(ctx, sessionID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrCheckoutSessionMissing
		}

		return nil, err
	}

	var session domain.CheckoutSessionRecord

	if err := docSnap.DataTo(&session); err != nil {
		return nil, err
	}

	return &session, nil
}

// CompleteCheckoutSession marks a pending session completed. Completing
// an already completed session is a no-op so redelivered events stay
// idempotent.
func (d *BillingFirestore) CompleteCheckoutSession(ctx context.Context, sessionID string, subscriptionID string, paymentIntentID string) error {
	sessionRef := d.getCheckoutSessionRef(ctx, sessionID)

	return d.firestoreClientFun(ctx).RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(sessionRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrCheckoutSessionMissing
			}

			return err
		}

		var session domain.CheckoutSessionRecord
		if err := docSnap.DataTo(&session); err != nil {
			return err
		}

		if session.Status == domain.CheckoutSessionCompleted {
			return nil
		}

		return tx.Update(sessionRef, []firestore.Update{
			{FieldPath: []string{consts.FieldStatus}, Value: domain.CheckoutSessionCompleted},
			{FieldPath: []string{consts.FieldCompletedAt}, Value: time.Now().UTC()},
			{FieldPath: []string{consts.FieldSubscriptionID}, Value: subscriptionID},
			{FieldPath: []string{consts.FieldPaymentIntentID}, Value: paymentIntentID},
		})
	}, firestore.MaxAttempts(10))
}

// RecordAddonPurchase stores a one-time purchase record under the user,
// keyed by payment intent id.
func (d *BillingFirestore) RecordAddonPurchase(ctx context.Context, uid string, record *domain.AddonRecord) error {
	toWrite := *record
	toWrite.Status = domain.AddonPurchased
	toWrite.UpdatedAt = time.Now().UTC()

	if toWrite.PurchasedAt.IsZero() {
		toWrite.PurchasedAt = toWrite.UpdatedAt
	}

	_, err := d.getUserRef(ctx, uid).Collection(consts.AddonsCollection).Doc(record.PaymentIntentID).Set(ctx, toWrite)

	return err
}

// FulfillAddon flips the purchase record to fulfilled and grants the
// addon flag on the user document. Fulfilling twice is a no-op.
func (d *BillingFirestore) FulfillAddon(ctx context.Context, uid string, recordID string, addonID string) error {
	userRef := d.getUserRef(ctx, uid)
	recordRef := userRef.Collection(consts.AddonsCollection).Doc(recordID)

	return d.firestoreClientFun(ctx).RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(recordRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrAddonRecordMissing
			}

			return err
		}

		var record domain.AddonRecord
		if err := docSnap.DataTo(&record); err != nil {
			return err
		}

		if record.Status == domain.AddonFulfilled {
			return nil
		}

		now := time.Now().UTC()

		if err := tx.Update(recordRef, []firestore.Update{
			{FieldPath: []string{consts.FieldStatus}, Value: domain.AddonFulfilled},
			{FieldPath: []string{consts.FieldFulfilledAt}, Value: now},
			{FieldPath: []string{consts.FieldUpdatedAt}, Value: now},
		}); err != nil {
			return err
		}

		return tx.Set(userRef, map[string]interface{}{
			consts.FieldAddons: map[string]interface{}{
				addonID: true,
			},
		}, firestore.MergeAll)
	}, firestore.MaxAttempts(10))
}
