package dal

import (
	"context"

	"github.com/pennihq/console-api/billing/domain"
)

//go:generate mockery --name IBillingFirestore --output ./mocks --outpkg mocks --case=underscore

type IBillingFirestore interface {
	GetUser(ctx context.Context, uid string) (*domain.UserBillingState, error)
	SaveStripeCustomerID(ctx context.Context, uid string, customerID string) error
	GetUIDByStripeCustomer(ctx context.Context, customerID string) (string, error)

	ReserveEvent(ctx context.Context, eventID string, eventType string) (bool, error)
	FinalizeEvent(ctx context.Context, eventID string, status domain.EventStatus, notes string) error

	RecordSubscription(ctx context.Context, uid string, snap *domain.SubscriptionSnapshot, caps domain.FeatureCapabilities) (bool, error)
	SetFreePlan(ctx context.Context, uid string, source string) error
	SetTrialWillEnd(ctx context.Context, uid string, subscriptionID string) error

	MarkSubscriptionPastDue(ctx context.Context, uid string, subscriptionID string) error

	RecordInvoice(ctx context.Context, uid string, invoice *domain.InvoiceRecord) error

	CreateCheckoutSession(ctx context.Context, session *domain.CheckoutSessionRecord) error
	GetCheckoutSession(ctx context.Context, sessionID string) (*domain.CheckoutSessionRecord, error)
	CompleteCheckoutSession(ctx context.Context, sessionID string, subscriptionID string, paymentIntentID string) error

	RecordAddonPurchase(ctx context.Context, uid string, record *domain.AddonRecord) error
	FulfillAddon(ctx context.Context, uid string, recordID string, addonID string) error
}
