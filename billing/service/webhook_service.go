package service

import (
	"github.com/pennihq/console-api/billing/dal"
	"github.com/pennihq/console-api/framework/connection"
	"github.com/pennihq/console-api/logger"
)

// BillingWebhookService ingests Stripe webhook deliveries and folds
// them into the local billing state.
type BillingWebhookService struct {
	loggerProvider logger.Provider
	*connection.Connection
	stripeClient  *Client
	billingDAL    dal.IBillingFirestore
	reconciler    *SubscriptionReconciler
	notifier      EntitlementNotifier
	prices        PriceTable
	subscriptions subscriptionAPI
}

func NewBillingWebhookService(loggerProvider logger.Provider, conn *connection.Connection) (*BillingWebhookService, error) {
	stripeClient, err := GetStripeClient()
	if err != nil {
		return nil, err
	}

	billingDAL := dal.NewBillingFirestoreWithClient(conn.Firestore)
	notifier := NewEntitlementPublisher(loggerProvider, conn)
	prices := NewPriceTableFromEnv()

	return &BillingWebhookService{
		loggerProvider: loggerProvider,
		Connection:     conn,
		stripeClient:   stripeClient,
		billingDAL:     billingDAL,
		reconciler:     NewSubscriptionReconciler(loggerProvider, billingDAL, notifier, prices),
		notifier:       notifier,
		prices:         prices,
		subscriptions:  stripeClient.Subscriptions,
	}, nil
}
