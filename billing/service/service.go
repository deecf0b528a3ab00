package service

import (
	"github.com/pennihq/console-api/billing/dal"
	"github.com/pennihq/console-api/framework/connection"
	"github.com/pennihq/console-api/logger"
)

// BillingService serves the interactive billing surface: checkout,
// plan changes and the free-plan downgrade.
type BillingService struct {
	loggerProvider logger.Provider
	*connection.Connection
	billingDAL       dal.IBillingFirestore
	notifier         EntitlementNotifier
	prices           PriceTable
	subscriptions    subscriptionAPI
	checkoutSessions checkoutSessionAPI
	customers        customerAPI
	invoices         invoiceAPI
}

func NewBillingService(loggerProvider logger.Provider, conn *connection.Connection) (*BillingService, error) {
	stripeClient, err := GetStripeClient()
	if err != nil {
		return nil, err
	}

	return &BillingService{
		loggerProvider:   loggerProvider,
		Connection:       conn,
		billingDAL:       dal.NewBillingFirestoreWithClient(conn.Firestore),
		notifier:         NewEntitlementPublisher(loggerProvider, conn),
		prices:           NewPriceTableFromEnv(),
		subscriptions:    stripeClient.Subscriptions,
		checkoutSessions: stripeClient.CheckoutSessions,
		customers:        stripeClient.Customers,
		invoices:         stripeClient.Invoices,
	}, nil
}
