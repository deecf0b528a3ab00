package handlers

import (
	"github.com/pennihq/console-api/billing/service"
	"github.com/pennihq/console-api/framework/connection"
	"github.com/pennihq/console-api/logger"
)

type Billing struct {
	loggerProvider logger.Provider
	service        *service.BillingService
	webhookService *service.BillingWebhookService
}

// NewBilling creates new billing package handlers
func NewBilling(loggerProvider logger.Provider, conn *connection.Connection) *Billing {
	billingService, err := service.NewBillingService(loggerProvider, conn)
	if err != nil {
		panic(err)
	}

	webhookService, err := service.NewBillingWebhookService(loggerProvider, conn)
	if err != nil {
		panic(err)
	}

	return &Billing{
		loggerProvider,
		billingService,
		webhookService,
	}
}
