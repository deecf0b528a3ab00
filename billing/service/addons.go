package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pennihq/console-api/billing/consts"
	"github.com/pennihq/console-api/billing/dal"
	"github.com/pennihq/console-api/billing/domain"
)

// addonFromMetadata maps checkout metadata to the addon being bought.
// The event plan sells as a one-time addon purchase.
func (s *BillingWebhookService) addonFromMetadata(metadata map[string]string) string {
	if addonID := metadata[consts.MetadataAddon]; addonID != "" {
		return addonID
	}

	if metadata[consts.MetadataPlan] == string(domain.PlanEvent) {
		return consts.AddonEventAccess
	}

	return ""
}

// newAddonRecord assembles the purchase record from what the event
// payload carries. recordID is the payment intent id, or the checkout
// session id before an intent exists.
func (s *BillingWebhookService) newAddonRecord(addonID, custID, recordID, invoiceID string) *domain.AddonRecord {
	priceID, productID := s.prices.AddonPricing(addonID)

	return &domain.AddonRecord{
		AddonID:          addonID,
		StripeCustomerID: custID,
		PaymentIntentID:  recordID,
		InvoiceID:        invoiceID,
		PriceID:          priceID,
		ProductID:        productID,
	}
}

// fulfillAddonPurchase grants the addon, creating the purchase record
// on the fly when the purchase arrived without one, such as dashboard
// payment links. Fulfillment is idempotent across redeliveries.
func (s *BillingWebhookService) fulfillAddonPurchase(ctx context.Context, uid string, record *domain.AddonRecord) error {
	err := s.billingDAL.FulfillAddon(ctx, uid, record.PaymentIntentID, record.AddonID)
	if err == nil {
		return nil
	}

	if !errors.Is(err, dal.ErrAddonRecordMissing) {
		return fmt.Errorf("fulfilling addon %s for user %s: %w", record.AddonID, uid, err)
	}

	if err := s.billingDAL.RecordAddonPurchase(ctx, uid, record); err != nil {
		return fmt.Errorf("recording addon %s purchase for user %s: %w", record.AddonID, uid, err)
	}

	if err := s.billingDAL.FulfillAddon(ctx, uid, record.PaymentIntentID, record.AddonID); err != nil {
		return fmt.Errorf("fulfilling addon %s for user %s: %w", record.AddonID, uid, err)
	}

	return nil
}
