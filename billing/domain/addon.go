package domain

import (
	"time"
)

// AddonStatus transitions purchased -> fulfilled only, never regresses.
type AddonStatus string

const (
	AddonPurchased AddonStatus = "purchased"
	AddonFulfilled AddonStatus = "fulfilled"
)

// AddonRecord is one one-time purchase, keyed by payment-intent id (or
// checkout-session id before the intent exists).
type AddonRecord struct {
	AddonID          string      `firestore:"addonId" json:"addonId"`
	Status           AddonStatus `firestore:"status" json:"status"`
	StripeCustomerID string      `firestore:"stripeCustomerId" json:"stripeCustomerId"`
	PaymentIntentID  string      `firestore:"paymentIntentId" json:"paymentIntentId"`
	InvoiceID        string      `firestore:"invoiceId" json:"invoiceId"`
	PriceID          string      `firestore:"priceId" json:"priceId"`
	ProductID        string      `firestore:"productId" json:"productId"`
	PurchasedAt      time.Time   `firestore:"purchasedAt" json:"purchasedAt"`
	FulfilledAt      time.Time   `firestore:"fulfilledAt,omitempty" json:"fulfilledAt,omitempty"`
	UpdatedAt        time.Time   `firestore:"updatedAt" json:"updatedAt"`
}
