package domain

import (
	"time"
)

// SubscriptionLineItem is one price line of a subscription.
type SubscriptionLineItem struct {
	PriceID  string `firestore:"priceId" json:"priceId"`
	Quantity int64  `firestore:"quantity" json:"quantity"`
	Nickname string `firestore:"nickname" json:"nickname"`
}

// SubscriptionSnapshot is the canonical local copy of a provider
// subscription, always recomputed in full from the provider object.
type SubscriptionSnapshot struct {
	ID                 string                 `firestore:"id" json:"id"`
	StripeCustomerID   string                 `firestore:"stripeCustomerId" json:"stripeCustomerId"`
	PlanKey            PlanKey                `firestore:"planKey" json:"planKey"`
	PriceID            string                 `firestore:"priceId" json:"priceId"`
	ProductID          string                 `firestore:"productId" json:"productId"`
	Status             string                 `firestore:"status" json:"status"`
	CurrentPeriodStart int64                  `firestore:"currentPeriodStart" json:"currentPeriodStart"`
	CurrentPeriodEnd   int64                  `firestore:"currentPeriodEnd" json:"currentPeriodEnd"`
	TrialStart         int64                  `firestore:"trialStart" json:"trialStart"`
	TrialEnd           int64                  `firestore:"trialEnd" json:"trialEnd"`
	CancelAtPeriodEnd  bool                   `firestore:"cancelAtPeriodEnd" json:"cancelAtPeriodEnd"`
	CancelAt           int64                  `firestore:"cancelAt" json:"cancelAt"`
	CanceledAt         int64                  `firestore:"canceledAt" json:"canceledAt"`
	LatestInvoiceID    string                 `firestore:"latestInvoiceId" json:"latestInvoiceId"`
	Items              []SubscriptionLineItem `firestore:"items" json:"items"`
	Source             string                 `firestore:"source" json:"source"`
	UpdatedAt          time.Time              `firestore:"updatedAt" json:"updatedAt"`
}

// CurrentPlan is the user's current-plan pointer embedded on the user
// document.
type CurrentPlan struct {
	PlanKey           PlanKey   `firestore:"planKey" json:"planKey"`
	SubscriptionID    string    `firestore:"subscriptionId" json:"subscriptionId"`
	PriceID           string    `firestore:"priceId" json:"priceId"`
	Status            string    `firestore:"status" json:"status"`
	CurrentPeriodEnd  int64     `firestore:"currentPeriodEnd" json:"currentPeriodEnd"`
	TrialEnd          int64     `firestore:"trialEnd" json:"trialEnd"`
	CancelAtPeriodEnd bool      `firestore:"cancelAtPeriodEnd" json:"cancelAtPeriodEnd"`
	RefreshDate       time.Time `firestore:"refreshDate" json:"refreshDate"`
}

// SubscriptionHistoryRecord is the append-only audit trail entry, one
// per (subscriptionId, timestamp). Write-once.
type SubscriptionHistoryRecord struct {
	SubscriptionID string    `firestore:"subscriptionId" json:"subscriptionId"`
	Status         string    `firestore:"status" json:"status"`
	PlanKey        PlanKey   `firestore:"planKey" json:"planKey"`
	Source         string    `firestore:"source" json:"source"`
	RecordedAt     time.Time `firestore:"recordedAt" json:"recordedAt"`
}

// UserBillingState is the billing slice of the user root document.
type UserBillingState struct {
	StripeCustomerID    string              `firestore:"stripeCustomerId" json:"stripeCustomerId"`
	CurrentPlan         CurrentPlan         `firestore:"currentPlan" json:"currentPlan"`
	FeatureCapabilities FeatureCapabilities `firestore:"feature_capabilities" json:"feature_capabilities"`
	Addons              map[string]bool     `firestore:"addons" json:"addons"`
}
