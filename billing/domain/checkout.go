package domain

import (
	"time"
)

// CheckoutSessionStatus is the lifecycle of a checkout session record.
type CheckoutSessionStatus string

const (
	CheckoutSessionPending   CheckoutSessionStatus = "pending"
	CheckoutSessionCompleted CheckoutSessionStatus = "completed"
)

// CheckoutSessionRecord joins the synchronous checkout path with the
// asynchronous webhook path. Created pending by the orchestrator,
// completed by the dispatcher.
type CheckoutSessionRecord struct {
	ID               string                `firestore:"id" json:"id"`
	FirebaseUID      string                `firestore:"firebaseUid" json:"firebaseUid"`
	Plan             PlanKey               `firestore:"plan" json:"plan"`
	Mode             string                `firestore:"mode" json:"mode"`
	StripeCustomerID string                `firestore:"stripeCustomerId" json:"stripeCustomerId"`
	Status           CheckoutSessionStatus `firestore:"status" json:"status"`
	CreatedAt        time.Time             `firestore:"createdAt" json:"createdAt"`
	CompletedAt      time.Time             `firestore:"completedAt,omitempty" json:"completedAt,omitempty"`
	SubscriptionID   string                `firestore:"subscriptionId" json:"subscriptionId"`
	PaymentIntentID  string                `firestore:"paymentIntentId" json:"paymentIntentId"`
}
