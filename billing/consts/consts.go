package consts

// Firestore collections and fields used by the billing integration.
const (
	UsersCollection               = "users"
	SubscriptionsCollection       = "subscriptions"
	SubscriptionHistoryCollection = "subscriptionHistory"
	InvoicesCollection            = "invoices"
	AddonsCollection              = "addons"
	WebhookEventsCollection       = "webhookEvents"
	CheckoutSessionsCollection    = "checkoutSessions"
	StripeCustomersCollection     = "stripeCustomers"

	FieldStripeCustomerID    = "stripeCustomerId"
	FieldCurrentPlan         = "currentPlan"
	FieldFeatureCapabilities = "feature_capabilities"
	FieldAddons              = "addons"
	FieldTrialWillEnd        = "trialWillEnd"
	FieldStatus              = "status"
	FieldNotes               = "notes"
	FieldProcessedAt         = "processedAt"
	FieldCompletedAt         = "completedAt"
	FieldSubscriptionID      = "subscriptionId"
	FieldPaymentIntentID     = "paymentIntentId"
	FieldFulfilledAt         = "fulfilledAt"
	FieldUpdatedAt           = "updatedAt"
	FieldRefreshDate         = "refreshDate"
)

// Stripe event types routed by the dispatcher.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventSubscriptionCreated      = "customer.subscription.created"
	EventSubscriptionUpdated      = "customer.subscription.updated"
	EventSubscriptionDeleted      = "customer.subscription.deleted"
	EventSubscriptionTrialWillEnd = "customer.subscription.trial_will_end"
	EventInvoicePaid              = "invoice.paid"
	EventInvoicePaymentFailed     = "invoice.payment_failed"
	EventPaymentIntentSucceeded   = "payment_intent.succeeded"
	EventPaymentIntentFailed      = "payment_intent.payment_failed"
)

// Stripe metadata keys stamped on customers, sessions and subscriptions.
const (
	MetadataFirebaseUID = "firebase_uid"
	MetadataPlan        = "plan"
	MetadataAddon       = "addon"
)

// AddonEventAccess is the addon flag granted by an event-ticket purchase.
const AddonEventAccess = "eventAccess"
