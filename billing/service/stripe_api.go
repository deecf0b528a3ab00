package service

import (
	"github.com/stripe/stripe-go/v74"
)

// Narrow views of the stripe-go clients the services call. The
// concrete client.API satisfies all of them; tests substitute stubs.

type subscriptionAPI interface {
	Get(id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error)
	Update(id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error)
}

type checkoutSessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type customerAPI interface {
	New(params *stripe.CustomerParams) (*stripe.Customer, error)
}

type invoiceAPI interface {
	Upcoming(params *stripe.InvoiceUpcomingParams) (*stripe.Invoice, error)
}
