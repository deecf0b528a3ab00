package service

import (
	"context"

	"github.com/stripe/stripe-go/v74"

	"github.com/pennihq/console-api/billing/domain"
	"github.com/pennihq/console-api/logger"
)

type testLogger struct {
	logger.ILogger
}

func (testLogger) Infof(format string, v ...interface{})    {}
func (testLogger) Warningf(format string, v ...interface{}) {}
func (testLogger) Errorf(format string, v ...interface{})   {}
func (testLogger) SetLabel(key, value string)               {}
func (testLogger) SetLabels(labels map[string]string)       {}

func testLoggerProvider(ctx context.Context) logger.ILogger {
	return testLogger{}
}

type publishedUpdate struct {
	uid    string
	plan   domain.PlanKey
	source string
}

type testNotifier struct {
	updates []publishedUpdate
}

func (n *testNotifier) PublishUpdate(ctx context.Context, uid string, plan domain.PlanKey, source string) {
	n.updates = append(n.updates, publishedUpdate{uid: uid, plan: plan, source: source})
}

func testPriceTable() PriceTable {
	return PriceTable{
		starter:      "price_starter",
		growth:       "price_growth",
		event:        "price_event",
		eventProduct: "prod_event",
	}
}

type stubSubscriptionAPI struct {
	sub       *stripe.Subscription
	getErr    error
	updated   *stripe.Subscription
	updateErr error

	getCalls    []string
	updateCalls []*stripe.SubscriptionParams
}

func (a *stubSubscriptionAPI) Get(id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	a.getCalls = append(a.getCalls, id)

	if a.getErr != nil {
		return nil, a.getErr
	}

	return a.sub, nil
}

func (a *stubSubscriptionAPI) Update(id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	a.updateCalls = append(a.updateCalls, params)

	if a.updateErr != nil {
		return nil, a.updateErr
	}

	if a.updated != nil {
		return a.updated, nil
	}

	return a.sub, nil
}

type stubCheckoutSessionAPI struct {
	session *stripe.CheckoutSession
	err     error
	params  []*stripe.CheckoutSessionParams
}

func (a *stubCheckoutSessionAPI) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	a.params = append(a.params, params)
	return a.session, a.err
}

type stubCustomerAPI struct {
	customer *stripe.Customer
	err      error
}

func (a *stubCustomerAPI) New(params *stripe.CustomerParams) (*stripe.Customer, error) {
	return a.customer, a.err
}

type stubInvoiceAPI struct {
	invoice *stripe.Invoice
	err     error
	params  []*stripe.InvoiceUpcomingParams
}

func (a *stubInvoiceAPI) Upcoming(params *stripe.InvoiceUpcomingParams) (*stripe.Invoice, error) {
	a.params = append(a.params, params)
	return a.invoice, a.err
}
