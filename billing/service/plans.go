package service

import (
	"github.com/pennihq/console-api/billing/consts"
	"github.com/pennihq/console-api/billing/domain"
	"github.com/pennihq/console-api/common"
)

// PriceTable maps the purchasable plans to their Stripe price ids. Price
// ids differ per Stripe account, so they come from the environment with
// test-mode defaults.
type PriceTable struct {
	starter      string
	growth       string
	event        string
	eventProduct string
}

func NewPriceTableFromEnv() PriceTable {
	return PriceTable{
		starter:      common.GetEnv("STRIPE_PRICE_STARTER", "price_starter_monthly_test"),
		growth:       common.GetEnv("STRIPE_PRICE_GROWTH", "price_growth_monthly_test"),
		event:        common.GetEnv("STRIPE_PRICE_EVENT", "price_event_pass_test"),
		eventProduct: common.GetEnv("STRIPE_PRODUCT_EVENT", "prod_event_pass_test"),
	}
}

// PriceIDForPlan returns the Stripe price id selling the given plan.
func (t PriceTable) PriceIDForPlan(plan domain.PlanKey) (string, error) {
	switch plan {
	case domain.PlanStarter:
		return t.starter, nil
	case domain.PlanGrowth:
		return t.growth, nil
	case domain.PlanEvent:
		return t.event, nil
	default:
		return "", domain.ErrInvalidPlan
	}
}

// PlanForPriceID reverse-maps a Stripe price id to a plan key.
func (t PriceTable) PlanForPriceID(priceID string) (domain.PlanKey, bool) {
	switch priceID {
	case t.starter:
		return domain.PlanStarter, true
	case t.growth:
		return domain.PlanGrowth, true
	case t.event:
		return domain.PlanEvent, true
	default:
		return "", false
	}
}

// AddonPricing returns the price and product selling a one-time addon.
func (t PriceTable) AddonPricing(addonID string) (priceID, productID string) {
	if addonID == consts.AddonEventAccess {
		return t.event, t.eventProduct
	}

	return "", ""
}

// ResolvePlanKey determines the plan of a provider subscription. The
// plan tag we stamp on subscription metadata wins; the price reverse
// lookup is the fallback for subscriptions created outside checkout.
// Returns the empty key when neither resolves; callers must not apply
// an unresolvable subscription.
func (t PriceTable) ResolvePlanKey(metadata map[string]string, priceID string) domain.PlanKey {
	if tagged, ok := metadata[consts.MetadataPlan]; ok {
		if plan, ok := domain.ParsePlanKey(tagged); ok {
			return plan
		}
	}

	if plan, ok := t.PlanForPriceID(priceID); ok {
		return plan
	}

	return ""
}
