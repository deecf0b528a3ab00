package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v74"

	"github.com/pennihq/console-api/billing/domain"
	"github.com/pennihq/console-api/billing/service"
	"github.com/pennihq/console-api/common"
	"github.com/pennihq/console-api/framework/web"
)

// CreateCheckoutSessionHandler starts a paid-plan purchase for the
// authenticated user.
func (h *Billing) CreateCheckoutSessionHandler(ctx *gin.Context) error {
	uid := ctx.GetString(common.CtxKeys.UID)
	if uid == "" {
		return web.NewRequestError(web.ErrUnauthorized, http.StatusUnauthorized)
	}

	email := ctx.GetString(common.CtxKeys.Email)

	var req service.CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return web.NewRequestError(web.ErrBadRequest, http.StatusBadRequest)
	}

	resp, err := h.service.StartCheckout(ctx, uid, email, req)
	if err != nil {
		return translateBillingError(err)
	}

	return web.Respond(ctx, resp, http.StatusOK)
}

// UpgradeHandler switches an existing subscriber between paid plans,
// optionally previewing the proration invoice first.
func (h *Billing) UpgradeHandler(ctx *gin.Context) error {
	uid := ctx.GetString(common.CtxKeys.UID)
	if uid == "" {
		return web.NewRequestError(web.ErrUnauthorized, http.StatusUnauthorized)
	}

	var req service.PlanChangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return web.NewRequestError(web.ErrBadRequest, http.StatusBadRequest)
	}

	resp, err := h.service.ChangePlan(ctx, uid, req)
	if err != nil {
		return translateBillingError(err)
	}

	return web.Respond(ctx, resp, http.StatusOK)
}

// SetFreePlanHandler cancels the user's paid plan.
func (h *Billing) SetFreePlanHandler(ctx *gin.Context) error {
	uid := ctx.GetString(common.CtxKeys.UID)
	if uid == "" {
		return web.NewRequestError(web.ErrUnauthorized, http.StatusUnauthorized)
	}

	if err := h.service.CancelPlan(ctx, uid); err != nil {
		return translateBillingError(err)
	}

	return web.Respond(ctx, map[string]bool{"ok": true}, http.StatusOK)
}

func translateBillingError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidPlan):
		return web.NewRequestError(err, http.StatusBadRequest)
	case errors.Is(err, service.ErrSamePlan):
		return web.NewRequestError(err, http.StatusConflict)
	case errors.Is(err, service.ErrSubscriptionMissing):
		return web.NewRequestError(err, http.StatusBadRequest)
	case errors.Is(err, domain.ErrUserNotFound):
		return web.NewRequestError(err, http.StatusNotFound)
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode >= 400 && stripeErr.HTTPStatusCode < 500 {
		return web.NewRequestError(err, stripeErr.HTTPStatusCode)
	}

	return web.NewRequestError(err, http.StatusInternalServerError)
}
