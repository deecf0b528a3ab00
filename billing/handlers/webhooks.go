package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pennihq/console-api/billing/service"
	"github.com/pennihq/console-api/framework/web"
)

// WebhookHandler handles events from stripe. Signature failures are the
// only 400s; processing errors return 500 so Stripe redelivers, and
// everything else acknowledges with 200.
func (h *Billing) WebhookHandler(ctx *gin.Context) error {
	l := h.loggerProvider(ctx)

	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		return web.NewRequestError(web.ErrBadRequest, http.StatusBadRequest)
	}

	signature := ctx.Request.Header.Get("Stripe-Signature")
	if signature == "" {
		return web.NewRequestError(web.ErrBadRequest, http.StatusBadRequest)
	}

	apiVersion := ctx.Query("api_version")

	outcome, err := h.webhookService.HandleEvent(ctx, body, signature, apiVersion)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSignature) {
			return web.NewRequestError(err, http.StatusBadRequest)
		}

		return web.NewRequestError(err, http.StatusInternalServerError)
	}

	l.Infof("webhook delivery finished as %s: %s", outcome.Status, outcome.Notes)

	return web.Respond(ctx, map[string]bool{"received": true}, http.StatusOK)
}
