package api

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	billingHandlers "github.com/pennihq/console-api/billing/handlers"
	"github.com/pennihq/console-api/framework/connection"
	"github.com/pennihq/console-api/framework/mid"
	"github.com/pennihq/console-api/framework/web"
	"github.com/pennihq/console-api/logger"
)

// API constructs an api with the needed functionality.
type API struct {
	shutdown chan os.Signal
	log      *logger.Logging
	conn     *connection.Connection
}

func NewAPI(shutdown chan os.Signal, logging *logger.Logging, conn *connection.Connection) *API {
	return &API{
		shutdown,
		logging,
		conn,
	}
}

// Build builds the api endpoints with the needed middlewares, and returns http.Handler interface.
func (a *API) Build() http.Handler {
	loggerProvider := logger.FromContext

	// Construct the web.App which holds all routes as well as common Middleware.
	app := web.NewApp(a.shutdown, a.conn, mid.Logger(), mid.Errors(), mid.Panics())

	billing := billingHandlers.NewBilling(loggerProvider, a.conn)

	app.Get("/health", healthHandler)

	// Stripe calls this endpoint directly; authentication is the
	// signature check inside the handler.
	app.Post("/webhooks/stripe", billing.WebhookHandler)

	billingGroup := web.NewGroup(app, "/api/billing", mid.AuthRequired(a.conn))

	billingGroup.Post("/checkout", billing.CreateCheckoutSessionHandler)
	billingGroup.Post("/upgrade", billing.UpgradeHandler)
	billingGroup.Post("/plan/free", billing.SetFreePlanHandler)

	return app
}

func healthHandler(ctx *gin.Context) error {
	return web.Respond(ctx, map[string]string{"status": "ok"}, http.StatusOK)
}
