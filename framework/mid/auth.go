package mid

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pennihq/console-api/common"
	fb "github.com/pennihq/console-api/firebase"
	"github.com/pennihq/console-api/framework/connection"
	"github.com/pennihq/console-api/framework/web"
	"github.com/pennihq/console-api/logger"
)

const (
	dayDuration                  = 24 * time.Hour
	MaxValidRefreshTokenDuration = 2 * dayDuration
)

// Auth errors
var (
	ErrForbidden    = errors.New("forbidden operation")
	ErrUnauthorized = errors.New("unauthorized operation")
)

// AuthRequired middleware that auth requests coming from client app
func AuthRequired(conn *connection.Connection) web.Middleware {
	f := func(handler web.Handler) web.Handler {
		h := func(ctx *gin.Context) error {
			l := logger.FromContext(ctx)

			token, authTime, err := fb.VerifyIDToken(ctx)
			if err != nil {
				return web.NewRequestError(err, http.StatusUnauthorized)
			}

			claims := token.Claims

			ctx.Set(common.CtxKeys.Claims, claims)
			ctx.Set(common.CtxKeys.UID, token.UID)

			// If it's been too long since the user last logged in, check if token is revoked
			if time.Since(*authTime) > MaxValidRefreshTokenDuration {
				if err := fb.VerifyIDTokenAndCheckRevoked(ctx); err != nil {
					return web.NewRequestError(err, http.StatusUnauthorized)
				}
			}

			// Set email in context
			email, ok := claims["email"]
			if !ok {
				return web.NewRequestError(ErrUnauthorized, http.StatusUnauthorized)
			}

			emailStr := email.(string)
			ctx.Set(common.CtxKeys.Email, strings.ToLower(emailStr))

			l.SetLabels(map[string]string{
				"email":         emailStr,
				logger.LabelUID: token.UID,
			})

			conn.FirestoreWithContext(ctx)

			return handler(ctx)
		}

		return h
	}

	return f
}
