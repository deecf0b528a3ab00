package firebase

import (
	"errors"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

var (
	ErrNoAuthorizationHeader = errors.New("no authorization header")
	ErrInvalidBearerToken    = errors.New("invalid authorization header format, expected Bearer <token>")
)

// bearerToken extracts the bearer token from the request authorization header.
func bearerToken(ctx *gin.Context) (string, error) {
	authHeader := ctx.Request.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrNoAuthorizationHeader
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", ErrInvalidBearerToken
	}

	return parts[1], nil
}

// VerifyIDToken verifies the firebase ID token of the request, returning the
// decoded token and the time the user authenticated.
func VerifyIDToken(ctx *gin.Context) (*auth.Token, *time.Time, error) {
	idToken, err := bearerToken(ctx)
	if err != nil {
		return nil, nil, err
	}

	client, err := App.Auth(ctx)
	if err != nil {
		return nil, nil, err
	}

	token, err := client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, nil, err
	}

	authTime := time.Unix(token.AuthTime, 0)

	return token, &authTime, nil
}

// VerifyIDTokenAndCheckRevoked verifies the request ID token and checks it was
// not revoked.
func VerifyIDTokenAndCheckRevoked(ctx *gin.Context) error {
	idToken, err := bearerToken(ctx)
	if err != nil {
		return err
	}

	client, err := App.Auth(ctx)
	if err != nil {
		return err
	}

	if _, err := client.VerifyIDTokenAndCheckRevoked(ctx, idToken); err != nil {
		return err
	}

	return nil
}
