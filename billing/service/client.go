package service

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/stripe/stripe-go/v74/client"

	"github.com/pennihq/console-api/secretmanager"
)

type Client struct {
	*client.API
	webhookSignKey string
}

type stripeSecret struct {
	APIKey         string `json:"api_key"`
	WebhookSignKey string `json:"webhook_sign_key"`
}

var (
	stripeClientOnce sync.Once
	stripeClient     *Client
	stripeClientErr  error
)

// GetStripeClient returns the process-wide Stripe client, initialized on
// first use so cold paths never pay the secret fetch.
func GetStripeClient() (*Client, error) {
	stripeClientOnce.Do(func() {
		stripeClient, stripeClientErr = newStripeClient()
	})

	return stripeClient, stripeClientErr
}

func newStripeClient() (*Client, error) {
	ctx := context.Background()

	secret, err := getStripeSecret(ctx)
	if err != nil {
		return nil, err
	}

	var api client.API

	api.Init(secret.APIKey, nil)

	return &Client{
		&api,
		secret.WebhookSignKey,
	}, nil
}

func getStripeSecret(ctx context.Context) (stripeSecret, error) {
	// Local development runs against a restricted test key without
	// secret manager access.
	if apiKey := os.Getenv("STRIPE_API_KEY"); apiKey != "" {
		return stripeSecret{
			APIKey:         apiKey,
			WebhookSignKey: os.Getenv("STRIPE_WEBHOOK_SIGN_KEY"),
		}, nil
	}

	data, err := secretmanager.AccessSecretLatestVersion(ctx, secretmanager.SecretStripe)
	if err != nil {
		return stripeSecret{}, err
	}

	var secret stripeSecret

	if err := json.Unmarshal(data, &secret); err != nil {
		return stripeSecret{}, err
	}

	return secret, nil
}
