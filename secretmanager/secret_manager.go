package secretmanager

import (
	"context"
	"fmt"
	"sync"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"

	"github.com/pennihq/console-api/common"
)

type SecretName string

// List of configured secrets in Secret Manager
const (
	SecretStripe SecretName = "stripe"
)

var (
	mu    sync.Mutex
	cache = make(map[SecretName][]byte)
)

// AccessSecretLatestVersion returns the payload of the latest version of the
// given secret. Payloads are cached for the lifetime of the process.
func AccessSecretLatestVersion(ctx context.Context, name SecretName) ([]byte, error) {
	mu.Lock()
	defer mu.Unlock()

	if data, ok := cache[name]; ok {
		return data, nil
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	req := &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", common.ProjectID, name),
	}

	result, err := client.AccessSecretVersion(ctx, req)
	if err != nil {
		return nil, err
	}

	cache[name] = result.Payload.Data

	return result.Payload.Data, nil
}
