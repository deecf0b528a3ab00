package dal

import (
	"context"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"

	"github.com/pennihq/console-api/framework/connection"
)

func TestNewBillingFirestoreWithClient(t *testing.T) {
	var fun connection.FirestoreFromContextFun = func(ctx context.Context) *firestore.Client {
		return nil
	}

	d := NewBillingFirestoreWithClient(fun)

	assert.NotNil(t, d)
	assert.NotNil(t, d.firestoreClientFun)
}
