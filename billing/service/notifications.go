package service

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/pubsub"

	"github.com/pennihq/console-api/billing/domain"
	"github.com/pennihq/console-api/framework/connection"
	"github.com/pennihq/console-api/logger"
)

const entitlementTopic = "entitlement-updates"

// EntitlementNotifier tells downstream services that a user's
// entitlements changed.
type EntitlementNotifier interface {
	PublishUpdate(ctx context.Context, uid string, plan domain.PlanKey, source string)
}

// EntitlementUpdate is the message other services consume to refresh
// cached entitlements.
type EntitlementUpdate struct {
	UID       string         `json:"uid"`
	PlanKey   domain.PlanKey `json:"planKey"`
	Source    string         `json:"source"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// EntitlementPublisher posts entitlement changes to Pub/Sub after the
// Firestore commit. Publishing is best effort; consumers reconcile from
// Firestore, so a lost message is an acceptable delay, not data loss.
type EntitlementPublisher struct {
	loggerProvider logger.Provider
	conn           *connection.Connection
}

func NewEntitlementPublisher(loggerProvider logger.Provider, conn *connection.Connection) *EntitlementPublisher {
	return &EntitlementPublisher{
		loggerProvider: loggerProvider,
		conn:           conn,
	}
}

// PublishUpdate posts one entitlement change. Errors are logged and
// swallowed so webhook processing never fails on the notification leg.
func (p *EntitlementPublisher) PublishUpdate(ctx context.Context, uid string, plan domain.PlanKey, source string) {
	l := p.loggerProvider(ctx)

	data, err := json.Marshal(EntitlementUpdate{
		UID:       uid,
		PlanKey:   plan,
		Source:    source,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		l.Errorf("marshaling entitlement update for user %s: %s", uid, err)
		return
	}

	topic := p.conn.Pubsub(ctx).Topic(entitlementTopic)

	if _, err := topic.Publish(ctx, &pubsub.Message{Data: data}).Get(ctx); err != nil {
		l.Errorf("publishing entitlement update for user %s: %s", uid, err)
	}
}
