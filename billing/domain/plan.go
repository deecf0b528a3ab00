package domain

import (
	"time"
)

// PlanKey identifies a purchasable plan. The event plan is a one-time
// add-on purchase, not a recurring subscription, but shares the
// entitlement bundle shape.
type PlanKey string

const (
	PlanFree    PlanKey = "free"
	PlanStarter PlanKey = "starter"
	PlanGrowth  PlanKey = "growth"
	PlanEvent   PlanKey = "event"
)

// ParsePlanKey returns the plan key matching s, or false when s is not a
// known plan.
func ParsePlanKey(s string) (PlanKey, bool) {
	switch PlanKey(s) {
	case PlanFree, PlanStarter, PlanGrowth, PlanEvent:
		return PlanKey(s), true
	default:
		return "", false
	}
}

// IsRecurring reports whether the plan is billed as a recurring
// subscription.
func (p PlanKey) IsRecurring() bool {
	return p == PlanStarter || p == PlanGrowth
}

// Ordinal ranks recurring plans for upgrade/downgrade classification.
// Non-recurring plans rank zero.
func (p PlanKey) Ordinal() int {
	switch p {
	case PlanStarter:
		return 1
	case PlanGrowth:
		return 2
	default:
		return 0
	}
}

// ChangeType classifies a plan switch.
type ChangeType string

const (
	ChangeTypeUpgrade   ChangeType = "upgrade"
	ChangeTypeDowngrade ChangeType = "downgrade"
	ChangeTypeNone      ChangeType = "none"
)

// ChangeTypeFor classifies switching from the current plan to the next
// one by the static plan ordinals.
func ChangeTypeFor(current, next PlanKey) ChangeType {
	switch {
	case next.Ordinal() > current.Ordinal():
		return ChangeTypeUpgrade
	case next.Ordinal() < current.Ordinal():
		return ChangeTypeDowngrade
	default:
		return ChangeTypeNone
	}
}

// FeatureCapabilities is the entitlement bundle derived from a plan key.
// It is always written as a whole, never merged field by field.
type FeatureCapabilities struct {
	PlanKey                  PlanKey   `firestore:"planKey" json:"planKey"`
	OutreachEnabled          bool      `firestore:"outreachEnabled" json:"outreachEnabled"`
	SearchEnabled            bool      `firestore:"searchEnabled" json:"searchEnabled"`
	CSVExportEnabled         bool      `firestore:"csvExportEnabled" json:"csvExportEnabled"`
	ConnectedInboxes         int       `firestore:"connectedInboxes" json:"connectedInboxes"`
	MaxActiveCampaigns       int       `firestore:"maxActiveCampaigns" json:"maxActiveCampaigns"`
	MaxSearchResultsPerQuery int       `firestore:"maxSearchResultsPerQuery" json:"maxSearchResultsPerQuery"`
	MonthlyOutreachEmailCap  int       `firestore:"monthlyOutreachEmailCap" json:"monthlyOutreachEmailCap"`
	UpdatedAt                time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// BuildFeatureCapabilities projects a plan key onto its complete
// entitlement bundle. Total over the plan enum; unknown keys project to
// the free bundle so downstream writes never merge stale fields.
// UpdatedAt is stamped at write time, keeping the projection
// deterministic.
func BuildFeatureCapabilities(plan PlanKey) FeatureCapabilities {
	caps := FeatureCapabilities{
		PlanKey:                  PlanFree,
		SearchEnabled:            true,
		MaxActiveCampaigns:       1,
		MaxSearchResultsPerQuery: 10,
	}

	switch plan {
	case PlanStarter:
		caps.PlanKey = PlanStarter
		caps.OutreachEnabled = true
		caps.ConnectedInboxes = 1
		caps.MaxActiveCampaigns = 3
		caps.MaxSearchResultsPerQuery = 25
		caps.MonthlyOutreachEmailCap = 500
	case PlanGrowth:
		caps.PlanKey = PlanGrowth
		caps.OutreachEnabled = true
		caps.CSVExportEnabled = true
		caps.ConnectedInboxes = 3
		caps.MaxActiveCampaigns = 10
		caps.MaxSearchResultsPerQuery = 50
		caps.MonthlyOutreachEmailCap = 2000
	case PlanEvent:
		caps.PlanKey = PlanEvent
		caps.CSVExportEnabled = true
		caps.MaxSearchResultsPerQuery = 25
	}

	return caps
}
