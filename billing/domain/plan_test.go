package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePlanKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want PlanKey
		ok   bool
	}{
		{
			name: "free plan",
			in:   "free",
			want: PlanFree,
			ok:   true,
		},
		{
			name: "starter plan",
			in:   "starter",
			want: PlanStarter,
			ok:   true,
		},
		{
			name: "growth plan",
			in:   "growth",
			want: PlanGrowth,
			ok:   true,
		},
		{
			name: "event plan",
			in:   "event",
			want: PlanEvent,
			ok:   true,
		},
		{
			name: "unknown plan",
			in:   "enterprise",
			ok:   false,
		},
		{
			name: "empty string",
			in:   "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePlanKey(tt.in)
			assert.Equal(t, tt.ok, ok)

			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestChangeTypeFor(t *testing.T) {
	tests := []struct {
		name    string
		current PlanKey
		next    PlanKey
		want    ChangeType
	}{
		{
			name:    "starter to growth is an upgrade",
			current: PlanStarter,
			next:    PlanGrowth,
			want:    ChangeTypeUpgrade,
		},
		{
			name:    "growth to starter is a downgrade",
			current: PlanGrowth,
			next:    PlanStarter,
			want:    ChangeTypeDowngrade,
		},
		{
			name:    "free to starter is an upgrade",
			current: PlanFree,
			next:    PlanStarter,
			want:    ChangeTypeUpgrade,
		},
		{
			name:    "same plan is no change",
			current: PlanGrowth,
			next:    PlanGrowth,
			want:    ChangeTypeNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChangeTypeFor(tt.current, tt.next))
		})
	}
}

func TestBuildFeatureCapabilities(t *testing.T) {
	t.Run("deterministic for the same plan", func(t *testing.T) {
		assert.Equal(t, BuildFeatureCapabilities(PlanGrowth), BuildFeatureCapabilities(PlanGrowth))
	})

	t.Run("bundles carry their own plan key", func(t *testing.T) {
		for _, plan := range []PlanKey{PlanFree, PlanStarter, PlanGrowth, PlanEvent} {
			assert.Equal(t, plan, BuildFeatureCapabilities(plan).PlanKey)
		}
	})

	t.Run("distinct bundles per plan", func(t *testing.T) {
		assert.NotEqual(t, BuildFeatureCapabilities(PlanStarter), BuildFeatureCapabilities(PlanGrowth))
		assert.NotEqual(t, BuildFeatureCapabilities(PlanFree), BuildFeatureCapabilities(PlanStarter))
	})

	t.Run("unknown plan projects to the free bundle", func(t *testing.T) {
		caps := BuildFeatureCapabilities(PlanKey("enterprise"))

		assert.Equal(t, PlanFree, caps.PlanKey)
		assert.False(t, caps.OutreachEnabled)
		assert.True(t, caps.SearchEnabled)
	})

	t.Run("paid plans unlock outreach", func(t *testing.T) {
		assert.True(t, BuildFeatureCapabilities(PlanStarter).OutreachEnabled)
		assert.True(t, BuildFeatureCapabilities(PlanGrowth).OutreachEnabled)
		assert.False(t, BuildFeatureCapabilities(PlanFree).OutreachEnabled)
	})

	t.Run("growth has higher limits than starter", func(t *testing.T) {
		starter := BuildFeatureCapabilities(PlanStarter)
		growth := BuildFeatureCapabilities(PlanGrowth)

		assert.Greater(t, growth.MaxActiveCampaigns, starter.MaxActiveCampaigns)
		assert.Greater(t, growth.MonthlyOutreachEmailCap, starter.MonthlyOutreachEmailCap)
		assert.Greater(t, growth.ConnectedInboxes, starter.ConnectedInboxes)
	})
}

func TestPlanKeyOrdinal(t *testing.T) {
	assert.Less(t, PlanStarter.Ordinal(), PlanGrowth.Ordinal())
	assert.Equal(t, 0, PlanFree.Ordinal())
	assert.Equal(t, 0, PlanEvent.Ordinal())
}

func TestIsRecurring(t *testing.T) {
	assert.True(t, PlanStarter.IsRecurring())
	assert.True(t, PlanGrowth.IsRecurring())
	assert.False(t, PlanFree.IsRecurring())
	assert.False(t, PlanEvent.IsRecurring())
}
