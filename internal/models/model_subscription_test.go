package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/subloop/reconciler/pkg/types"
)

func TestSubscriptionValid(t *testing.T) {
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	require.True(t, (&Subscription{Status: types.SubscriptionStatusActive, ExpireAt: &future}).Valid())
	require.False(t, (&Subscription{Status: types.SubscriptionStatusActive, ExpireAt: &past}).Valid())
	require.False(t, (&Subscription{Status: types.SubscriptionStatusInactive, ExpireAt: &future}).Valid())
	require.False(t, (&Subscription{Status: types.SubscriptionStatusActive}).Valid())
	require.False(t, (*Subscription)(nil).Valid())
}

func TestSubscriptionInfo(t *testing.T) {
	future := time.Now().Add(time.Hour)
	info := (&Subscription{Status: types.SubscriptionStatusActive, PlanID: "plan-monthly", ExpireAt: &future}).Info()
	require.Equal(t, types.SubscriptionStatusActive, info.Status)
	require.Equal(t, "plan-monthly", info.PlanID)

	past := time.Now().Add(-time.Hour)
	lapsed := (&Subscription{Status: types.SubscriptionStatusActive, PlanID: "plan-monthly", ExpireAt: &past}).Info()
	require.Equal(t, types.SubscriptionStatusInactive, lapsed.Status)

	require.Equal(t, types.SubscriptionStatusInactive, (*Subscription)(nil).Info().Status)
}
