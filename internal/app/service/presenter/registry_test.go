package presenter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/subloop/reconciler/pkg/types"
)

func TestRegistry_TrackAndGet(t *testing.T) {
	reg := NewRegistry()
	require.Nil(t, reg.Get("O1"))

	p := New("O1", "", nil, testRoutes, time.Second)
	reg.Track("O1", p)
	require.Same(t, p, reg.Get("O1"))
}

func TestRegistry_TrackReplacesAndClosesPrevious(t *testing.T) {
	reg := NewRegistry()
	nav := newRecordingNavigator()

	old := New("O1", "", nav, testRoutes, 10*time.Millisecond)
	old.Resolve(types.PaymentOutcomeSuccess)
	reg.Track("O1", old)

	// A fresh delivery takes over; the old presenter's pending navigation
	// must not fire.
	replacement := New("O1", "", nav, testRoutes, time.Second)
	reg.Track("O1", replacement)
	require.Same(t, replacement, reg.Get("O1"))

	time.Sleep(40 * time.Millisecond)
	calls, _, _ := nav.snapshot()
	require.Zero(t, calls)
}

func TestRegistry_TrackProvisional(t *testing.T) {
	reg := NewRegistry()

	// Unclaimed order: installs.
	first := New("O1", "", nil, testRoutes, time.Second)
	require.True(t, reg.TrackProvisional("O1", first))
	require.Same(t, first, reg.Get("O1"))

	// Still processing: replaces.
	second := New("O1", "", nil, testRoutes, time.Second)
	require.True(t, reg.TrackProvisional("O1", second))
	require.Same(t, second, reg.Get("O1"))

	// Resolved: the settled presentation stays.
	second.Resolve(types.PaymentOutcomeSuccess)
	intruder := New("O1", "", nil, testRoutes, time.Second)
	require.False(t, reg.TrackProvisional("O1", intruder))
	require.Same(t, second, reg.Get("O1"))
	require.Equal(t, StateSuccess, reg.Get("O1").State())
}

func TestRegistry_Remove(t *testing.T) {
	reg := NewRegistry()
	nav := newRecordingNavigator()

	p := New("O1", "", nav, testRoutes, 10*time.Millisecond)
	p.Resolve(types.PaymentOutcomeFailed)
	reg.Track("O1", p)
	reg.Remove("O1")

	require.Nil(t, reg.Get("O1"))
	time.Sleep(40 * time.Millisecond)
	calls, _, _ := nav.snapshot()
	require.Zero(t, calls)
}
