package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTracker_SeedsDown(t *testing.T) {
	t.Parallel()

	tr := NewTracker([]string{"a", "b"})

	rec, ok := tr.Status("a")
	require.True(t, ok)
	require.Equal(t, StatusDown, rec.Status)

	_, ok = tr.Status("missing")
	require.False(t, ok)

	require.True(t, tr.LastChecked("a").IsZero())
}

func TestTracker_UpdateReportsTransitions(t *testing.T) {
	t.Parallel()

	tr := NewTracker([]string{"a"})

	// down -> healthy is a transition.
	require.True(t, tr.Update(Record{Server: "a", Status: StatusHealthy}))

	// healthy -> healthy is not.
	require.False(t, tr.Update(Record{Server: "a", Status: StatusHealthy}))

	// healthy -> degraded is.
	require.True(t, tr.Update(Record{Server: "a", Status: StatusDegraded}))

	// An unseeded server always reports a transition on first update.
	require.True(t, tr.Update(Record{Server: "new", Status: StatusDown}))

	require.False(t, tr.LastChecked("a").IsZero())
}

func TestTracker_UpdateKeepsLatestRecord(t *testing.T) {
	t.Parallel()

	tr := NewTracker([]string{"a"})
	before := time.Now().UTC()

	tr.Update(Record{Server: "a", Status: StatusHealthy, CallCount: 7})

	rec, ok := tr.Status("a")
	require.True(t, ok)
	require.Equal(t, uint64(7), rec.CallCount)
	require.False(t, tr.LastChecked("a").Before(before))
}
