package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamalabs/agentpool/core"
)

func trackerAt(start time.Time) (*Tracker, *time.Time) {
	t := New()
	now := start
	t.now = func() time.Time { return now }
	return t, &now
}

func TestStartEndComputesDuration(t *testing.T) {
	tr, now := trackerAt(time.Unix(1700000000, 0))

	tr.Start("t-1", "valuer-1", "appraise", core.PriorityHigh)
	*now = now.Add(300 * time.Millisecond)

	done, ok := tr.End("t-1")
	require.True(t, ok)
	assert.Equal(t, "valuer-1", done.AgentID)
	assert.Equal(t, "appraise", done.Name)
	assert.Equal(t, 300*time.Millisecond, done.Duration)

	// The record is gone afterwards.
	_, ok = tr.End("t-1")
	assert.False(t, ok)
}

func TestEndUnknownTask(t *testing.T) {
	tr := New()
	_, ok := tr.End("never-started")
	assert.False(t, ok)
}

func TestCancelDropsTracking(t *testing.T) {
	tr := New()
	tr.Start("t-1", "valuer-1", "appraise", "")

	assert.True(t, tr.Cancel("t-1"))
	assert.False(t, tr.Cancel("t-1"))
	assert.Equal(t, 0, tr.Len())
}

func TestActiveComputesLiveDurations(t *testing.T) {
	tr, now := trackerAt(time.Unix(1700000000, 0))

	tr.Start("t-1", "valuer-1", "appraise", "")
	*now = now.Add(time.Second)
	tr.Start("t-2", "valuer-2", "enrich", core.PriorityLow)
	*now = now.Add(time.Second)

	active := tr.Active()
	require.Len(t, active, 2)

	// Ordered by start time, oldest first.
	assert.Equal(t, "t-1", active[0].TaskID)
	assert.Equal(t, 2*time.Second, active[0].Elapsed)
	assert.Equal(t, "t-2", active[1].TaskID)
	assert.Equal(t, time.Second, active[1].Elapsed)

	// Empty priority defaulted.
	assert.Equal(t, core.PriorityNormal, active[0].Priority)
	assert.Equal(t, core.PriorityLow, active[1].Priority)
}
