package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeperRejectsBadSchedule(t *testing.T) {
	s := NewSweeper(New(), nil)
	err := s.Start("not a schedule")
	assert.Error(t, err)
}

func TestSweeperReclaimsExpiredEntries(t *testing.T) {
	c := New()
	c.Set("k", testResult("r"), time.Millisecond)

	s := NewSweeper(c, nil)
	require.NoError(t, s.Start("@every 10ms"))
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return c.Stats().Entries == 0
	}, time.Second, 10*time.Millisecond)
}
