package cache

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/gamalabs/agentpool/logging"
)

// DefaultSweepSchedule runs the sweep once a minute.
const DefaultSweepSchedule = "* * * * *"

// Sweeper periodically invokes Cleanup on a ResultCache. Lazy expiration
// already keeps reads correct; the sweeper only reclaims memory for entries
// nobody asks for again.
type Sweeper struct {
	cache  *ResultCache
	cron   *cron.Cron
	logger logging.Logger
}

// NewSweeper builds a Sweeper for the given cache. A nil logger is replaced
// with a NoOpLogger.
func NewSweeper(c *ResultCache, logger logging.Logger) *Sweeper {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Sweeper{
		cache:  c,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start schedules the sweep with a standard 5-field cron expression and
// begins running. An empty schedule uses DefaultSweepSchedule.
func (s *Sweeper) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	return nil
}

// Stop halts scheduling. A sweep already in progress runs to completion.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) sweep() {
	if removed := s.cache.Cleanup(); removed > 0 {
		s.logger.Debug("cache sweep removed expired entries", "removed", removed)
	}
}
