// trash/sweeper.go
package trash

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const DefaultSweepInterval = time.Hour

// Sweeper runs a purge once when started and then on every tick until the
// context is cancelled. Purges only filter by timestamp, so an overlapping
// manual purge is harmless.
type Sweeper struct {
	purge    func() int
	interval time.Duration
	log      zerolog.Logger
}

func NewSweeper(purge func() int, interval time.Duration, log zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		purge:    purge,
		interval: interval,
		log:      log.With().Str("component", "trash-sweeper").Logger(),
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	s.sweep()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	if n := s.purge(); n > 0 {
		s.log.Info().Int("purged", n).Msg("expired trash items removed")
	} else {
		s.log.Debug().Msg("no expired trash items")
	}
}
