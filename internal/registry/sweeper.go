package registry

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper — фоновая чистка: раз в interval выселяет участников без
// heartbeat дольше TTL. Единственный путь удаления без явного leave.
type Sweeper struct {
	reg      *Registry
	interval time.Duration
}

func NewSweeper(reg *Registry, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = reg.TTL() / 2
	}
	return &Sweeper{reg: reg, interval: interval}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.reg.SweepExpired(time.Now()); n > 0 {
				slog.Debug("presence sweep", "evicted", n)
			}
		}
	}
}
