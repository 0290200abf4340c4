// Package sweep removes expired session rows on a fixed interval. The
// sweeper runs outside the request path and is safe to run concurrently
// with live traffic: it only deletes rows already past their deadline,
// which Verify would reject anyway.
package sweep

import (
	"context"
	"database/sql"
	"time"

	"github.com/filmood/keygate/internal/logging"
	"github.com/filmood/keygate/internal/server/repositories/repomanager"
)

// Sweeper periodically deletes expired sessions.
type Sweeper struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	interval    time.Duration
	logger      logging.Logger
	now         func() time.Time
}

// NewSweeper constructs a Sweeper running every interval.
func NewSweeper(db *sql.DB, m repomanager.RepositoryManager, interval time.Duration, logger logging.Logger) *Sweeper {
	return &Sweeper{
		db:          db,
		repomanager: m,
		interval:    interval,
		logger:      logger,
		now:         time.Now,
	}
}

// SweepOnce deletes sessions whose expiry is in the past and returns the
// number of rows removed. It is exported so schedulers and tests can drive
// it directly.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	return s.repomanager.Sessions(s.db).DeleteExpired(ctx, s.now())
}

// Run executes SweepOnce every interval until ctx is cancelled. Failures
// are logged and the loop keeps going; the next tick retries naturally.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.SweepOnce(ctx)
			if err != nil {
				s.logger.Error(ctx, "session sweep failed", "error", err.Error())
				continue
			}
			if n > 0 {
				s.logger.Info(ctx, "expired sessions removed", "count", n)
			}
		}
	}
}
