/**
 * @description
 * Per-job exclusive locks backed by Postgres advisory locks.
 * Scheduled runs of the same job never overlap: a run that cannot take the lock
 * skips instead of queueing, so an hourly trigger firing while the previous run
 * is still in flight is a no-op.
 *
 * @dependencies
 * - gorm.io/gorm
 *
 * @notes
 * - Advisory locks are session-scoped, so acquisition and release must happen on
 *   the same connection. One connection is checked out of the pool and pinned for
 *   the job's duration; releasing through the pool at large could land on a
 *   different session, silently leaking the lock until the idle holder is recycled.
 * - The release runs on its own context: the job's context may already be
 *   cancelled (worker shutdown), and a lock must still be returned then.
 */

package services

import (
	"context"
	"errors"
	"time"

	"github.com/riskwatch-project/backend/internal/logger"
	"gorm.io/gorm"
)

// Advisory lock keys, one per job
const (
	priceRefreshLockKey    = 101
	historyBackfillLockKey = 102
	riskRecalcLockKey      = 103
	dailySummaryLockKey    = 104
	fredRefreshLockKey     = 105
)

const lockReleaseTimeout = 5 * time.Second

// ErrJobRunning signals that another run of the same job holds the lock
var ErrJobRunning = errors.New("job already running")

// acquireJobLock takes the advisory lock for a job, or returns ErrJobRunning.
// The returned func releases the lock and must always be called.
func acquireJobLock(ctx context.Context, db *gorm.DB, key int) (func(), error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, err
	}

	var locked bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&locked); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if !locked {
		_ = conn.Close()
		return nil, ErrJobRunning
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
		defer cancel()

		var released bool
		if err := conn.QueryRowContext(releaseCtx, "SELECT pg_advisory_unlock($1)", key).Scan(&released); err != nil {
			logger.Error("failed to release job lock %d: %v", key, err)
		} else if !released {
			logger.Error("job lock %d was not held by this session", key)
		}
		if err := conn.Close(); err != nil {
			logger.Error("failed to return job lock connection: %v", err)
		}
	}, nil
}
