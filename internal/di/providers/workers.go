package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/notekeeper/notekeeper-server/internal/config"
	"github.com/notekeeper/notekeeper-server/internal/logger"
	"github.com/notekeeper/notekeeper-server/internal/service"
)

// purgeFunc deletes expired rows and reports how many went.
type purgeFunc func(ctx context.Context) (int64, error)

// ResetTokenCleanupJob periodically purges expired password reset tokens.
type ResetTokenCleanupJob struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable. It blocks until the loop has exited.
func (j *ResetTokenCleanupJob) Shutdown() error {
	if j.cancel == nil {
		return nil
	}
	j.cancel()
	<-j.done
	return nil
}

// ProvideResetTokenCleanupJob provides the periodic reset token cleanup job.
// A zero interval disables it.
func ProvideResetTokenCleanupJob(i do.Injector) (*ResetTokenCleanupJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	resets := do.MustInvoke[*service.PasswordResetService](i)

	if cfg.Auth.ResetCleanupInterval <= 0 {
		log.Info("Reset token cleanup job disabled")
		return &ResetTokenCleanupJob{}, nil
	}

	job := startCleanupJob(cfg.Auth.ResetCleanupInterval, resets.PurgeExpired, log)
	log.Info("Reset token cleanup job started", "interval", cfg.Auth.ResetCleanupInterval)

	return job, nil
}

func startCleanupJob(interval time.Duration, purge purgeFunc, log *logger.Logger) *ResetTokenCleanupJob {
	ctx, cancel := context.WithCancel(context.Background())
	job := &ResetTokenCleanupJob{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(job.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Initial cleanup on startup
		if count, err := purge(ctx); err != nil {
			log.WithError(err).Warn("Initial reset token cleanup failed")
		} else if count > 0 {
			log.Info("Initial reset token cleanup completed", "deleted", count)
		}

		for {
			select {
			case <-ticker.C:
				if count, err := purge(ctx); err != nil {
					log.WithError(err).Warn("Reset token cleanup failed")
				} else if count > 0 {
					log.Info("Reset token cleanup completed", "deleted", count)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return job
}
