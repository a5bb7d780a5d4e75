package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hairult/hairstyle-service/internal/service"
)

// Sweeper runs one sweep pass.
type Sweeper interface {
	Sweep(ctx context.Context) (service.SweepReport, error)
}

// StartSweepWorker runs sweeper every interval until ctx is done. The returned
// channel is closed once the loop has exited. A non-positive interval starts nothing.
func StartSweepWorker(ctx context.Context, sweeper Sweeper, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if sweeper == nil || interval <= 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		logger.Info("sweep worker started", zap.Duration("interval", interval))
		for {
			select {
			case <-ctx.Done():
				logger.Info("sweep worker stopped")
				return
			case <-ticker.C:
				if _, err := sweeper.Sweep(ctx); err != nil && ctx.Err() == nil {
					logger.Error("scheduled sweep failed", zap.Error(err))
				}
			}
		}
	}()
	return done
}
