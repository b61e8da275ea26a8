// Package driver calls Update on a fixed period.
package driver

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/scheerer/strip-animations/internal/logging"
)

var logger = logging.New("driver")

const warnEvery = 10 * time.Second

type Updater interface {
	Update() error
}

// Run ticks every interval until ctx is done. A failed frame is logged and skipped;
// the next tick renders from scratch.
func Run(ctx context.Context, interval time.Duration, u Updater) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastWarning, lastError time.Time
	var failed int
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		start := time.Now()
		err := u.Update()
		took := time.Since(start)

		if err != nil {
			failed++
			if time.Since(lastError) > warnEvery {
				logger.With(zap.Error(err), zap.Int("failedFrames", failed)).Error("Failed to update strip")
				lastError = time.Now()
				failed = 0
			}
		}

		if took > interval && time.Since(lastWarning) > warnEvery {
			logger.With(zap.Stringer("took", took), zap.Stringer("interval", interval)).
				Warn("Cannot keep up with FRAME_INTERVAL. Consider increasing FRAME_INTERVAL or playing fewer layers.")
			lastWarning = time.Now()
		}
	}
}
