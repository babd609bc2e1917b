package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const exportTimeout = 4 * time.Minute

// cronLogger routes cron's own logging into zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}

// Schedule registers a store export on spec and starts the scheduler. After
// each export only the newest keep dumps are retained; keep 0 retains all.
// A run still in progress causes the next tick to be skipped. Stop the
// returned scheduler on shutdown.
func Schedule(spec string, keep int, e *Exporter, log *zap.Logger) (*cron.Cron, error) {
	cl := cronLogger{log: log.Sugar()}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl)))

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()
		if _, err := e.ExportStore(ctx); err != nil {
			log.Error("Scheduled store export failed", zap.Error(err))
			return
		}
		if keep > 0 {
			if _, err := e.PruneStoreDumps(ctx, keep); err != nil {
				log.Error("Pruning store dumps failed", zap.Error(err))
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("backup schedule %q: %w", spec, err)
	}
	c.Start()
	log.Info("Backup scheduler started", zap.String("schedule", spec))
	return c, nil
}
