package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of background work run on a cron schedule
type Job interface {
	Name() string
	Run(ctx context.Context)
}

// Scheduler runs registered jobs on their cron specs. A run that is still
// in progress when its next tick fires is skipped.
type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	timeout time.Duration
}

// NewScheduler creates a scheduler whose job runs are bounded by timeout
func NewScheduler(logger *zap.Logger, timeout time.Duration) *Scheduler {
	cronLogger := cron.VerbosePrintfLogger(zap.NewStdLog(logger))
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cronLogger),
			cron.Recover(cronLogger),
		)),
		logger:  logger,
		timeout: timeout,
	}
}

// Register schedules j with a standard cron spec or a descriptor such as "@every 1m"
func (s *Scheduler) Register(spec string, j Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		j.Run(ctx)
		s.logger.Debug("Scheduled job finished",
			zap.String("job", j.Name()),
			zap.Duration("duration", time.Since(start)),
		)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, j.Name(), err)
	}

	s.logger.Info("Scheduled job registered", zap.String("job", j.Name()), zap.String("schedule", spec))
	return nil
}

// Start begins running scheduled jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out with jobs still running")
	}
}
