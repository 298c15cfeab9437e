package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
	"github.com/tartampluch/go-celebrations/internal/config"
)

// Job is one scheduled pipeline run.
type Job func(ctx context.Context) error

// Scheduler triggers a Job on a standard five-field cron expression.
// A run still in progress when the next tick fires causes that tick to be skipped.
type Scheduler struct {
	cron *cron.Cron
	spec string
	job  Job
}

// New validates spec and prepares the scheduler. Extra options (location, parser)
// are passed to cron.
func New(spec string, job Job, opts ...cron.Option) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("%s %q: %w", config.ErrScheduleInvalid, spec, err)
	}
	opts = append([]cron.Option{cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))}, opts...)
	return &Scheduler{
		cron: cron.New(opts...),
		spec: spec,
		job:  job,
	}, nil
}

// Start registers the job and blocks until ctx is cancelled. Runs receive ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if err := s.job(ctx); err != nil {
			slog.ErrorContext(ctx, config.ErrRunFailed,
				config.LogKeyComponent, config.CompScheduler,
				config.LogKeyError, err,
			)
		}
	})
	if err != nil {
		return fmt.Errorf("%s %q: %w", config.ErrScheduleInvalid, s.spec, err)
	}

	s.cron.Start()
	slog.Info(config.MsgSchedulerStart,
		config.LogKeyComponent, config.CompScheduler,
		config.LogKeySchedule, s.spec,
	)

	<-ctx.Done()
	return nil
}

// Stop halts the cron and waits for a running job to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info(config.MsgSchedulerStop, config.LogKeyComponent, config.CompScheduler)
}
