package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler runs jobs on cron schedules. Overlapping runs of the same job are skipped.
type Scheduler struct {
	cron    *cron.Cron
	chain   cron.Chain
	logger  zerolog.Logger
	timeout time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a scheduler evaluating schedules in loc. Each run is bounded by timeout
// when it is positive.
func New(logger zerolog.Logger, loc *time.Location, timeout time.Duration) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}

	cronLogger := cronLogAdapter{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		chain:   cron.NewChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		logger:  logger,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register adds a named job on a standard five-field cron spec.
func (s *Scheduler) Register(name, spec string, job Job) error {
	_, err := s.cron.AddJob(spec, s.wrap(name, job))
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}

	s.logger.Info().Str("job", name).Str("schedule", spec).Msg("job scheduled")
	return nil
}

// wrap recovers panics and skips a run while the previous one is still going.
func (s *Scheduler) wrap(name string, job Job) cron.Job {
	return s.chain.Then(cron.FuncJob(func() { s.run(name, job) }))
}

func (s *Scheduler) run(name string, job Job) {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	err := job(ctx)

	event := s.logger.Info()
	if err != nil {
		event = s.logger.Error().Err(err)
	}
	event.Str("job", name).Dur("duration", time.Since(start)).Msg("job finished")
}

// Start starts the cron loop in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and returns a context that is done once they return.
func (s *Scheduler) Stop() context.Context {
	s.cancel()
	return s.cron.Stop()
}

// Entries reports how many jobs are scheduled.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

type cronLogAdapter struct {
	logger zerolog.Logger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
