// Package scheduler repeats a harvest on a day interval.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
	"github.com/catalogbridge/ckan2csw/internal/output"
)

// Job is one scheduled harvest.
type Job func(ctx context.Context) error

// Options configures the schedule.
type Options struct {
	// DaysInterval runs the job every N days of the month.
	DaysInterval int

	// HourStart is the hour of day, 0-23, the job fires at.
	HourStart int

	// Location is the timezone the schedule is evaluated in. nil means
	// time.Local.
	Location *time.Location
}

// Scheduler fires a job at HourStart every DaysInterval days.
type Scheduler struct {
	spec     string
	schedule cron.Schedule
	loc      *time.Location
}

// New validates opts and parses the resulting cron spec.
func New(opts Options) (*Scheduler, error) {
	if opts.DaysInterval < 1 {
		return nil, oerrors.NewConfigError("cron.daysInterval must be at least 1", "scheduler", "")
	}
	if opts.HourStart < 0 || opts.HourStart > 23 {
		return nil, oerrors.NewConfigError("cron.hourStart must be between 0 and 23", "scheduler", "")
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	spec := fmt.Sprintf("CRON_TZ=%s 0 %d */%d * *", loc.String(), opts.HourStart, opts.DaysInterval)
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: cron spec %q: %v", oerrors.ErrConfig, spec, err)
	}

	return &Scheduler{spec: spec, schedule: schedule, loc: loc}, nil
}

// Spec returns the cron expression.
func (s *Scheduler) Spec() string {
	return s.spec
}

// Next returns the first activation after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Start runs job on the schedule until ctx is canceled. A job still running
// when ctx ends is waited for. Activations that fire while the previous run
// is still going are skipped. Job errors are logged and do not stop the
// schedule.
func (s *Scheduler) Start(ctx context.Context, job Job) {
	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	c.Schedule(s.schedule, cron.FuncJob(func() {
		if ctx.Err() != nil {
			return
		}
		output.Info("scheduled harvest starting")
		if err := job(ctx); err != nil {
			output.Error("scheduled harvest failed", "error", err)
		}
		output.Info("next harvest", "at", s.Next(time.Now().In(s.loc)).Format(time.RFC3339))
	}))

	c.Start()
	output.Info("scheduler started", "spec", s.spec, "next", s.Next(time.Now().In(s.loc)).Format(time.RFC3339))

	<-ctx.Done()
	<-c.Stop().Done()
	output.Info("scheduler stopped")
}

// cronLogger sends cron's own messages to the shared logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	output.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	output.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
