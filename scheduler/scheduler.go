// Package scheduler triggers the weekly digest on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"MediaVault/archive"

	"github.com/inconshreveable/log15/v3"
	"github.com/robfig/cron/v3"
)

var logger = log15.New("module", "scheduler")

// DefaultSchedule fires every Sunday at 00:00.
const DefaultSchedule = "0 0 * * 0"

type DigestRunner interface {
	Run(ctx context.Context) archive.DigestResult
}

type Scheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	loc      *time.Location
	runner   DigestRunner
	now      func() time.Time
}

// New parses expr as a standard five-field cron expression evaluated in loc.
// Ticks that arrive while a digest is still running are skipped.
func New(expr string, loc *time.Location, runner DigestRunner) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("scheduler: invalid schedule %q: %w", expr, err)
	}

	cl := cronLogger{logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		schedule: schedule,
		loc:      loc,
		runner:   runner,
		now:      time.Now,
	}
	s.cron.Schedule(schedule, cron.FuncJob(s.runDigest))
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("Digest scheduler started", "next", s.NextRun().Format(time.RFC3339), "timezone", s.loc.String())
}

// Stop halts the schedule and waits for a running digest to finish, or for
// ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NextRun reports when the digest will next fire.
func (s *Scheduler) NextRun() time.Time {
	return s.schedule.Next(s.now().In(s.loc))
}

func (s *Scheduler) runDigest() {
	logger.Info("Running scheduled weekly backup")
	res := s.runner.Run(context.Background())
	if !res.Success {
		logger.Error("Scheduled backup failed", "err", res.Error)
		return
	}
	count := 0
	if res.MessageCount != nil {
		count = *res.MessageCount
	}
	logger.Info("Scheduled backup completed", "messages", count, "next", s.NextRun().Format(time.RFC3339))
}

// cronLogger routes cron's internal logging through log15.
type cronLogger struct {
	l log15.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "err", err)...)
}
