// Package scheduler runs the summarization job on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is one schedulable unit of work.
type Job interface {
	Name() string
	RunOnce(ctx context.Context) error
}

// Scheduler triggers a job on a cron expression until its context ends.
type Scheduler struct {
	schedule string
	job      Job
	cron     *cron.Cron
}

func New(schedule string, job Job) *Scheduler {
	return &Scheduler{
		schedule: schedule,
		job:      job,
		// Prevent overlapping runs
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

// Start blocks until ctx is cancelled. The job also runs once immediately so
// a fresh deployment does not wait a full cycle for its first pass.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(ctx); err != nil {
			logrus.WithError(err).Errorf("Scheduled run of %s failed", s.job.Name())
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	logrus.Infof("Scheduler started for %s with schedule: %s", s.job.Name(), s.schedule)
	if err := s.RunOnce(ctx); err != nil {
		logrus.WithError(err).Errorf("Initial run of %s failed", s.job.Name())
	}

	s.cron.Start()

	<-ctx.Done()
	logrus.Infof("Scheduler stopped for %s", s.job.Name())
	s.cron.Stop()
	return ctx.Err()
}

// RunOnce executes the job a single time and logs its duration.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()
	logrus.Infof("Starting %s run...", s.job.Name())

	if err := s.job.RunOnce(ctx); err != nil {
		return fmt.Errorf("%s run failed after %s: %w", s.job.Name(), time.Since(start).Round(time.Second), err)
	}

	logrus.Infof("Completed %s run in %s", s.job.Name(), time.Since(start).Round(time.Second))
	return nil
}
