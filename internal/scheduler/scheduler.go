// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron"
	"github.com/rs/zerolog/log"
)

// Cleaner removes expired download tokens and reports how many were removed.
type Cleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

// TokenCleanup is a cron.Job sweeping expired download tokens. A run that
// starts while the previous one is still going is skipped.
type TokenCleanup struct {
	cleaner Cleaner
	timeout time.Duration
	running atomic.Bool

	removed prometheus.Counter
	runs    *prometheus.CounterVec
}

// NewTokenCleanup creates the job and registers its metrics with reg.
func NewTokenCleanup(cleaner Cleaner, timeout time.Duration, reg prometheus.Registerer) (*TokenCleanup, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	j := &TokenCleanup{
		cleaner: cleaner,
		timeout: timeout,
		removed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "download_tokens_cleaned_total",
			Help: "Expired download tokens removed by the cleanup job.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "download_token_cleanup_runs_total",
			Help: "Cleanup job runs by result.",
		}, []string{"result"}),
	}
	for _, c := range []prometheus.Collector{j.removed, j.runs} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return j, nil
}

// Run implements cron.Job.
func (j *TokenCleanup) Run() {
	_, _ = j.RunOnce(context.Background())
}

// RunOnce performs one sweep bounded by the job timeout. It returns false if
// another sweep was already in progress.
func (j *TokenCleanup) RunOnce(ctx context.Context) (bool, error) {
	if !j.running.CompareAndSwap(false, true) {
		j.runs.WithLabelValues("skipped").Inc()
		log.Warn().Str("component", "scheduler").Str("job", "token_cleanup").Msg("previous run still in progress; skipping")
		return false, nil
	}
	defer j.running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	n, err := j.cleaner.Cleanup(ctx)
	if err != nil {
		j.runs.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("component", "scheduler").Str("job", "token_cleanup").Msg("cleanup failed")
		return true, err
	}

	j.runs.WithLabelValues("ok").Inc()
	j.removed.Add(float64(n))
	log.Info().
		Str("component", "scheduler").
		Str("job", "token_cleanup").
		Int64("removed", n).
		Dur("took", time.Since(start)).
		Msg("expired download tokens removed")
	return true, nil
}

// Scheduler wraps a cron runner.
type Scheduler struct {
	cron *cron.Cron
}

// New returns a stopped Scheduler.
func New() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Add registers job under a cron spec such as "@every 15m" or "0 */5 * * * *".
func (s *Scheduler) Add(spec string, job cron.Job) error {
	if err := s.cron.AddJob(spec, job); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling. Jobs already running are not interrupted.
func (s *Scheduler) Stop() { s.cron.Stop() }
