// Package jobs runs the background maintenance jobs: data retention purges
// and the periodic blacklist snapshot.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/folioworks/api/internal/app"
	"github.com/folioworks/api/internal/config"
	"github.com/folioworks/api/pkg/domain/threat"
	"github.com/folioworks/api/pkg/domain/visit"
	"github.com/folioworks/api/pkg/logger"
)

// jobTimeout bounds each scheduled run.
const jobTimeout = 5 * time.Minute

// Scheduler wraps the cron runner.
type Scheduler struct {
	cron    *cron.Cron
	visits  visit.Repository
	threats threat.Repository
	service *app.ThreatService
	cfg     config.RetentionConfig
	logger  *logger.Logger
}

// NewScheduler creates the job scheduler. Jobs are registered but do not run
// until Start.
func NewScheduler(
	visits visit.Repository,
	threats threat.Repository,
	service *app.ThreatService,
	cfg config.RetentionConfig,
	log *logger.Logger,
) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		visits:  visits,
		threats: threats,
		service: service,
		cfg:     cfg,
		logger:  log,
	}

	if cfg.Enabled {
		if _, err := s.cron.AddFunc(cfg.Schedule, s.runRetention); err != nil {
			return nil, err
		}
	}

	// Hourly blacklist snapshot keeps a trace of the published entries in
	// the logs even if the database is later purged.
	if _, err := s.cron.AddFunc("@hourly", s.runBlacklistSnapshot); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("job scheduler started",
		"retention_enabled", s.cfg.Enabled,
		"retention_schedule", s.cfg.Schedule,
	)
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("job scheduler stopped")
}

// runRetention purges visits and threats past their configured TTLs.
func (s *Scheduler) runRetention() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	now := time.Now().UTC()

	visitsRemoved, err := s.visits.DeleteOlderThan(ctx, now.Add(-s.cfg.VisitTTL))
	if err != nil {
		s.logger.Error("visit retention purge failed", "error", err)
	}

	threatsRemoved, err := s.threats.DeleteOlderThan(ctx, now.Add(-s.cfg.ThreatTTL))
	if err != nil {
		s.logger.Error("threat retention purge failed", "error", err)
	}

	s.logger.Info("retention purge completed",
		"visits_removed", visitsRemoved,
		"threats_removed", threatsRemoved,
	)
}

// runBlacklistSnapshot logs the current top attackers.
func (s *Scheduler) runBlacklistSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	entries, err := s.service.Blacklist(ctx)
	if err != nil {
		s.logger.Error("blacklist snapshot failed", "error", err)
		return
	}

	top := entries
	if len(top) > 10 {
		top = top[:10]
	}

	attrs := []any{"total_entries", len(entries)}
	for _, e := range top {
		attrs = append(attrs, "ip:"+e.IP, e.AttemptCount)
	}
	s.logger.Info("blacklist snapshot", attrs...)
}
