// Package app contains the application services: visit recording, analytics
// aggregation and threat tracking.
package app

import (
	"context"

	"github.com/folioworks/api/internal/metrics"
	"github.com/folioworks/api/pkg/domain/visit"
	"github.com/folioworks/api/pkg/logger"
)

// RecordVisitInput carries one observed request into the visit recorder.
type RecordVisitInput struct {
	SourceAddr string
	Path       string
	Method     string
	UserAgent  string
	Referer    string
}

// VisitService records page visits. Recording is best-effort: a storage
// failure must never affect the request that produced the visit.
type VisitService struct {
	repo   visit.Repository
	logger *logger.Logger
}

// NewVisitService creates a new VisitService.
func NewVisitService(repo visit.Repository, log *logger.Logger) *VisitService {
	return &VisitService{
		repo:   repo,
		logger: log,
	}
}

// Record persists one visit. Errors are logged and swallowed; the caller
// cannot observe a failure.
func (s *VisitService) Record(ctx context.Context, input RecordVisitInput) {
	v := visit.New(
		input.SourceAddr,
		input.Path,
		input.Method,
		input.UserAgent,
		input.Referer,
	)

	if err := s.repo.Create(ctx, v); err != nil {
		metrics.VisitRecordFailures.Inc()
		s.logger.Error("failed to record visit",
			"source", input.SourceAddr,
			"path", input.Path,
			"error", err,
		)
		return
	}

	metrics.VisitsRecordedTotal.Inc()
}
