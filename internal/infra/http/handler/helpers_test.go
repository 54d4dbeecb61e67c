package handler

import (
	"context"
	"time"

	"github.com/folioworks/api/pkg/domain/threat"
	"github.com/folioworks/api/pkg/domain/visit"
)

// stubVisitRepo is a visit.Repository stub with canned aggregates.
type stubVisitRepo struct {
	created []*visit.Visit

	total    int
	uniques  int
	topPaths []visit.PathCount
	latest   []visit.SourcePath
}

func (s *stubVisitRepo) Create(_ context.Context, v *visit.Visit) error {
	s.created = append(s.created, v)
	return nil
}

func (s *stubVisitRepo) CountSince(context.Context, time.Time) (int, error) {
	return s.total, nil
}

func (s *stubVisitRepo) CountDistinctSourcesSince(context.Context, time.Time) (int, error) {
	return s.uniques, nil
}

func (s *stubVisitRepo) CountBySourceSince(context.Context, string, time.Time) (int, error) {
	return 0, nil
}

func (s *stubVisitRepo) DistinctPathsBySourceSince(context.Context, string, time.Time) ([]string, error) {
	return nil, nil
}

func (s *stubVisitRepo) TopPathsSince(context.Context, time.Time, int) ([]visit.PathCount, error) {
	return s.topPaths, nil
}

func (s *stubVisitRepo) BreakdownSince(context.Context, string, time.Time, int) ([]visit.LabelCount, error) {
	return nil, nil
}

func (s *stubVisitRepo) HourlyHistogramSince(context.Context, time.Time) ([]visit.HourBucket, error) {
	return nil, nil
}

func (s *stubVisitRepo) LatestPathPerSourceSince(context.Context, time.Time) ([]visit.SourcePath, error) {
	return s.latest, nil
}

func (s *stubVisitRepo) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}

// stubThreatRepo is a threat.Repository stub with canned aggregates.
type stubThreatRepo struct {
	created []*threat.Threat

	total   int
	sources int
	recent  []*threat.Threat
	top     []threat.BlacklistEntry
}

func (s *stubThreatRepo) Create(_ context.Context, t *threat.Threat) error {
	s.created = append(s.created, t)
	return nil
}

func (s *stubThreatRepo) CountSince(context.Context, time.Time) (int, error) {
	return s.total, nil
}

func (s *stubThreatRepo) CountDistinctSourcesSince(context.Context, time.Time) (int, error) {
	return s.sources, nil
}

func (s *stubThreatRepo) ListRecentSince(context.Context, time.Time, int) ([]*threat.Threat, error) {
	return s.recent, nil
}

func (s *stubThreatRepo) TopAttackersSince(context.Context, time.Time, int) ([]threat.BlacklistEntry, error) {
	return s.top, nil
}

func (s *stubThreatRepo) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}
