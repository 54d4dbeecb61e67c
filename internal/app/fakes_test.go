package app

import (
	"context"
	"time"

	"github.com/folioworks/api/pkg/domain/threat"
	"github.com/folioworks/api/pkg/domain/visit"
)

// fakeVisitRepo is an in-memory visit.Repository stub with per-method
// canned results and optional errors.
type fakeVisitRepo struct {
	created []*visit.Visit

	createErr error

	total     int
	uniques   int
	bySource  map[string]int
	paths     map[string][]string
	topPaths  []visit.PathCount
	breakdown map[string][]visit.LabelCount
	histogram []visit.HourBucket
	latest    []visit.SourcePath

	countErr error
	deleted  int64
}

func (f *fakeVisitRepo) Create(_ context.Context, v *visit.Visit) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, v)
	return nil
}

func (f *fakeVisitRepo) CountSince(context.Context, time.Time) (int, error) {
	return f.total, f.countErr
}

func (f *fakeVisitRepo) CountDistinctSourcesSince(context.Context, time.Time) (int, error) {
	return f.uniques, nil
}

func (f *fakeVisitRepo) CountBySourceSince(_ context.Context, sourceAddr string, _ time.Time) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.bySource[sourceAddr], nil
}

func (f *fakeVisitRepo) DistinctPathsBySourceSince(_ context.Context, sourceAddr string, _ time.Time) ([]string, error) {
	return f.paths[sourceAddr], nil
}

func (f *fakeVisitRepo) TopPathsSince(context.Context, time.Time, int) ([]visit.PathCount, error) {
	return f.topPaths, nil
}

func (f *fakeVisitRepo) BreakdownSince(_ context.Context, field string, _ time.Time, _ int) ([]visit.LabelCount, error) {
	return f.breakdown[field], nil
}

func (f *fakeVisitRepo) HourlyHistogramSince(context.Context, time.Time) ([]visit.HourBucket, error) {
	return f.histogram, nil
}

func (f *fakeVisitRepo) LatestPathPerSourceSince(context.Context, time.Time) ([]visit.SourcePath, error) {
	return f.latest, nil
}

func (f *fakeVisitRepo) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return f.deleted, nil
}

// fakeThreatRepo is an in-memory threat.Repository stub.
type fakeThreatRepo struct {
	created []*threat.Threat

	createErr error

	total   int
	sources int
	recent  []*threat.Threat
	top     []threat.BlacklistEntry
	deleted int64
}

func (f *fakeThreatRepo) Create(_ context.Context, t *threat.Threat) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, t)
	return nil
}

func (f *fakeThreatRepo) CountSince(context.Context, time.Time) (int, error) {
	return f.total, nil
}

func (f *fakeThreatRepo) CountDistinctSourcesSince(context.Context, time.Time) (int, error) {
	return f.sources, nil
}

func (f *fakeThreatRepo) ListRecentSince(context.Context, time.Time, int) ([]*threat.Threat, error) {
	return f.recent, nil
}

func (f *fakeThreatRepo) TopAttackersSince(context.Context, time.Time, int) ([]threat.BlacklistEntry, error) {
	return f.top, nil
}

func (f *fakeThreatRepo) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return f.deleted, nil
}
