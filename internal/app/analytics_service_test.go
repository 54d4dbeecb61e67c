package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folioworks/api/pkg/domain/shared"
	"github.com/folioworks/api/pkg/domain/visit"
	"github.com/folioworks/api/pkg/logger"
)

func TestAnalyticsService_Summarize(t *testing.T) {
	repo := &fakeVisitRepo{
		total:   120,
		uniques: 40,
		topPaths: []visit.PathCount{
			{Path: "/", Count: 60},
			{Path: "/blog", Count: 30},
		},
		breakdown: map[string][]visit.LabelCount{
			"browser": {{Label: "Chrome", Count: 80}},
			"device":  {{Label: "desktop", Count: 90}},
			"os":      {{Label: "Linux", Count: 50}},
			"referer": {{Label: "news.ycombinator.com", Count: 12}},
		},
		histogram: []visit.HourBucket{
			{Hour: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), Count: 7},
		},
	}

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewAnalyticsService(repo, logger.NewNop()).WithClock(func() time.Time { return now })

	snap, err := svc.Summarize(context.Background(), shared.TimeRange24h)
	require.NoError(t, err)

	assert.Equal(t, shared.TimeRange24h, snap.TimeRange)
	assert.Equal(t, 120, snap.TotalVisits)
	assert.Equal(t, 40, snap.UniqueVisitors)
	assert.Equal(t, 3.0, snap.AvgPerVisitor)
	require.Len(t, snap.TopPages, 2)
	assert.Equal(t, PageCount{Path: "/", Count: 60}, snap.TopPages[0])
	assert.Equal(t, []LabelCount{{Label: "Chrome", Count: 80}}, snap.Browsers)
	assert.Equal(t, []LabelCount{{Label: "desktop", Count: 90}}, snap.Devices)
	require.Len(t, snap.HourlyVisits, 1)
	assert.Equal(t, 7, snap.HourlyVisits[0].Count)
	assert.Equal(t, now, snap.GeneratedAt)
}

func TestAnalyticsService_Summarize_AverageRounding(t *testing.T) {
	repo := &fakeVisitRepo{total: 10, uniques: 3}
	svc := NewAnalyticsService(repo, logger.NewNop())

	snap, err := svc.Summarize(context.Background(), shared.TimeRange24h)
	require.NoError(t, err)

	assert.Equal(t, 3.33, snap.AvgPerVisitor)
}

func TestAnalyticsService_Summarize_Empty(t *testing.T) {
	svc := NewAnalyticsService(&fakeVisitRepo{}, logger.NewNop())

	snap, err := svc.Summarize(context.Background(), shared.TimeRange1h)
	require.NoError(t, err)

	assert.Zero(t, snap.TotalVisits)
	assert.Zero(t, snap.UniqueVisitors)
	assert.Zero(t, snap.AvgPerVisitor)
	assert.Empty(t, snap.TopPages)
	assert.Empty(t, snap.HourlyVisits)
}

func TestAnalyticsService_Summarize_InvalidRangeFallsBack(t *testing.T) {
	svc := NewAnalyticsService(&fakeVisitRepo{}, logger.NewNop())

	snap, err := svc.Summarize(context.Background(), shared.TimeRange("bogus"))
	require.NoError(t, err)

	assert.Equal(t, shared.TimeRange24h, snap.TimeRange)
}

func TestAnalyticsService_Summarize_RepoError(t *testing.T) {
	repo := &fakeVisitRepo{countErr: assert.AnError}
	svc := NewAnalyticsService(repo, logger.NewNop())

	_, err := svc.Summarize(context.Background(), shared.TimeRange24h)
	assert.Error(t, err)
}

func TestAnalyticsService_RealTime(t *testing.T) {
	repo := &fakeVisitRepo{
		latest: []visit.SourcePath{
			{SourceAddr: "1.1.1.1", Path: "/blog"},
			{SourceAddr: "2.2.2.2", Path: "/"},
			{SourceAddr: "3.3.3.3", Path: "/blog"},
			{SourceAddr: "4.4.4.4", Path: "/about"},
		},
	}

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewAnalyticsService(repo, logger.NewNop()).WithClock(func() time.Time { return now })

	stats, err := svc.RealTime(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.ActiveVisitors)
	// Pages ranked by concurrent viewers, ties broken by path.
	require.Len(t, stats.CurrentPages, 3)
	assert.Equal(t, PageCount{Path: "/blog", Count: 2}, stats.CurrentPages[0])
	assert.Equal(t, PageCount{Path: "/", Count: 1}, stats.CurrentPages[1])
	assert.Equal(t, PageCount{Path: "/about", Count: 1}, stats.CurrentPages[2])
	assert.Equal(t, now, stats.Timestamp)
}

func TestAnalyticsService_RealTime_Empty(t *testing.T) {
	svc := NewAnalyticsService(&fakeVisitRepo{}, logger.NewNop())

	stats, err := svc.RealTime(context.Background(), 0)
	require.NoError(t, err)

	assert.Zero(t, stats.ActiveVisitors)
	assert.Empty(t, stats.CurrentPages)
}
