package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/folioworks/api/pkg/domain/shared"
	"github.com/folioworks/api/pkg/domain/visit"
	"github.com/folioworks/api/pkg/logger"
)

// Snapshot is the aggregated analytics view over one time range.
type Snapshot struct {
	TimeRange       shared.TimeRange   `json:"timeRange"`
	TotalVisits     int                `json:"totalVisits"`
	UniqueVisitors  int                `json:"uniqueVisitors"`
	AvgPerVisitor   float64            `json:"avgPerVisitor"`
	TopPages        []PageCount        `json:"topPages"`
	Browsers        []LabelCount       `json:"browsers"`
	Devices         []LabelCount       `json:"devices"`
	OperatingSystem []LabelCount       `json:"operatingSystems"`
	Referers        []LabelCount       `json:"referers"`
	HourlyVisits    []HourlyBucket     `json:"hourlyVisits"`
	GeneratedAt     time.Time          `json:"generatedAt"`
}

// PageCount is a page with its visit count.
type PageCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// LabelCount is a label with its visit count.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// HourlyBucket is one bar of the hourly visit histogram.
type HourlyBucket struct {
	Hour  time.Time `json:"hour"`
	Count int       `json:"count"`
}

// RealTimeStats is the trailing-window live view.
type RealTimeStats struct {
	ActiveVisitors int         `json:"activeVisitors"`
	CurrentPages   []PageCount `json:"currentPages"`
	Timestamp      time.Time   `json:"timestamp"`
}

const (
	topPagesLimit  = 10
	breakdownLimit = 10

	// DefaultRealTimeMinutes is the trailing window for the live view when
	// the caller does not specify one.
	DefaultRealTimeMinutes = 5
)

// AnalyticsService aggregates visit records into dashboard views.
type AnalyticsService struct {
	repo   visit.Repository
	logger *logger.Logger
	now    func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(repo visit.Repository, log *logger.Logger) *AnalyticsService {
	return &AnalyticsService{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

// WithClock overrides the service clock. Intended for tests.
func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	s.now = now
	return s
}

// Summarize builds the aggregated snapshot for the given time range. An
// unrecognized range falls back to 24 hours; callers validate user input at
// the boundary before reaching here.
func (s *AnalyticsService) Summarize(ctx context.Context, timeRange shared.TimeRange) (*Snapshot, error) {
	if !timeRange.IsValid() {
		timeRange = shared.TimeRange24h
	}

	now := s.now().UTC()
	since := now.Add(-timeRange.Duration())

	total, err := s.repo.CountSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("count visits: %w", err)
	}

	uniques, err := s.repo.CountDistinctSourcesSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("count unique visitors: %w", err)
	}

	topPaths, err := s.repo.TopPathsSince(ctx, since, topPagesLimit)
	if err != nil {
		return nil, fmt.Errorf("top pages: %w", err)
	}

	browsers, err := s.breakdown(ctx, "browser", since)
	if err != nil {
		return nil, err
	}
	devices, err := s.breakdown(ctx, "device", since)
	if err != nil {
		return nil, err
	}
	oses, err := s.breakdown(ctx, "os", since)
	if err != nil {
		return nil, err
	}
	referers, err := s.breakdown(ctx, "referer", since)
	if err != nil {
		return nil, err
	}

	histogram, err := s.repo.HourlyHistogramSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("hourly histogram: %w", err)
	}

	// Guard the average against an empty range.
	avg := 0.0
	if uniques > 0 {
		avg = math.Round(float64(total)/float64(uniques)*100) / 100
	}

	snapshot := &Snapshot{
		TimeRange:       timeRange,
		TotalVisits:     total,
		UniqueVisitors:  uniques,
		AvgPerVisitor:   avg,
		TopPages:        make([]PageCount, 0, len(topPaths)),
		Browsers:        browsers,
		Devices:         devices,
		OperatingSystem: oses,
		Referers:        referers,
		HourlyVisits:    make([]HourlyBucket, 0, len(histogram)),
		GeneratedAt:     now,
	}
	for _, pc := range topPaths {
		snapshot.TopPages = append(snapshot.TopPages, PageCount{Path: pc.Path, Count: pc.Count})
	}
	for _, hb := range histogram {
		snapshot.HourlyVisits = append(snapshot.HourlyVisits, HourlyBucket{Hour: hb.Hour, Count: hb.Count})
	}

	return snapshot, nil
}

func (s *AnalyticsService) breakdown(ctx context.Context, field string, since time.Time) ([]LabelCount, error) {
	rows, err := s.repo.BreakdownSince(ctx, field, since, breakdownLimit)
	if err != nil {
		return nil, fmt.Errorf("%s breakdown: %w", field, err)
	}

	result := make([]LabelCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, LabelCount{Label: row.Label, Count: row.Count})
	}
	return result, nil
}

// RealTime builds the live view over the trailing lastMinutes window. Each
// active source contributes its most recent page only, so CurrentPages ranks
// pages by how many visitors are looking at them right now.
func (s *AnalyticsService) RealTime(ctx context.Context, lastMinutes int) (*RealTimeStats, error) {
	if lastMinutes <= 0 {
		lastMinutes = DefaultRealTimeMinutes
	}

	now := s.now().UTC()
	since := now.Add(-time.Duration(lastMinutes) * time.Minute)

	latest, err := s.repo.LatestPathPerSourceSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("latest paths: %w", err)
	}

	pageViewers := make(map[string]int)
	for _, sp := range latest {
		pageViewers[sp.Path]++
	}

	pages := make([]PageCount, 0, len(pageViewers))
	for path, count := range pageViewers {
		pages = append(pages, PageCount{Path: path, Count: count})
	}
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Count != pages[j].Count {
			return pages[i].Count > pages[j].Count
		}
		return pages[i].Path < pages[j].Path
	})
	if len(pages) > topPagesLimit {
		pages = pages[:topPagesLimit]
	}

	return &RealTimeStats{
		ActiveVisitors: len(latest),
		CurrentPages:   pages,
		Timestamp:      now,
	}, nil
}
