package visit

import (
	"context"
	"time"
)

// PathCount is a path with its visit count, used for top-page rankings.
type PathCount struct {
	Path  string
	Count int
}

// LabelCount is a generic label/count pair for breakdowns
// (browser, device, OS, referer).
type LabelCount struct {
	Label string
	Count int
}

// HourBucket is one bar of the hourly histogram.
type HourBucket struct {
	Hour  time.Time
	Count int
}

// SourcePath is a source address paired with the path of its most recent
// visit, used by the real-time view.
type SourcePath struct {
	SourceAddr string
	Path       string
}

// Repository defines storage access for visit records.
type Repository interface {
	// Create persists a new visit record.
	Create(ctx context.Context, v *Visit) error

	// CountSince returns the number of visits at or after since.
	CountSince(ctx context.Context, since time.Time) (int, error)

	// CountDistinctSourcesSince returns the number of distinct source
	// addresses seen at or after since.
	CountDistinctSourcesSince(ctx context.Context, since time.Time) (int, error)

	// CountBySourceSince returns the number of visits from one source
	// at or after since. Used by the burst detector.
	CountBySourceSince(ctx context.Context, sourceAddr string, since time.Time) (int, error)

	// DistinctPathsBySourceSince returns the distinct paths a source touched
	// at or after since.
	DistinctPathsBySourceSince(ctx context.Context, sourceAddr string, since time.Time) ([]string, error)

	// TopPathsSince returns the most visited paths, ranked descending.
	TopPathsSince(ctx context.Context, since time.Time, limit int) ([]PathCount, error)

	// BreakdownSince returns visit counts grouped by the given field.
	// Field is one of "browser", "device", "os", "referer".
	BreakdownSince(ctx context.Context, field string, since time.Time, limit int) ([]LabelCount, error)

	// HourlyHistogramSince returns per-hour visit counts at or after since.
	HourlyHistogramSince(ctx context.Context, since time.Time) ([]HourBucket, error)

	// LatestPathPerSourceSince returns, for each source active at or after
	// since, the path of its most recent visit.
	LatestPathPerSourceSince(ctx context.Context, since time.Time) ([]SourcePath, error)

	// DeleteOlderThan removes visits older than cutoff and returns the
	// number of rows removed. Used only by the optional retention job.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
