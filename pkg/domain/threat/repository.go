package threat

import (
	"context"
	"time"
)

// Repository defines storage access for threat records.
type Repository interface {
	// Create persists a new threat record.
	Create(ctx context.Context, t *Threat) error

	// CountSince returns the number of threat records at or after since.
	CountSince(ctx context.Context, since time.Time) (int, error)

	// CountDistinctSourcesSince returns the number of distinct offending
	// sources at or after since.
	CountDistinctSourcesSince(ctx context.Context, since time.Time) (int, error)

	// ListRecentSince returns the most recent threat records, newest first.
	ListRecentSince(ctx context.Context, since time.Time, limit int) ([]*Threat, error)

	// TopAttackersSince aggregates threats per source at or after since,
	// ranked by attempt count descending with ties broken by first-seen
	// order.
	TopAttackersSince(ctx context.Context, since time.Time, limit int) ([]BlacklistEntry, error)

	// DeleteOlderThan removes threats detected before cutoff and returns
	// the number of rows removed. Used only by the optional retention job.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
