package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/folioworks/api/pkg/domain/visit"
)

// breakdownColumns whitelists the columns BreakdownSince may group by.
var breakdownColumns = map[string]bool{
	"browser": true,
	"device":  true,
	"os":      true,
	"referer": true,
}

// VisitRepository implements visit.Repository using PostgreSQL.
type VisitRepository struct {
	db *DB
}

// NewVisitRepository creates a new VisitRepository.
func NewVisitRepository(db *DB) *VisitRepository {
	return &VisitRepository{db: db}
}

// Create persists a new visit record.
func (r *VisitRepository) Create(ctx context.Context, v *visit.Visit) error {
	query := `
		INSERT INTO visits (
			id, source_addr, path, method, user_agent,
			device, browser, os, referer, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		v.ID().String(),
		v.SourceAddr(),
		v.Path(),
		v.Method(),
		v.UserAgent(),
		v.Device(),
		v.Browser(),
		v.OS(),
		v.Referer(),
		v.Timestamp(),
	)
	if err != nil {
		return fmt.Errorf("failed to create visit: %w", err)
	}
	return nil
}

// CountSince returns the number of visits at or after since.
func (r *VisitRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM visits WHERE created_at >= $1`, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count visits: %w", err)
	}
	return count, nil
}

// CountDistinctSourcesSince returns the number of distinct source addresses
// seen at or after since.
func (r *VisitRepository) CountDistinctSourcesSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT source_addr) FROM visits WHERE created_at >= $1`, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count distinct sources: %w", err)
	}
	return count, nil
}

// CountBySourceSince returns the number of visits from one source at or
// after since.
func (r *VisitRepository) CountBySourceSince(ctx context.Context, sourceAddr string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM visits WHERE source_addr = $1 AND created_at >= $2`,
		sourceAddr, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count visits by source: %w", err)
	}
	return count, nil
}

// DistinctPathsBySourceSince returns the distinct paths a source touched at
// or after since.
func (r *VisitRepository) DistinctPathsBySourceSince(ctx context.Context, sourceAddr string, since time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT path FROM visits WHERE source_addr = $1 AND created_at >= $2 ORDER BY path`,
		sourceAddr, since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list paths by source: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan path: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate paths: %w", err)
	}
	return paths, nil
}

// TopPathsSince returns the most visited paths, ranked descending.
func (r *VisitRepository) TopPathsSince(ctx context.Context, since time.Time, limit int) ([]visit.PathCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT path, COUNT(*) AS visits
		FROM visits
		WHERE created_at >= $1
		GROUP BY path
		ORDER BY visits DESC, path
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top paths: %w", err)
	}
	defer rows.Close()

	var results []visit.PathCount
	for rows.Next() {
		var pc visit.PathCount
		if err := rows.Scan(&pc.Path, &pc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan top path: %w", err)
		}
		results = append(results, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate top paths: %w", err)
	}
	return results, nil
}

// BreakdownSince returns visit counts grouped by the given field.
func (r *VisitRepository) BreakdownSince(ctx context.Context, field string, since time.Time, limit int) ([]visit.LabelCount, error) {
	if !breakdownColumns[field] {
		return nil, fmt.Errorf("invalid breakdown field: %q", field)
	}

	// field is whitelisted above; it cannot be parameterized in SQL.
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) AS visits
		FROM visits
		WHERE created_at >= $1
		GROUP BY %s
		ORDER BY visits DESC, %s
		LIMIT $2
	`, field, field, field)

	rows, err := r.db.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s breakdown: %w", field, err)
	}
	defer rows.Close()

	var results []visit.LabelCount
	for rows.Next() {
		var lc visit.LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan breakdown row: %w", err)
		}
		results = append(results, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate breakdown rows: %w", err)
	}
	return results, nil
}

// HourlyHistogramSince returns per-hour visit counts at or after since.
// Hours with no visits are absent from the result.
func (r *VisitRepository) HourlyHistogramSince(ctx context.Context, since time.Time) ([]visit.HourBucket, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date_trunc('hour', created_at) AS hour, COUNT(*) AS visits
		FROM visits
		WHERE created_at >= $1
		GROUP BY hour
		ORDER BY hour
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly histogram: %w", err)
	}
	defer rows.Close()

	var results []visit.HourBucket
	for rows.Next() {
		var hb visit.HourBucket
		if err := rows.Scan(&hb.Hour, &hb.Count); err != nil {
			return nil, fmt.Errorf("failed to scan histogram row: %w", err)
		}
		results = append(results, hb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate histogram rows: %w", err)
	}
	return results, nil
}

// LatestPathPerSourceSince returns, for each source active at or after since,
// the path of its most recent visit.
func (r *VisitRepository) LatestPathPerSourceSince(ctx context.Context, since time.Time) ([]visit.SourcePath, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT ON (source_addr) source_addr, path
		FROM visits
		WHERE created_at >= $1
		ORDER BY source_addr, created_at DESC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest paths: %w", err)
	}
	defer rows.Close()

	var results []visit.SourcePath
	for rows.Next() {
		var sp visit.SourcePath
		if err := rows.Scan(&sp.SourceAddr, &sp.Path); err != nil {
			return nil, fmt.Errorf("failed to scan latest path row: %w", err)
		}
		results = append(results, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate latest path rows: %w", err)
	}
	return results, nil
}

// DeleteOlderThan removes visits older than cutoff.
func (r *VisitRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM visits WHERE created_at < $1`, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old visits: %w", err)
	}
	return result.RowsAffected()
}
