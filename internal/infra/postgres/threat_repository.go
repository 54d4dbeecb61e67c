package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/folioworks/api/pkg/domain/shared"
	"github.com/folioworks/api/pkg/domain/threat"
)

// ThreatRepository implements threat.Repository using PostgreSQL.
type ThreatRepository struct {
	db *DB
}

// NewThreatRepository creates a new ThreatRepository.
func NewThreatRepository(db *DB) *ThreatRepository {
	return &ThreatRepository{db: db}
}

// Create persists a new threat record.
func (r *ThreatRepository) Create(ctx context.Context, t *threat.Threat) error {
	query := `
		INSERT INTO threats (
			id, source_addr, request_count, window_seconds,
			paths, blocked, detected_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		t.ID().String(),
		t.SourceAddr(),
		t.RequestCount(),
		t.WindowSeconds(),
		pq.Array(t.Paths()),
		t.Blocked(),
		t.DetectedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to create threat: %w", err)
	}
	return nil
}

// CountSince returns the number of threat records at or after since.
func (r *ThreatRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM threats WHERE detected_at >= $1`, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count threats: %w", err)
	}
	return count, nil
}

// CountDistinctSourcesSince returns the number of distinct offending sources
// at or after since.
func (r *ThreatRepository) CountDistinctSourcesSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT source_addr) FROM threats WHERE detected_at >= $1`, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count distinct threat sources: %w", err)
	}
	return count, nil
}

// ListRecentSince returns the most recent threat records, newest first.
func (r *ThreatRepository) ListRecentSince(ctx context.Context, since time.Time, limit int) ([]*threat.Threat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source_addr, request_count, window_seconds,
		       paths, blocked, detected_at
		FROM threats
		WHERE detected_at >= $1
		ORDER BY detected_at DESC
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list threats: %w", err)
	}
	defer rows.Close()

	var results []*threat.Threat
	for rows.Next() {
		var (
			idStr         string
			sourceAddr    string
			requestCount  int
			windowSeconds int
			paths         pq.StringArray
			blocked       bool
			detectedAt    time.Time
		)
		if err := rows.Scan(&idStr, &sourceAddr, &requestCount, &windowSeconds, &paths, &blocked, &detectedAt); err != nil {
			return nil, fmt.Errorf("failed to scan threat: %w", err)
		}

		id, err := shared.IDFromString(idStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse threat id: %w", err)
		}

		results = append(results, threat.Reconstitute(
			id, sourceAddr, requestCount, windowSeconds, paths, blocked, detectedAt,
		))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate threats: %w", err)
	}
	return results, nil
}

// TopAttackersSince aggregates threats per source at or after since, ranked
// by attempt count descending with ties broken by first-seen order.
func (r *ThreatRepository) TopAttackersSince(ctx context.Context, since time.Time, limit int) ([]threat.BlacklistEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT source_addr, COUNT(*) AS attempts, MAX(detected_at) AS last_seen
		FROM threats
		WHERE detected_at >= $1
		GROUP BY source_addr
		ORDER BY attempts DESC, MIN(detected_at)
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top attackers: %w", err)
	}
	defer rows.Close()

	var results []threat.BlacklistEntry
	for rows.Next() {
		var e threat.BlacklistEntry
		if err := rows.Scan(&e.IP, &e.AttemptCount, &e.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan top attacker: %w", err)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate top attackers: %w", err)
	}
	return results, nil
}

// DeleteOlderThan removes threats detected before cutoff.
func (r *ThreatRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM threats WHERE detected_at < $1`, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old threats: %w", err)
	}
	return result.RowsAffected()
}
