// Package threat holds the threat domain: one record per detected burst or
// classifier denial, plus the blacklist read model.
package threat

import (
	"time"

	"github.com/folioworks/api/pkg/domain/shared"
)

// Threat represents one detected event. Immutable after creation.
type Threat struct {
	id            shared.ID
	sourceAddr    string
	requestCount  int
	windowSeconds int
	paths         []string
	blocked       bool
	detectedAt    time.Time
}

// New creates a threat record. The write path always marks events blocked;
// the read side renders a warning state for symmetry (see DESIGN.md).
func New(sourceAddr string, requestCount, windowSeconds int, paths []string) *Threat {
	if sourceAddr == "" {
		sourceAddr = "unknown"
	}

	return &Threat{
		id:            shared.NewID(),
		sourceAddr:    sourceAddr,
		requestCount:  requestCount,
		windowSeconds: windowSeconds,
		paths:         paths,
		blocked:       true,
		detectedAt:    time.Now().UTC(),
	}
}

// Reconstitute recreates a Threat from persistence.
func Reconstitute(
	id shared.ID,
	sourceAddr string,
	requestCount, windowSeconds int,
	paths []string,
	blocked bool,
	detectedAt time.Time,
) *Threat {
	return &Threat{
		id:            id,
		sourceAddr:    sourceAddr,
		requestCount:  requestCount,
		windowSeconds: windowSeconds,
		paths:         paths,
		blocked:       blocked,
		detectedAt:    detectedAt,
	}
}

// ID returns the record ID.
func (t *Threat) ID() shared.ID { return t.id }

// SourceAddr returns the offending source address.
func (t *Threat) SourceAddr() string { return t.sourceAddr }

// RequestCount returns the number of requests counted in the window.
func (t *Threat) RequestCount() int { return t.requestCount }

// WindowSeconds returns the width of the detection window.
func (t *Threat) WindowSeconds() int { return t.windowSeconds }

// Paths returns the distinct paths the source touched during the window.
func (t *Threat) Paths() []string { return t.paths }

// Blocked reports whether the gate denied the triggering request.
func (t *Threat) Blocked() bool { return t.blocked }

// DetectedAt returns the detection time.
func (t *Threat) DetectedAt() time.Time { return t.detectedAt }

// BlacklistEntry is the derived, per-source aggregation of threat records
// used for export rendering. Not stored.
type BlacklistEntry struct {
	IP           string    `json:"ip"`
	AttemptCount int       `json:"count"`
	LastSeen     time.Time `json:"last_seen"`
}
