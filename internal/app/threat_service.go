package app

import (
	"context"
	"fmt"
	"time"

	"github.com/folioworks/api/internal/metrics"
	"github.com/folioworks/api/pkg/domain/shared"
	"github.com/folioworks/api/pkg/domain/threat"
	"github.com/folioworks/api/pkg/domain/visit"
	"github.com/folioworks/api/pkg/logger"
)

// Threat triggers for metrics labels.
const (
	TriggerSignature = "signature"
	TriggerBurst     = "burst"
)

const recentAttemptsLimit = 20

// RecordThreatInput carries one denied request into the threat recorder.
type RecordThreatInput struct {
	SourceAddr    string
	Path          string
	RequestCount  int
	WindowSeconds int
	Trigger       string
}

// SecuritySummary is the aggregated security view over one time range.
type SecuritySummary struct {
	TimeRange      shared.TimeRange        `json:"timeRange"`
	TotalAttempts  int                     `json:"totalAttempts"`
	BlockedIPs     int                     `json:"blockedIPs"`
	RecentAttempts []ThreatEvent           `json:"recentAttempts"`
	TopAttackerIPs []threat.BlacklistEntry `json:"topAttackerIPs"`
	GeneratedAt    time.Time               `json:"generatedAt"`
}

// ThreatEvent is the read model for one recorded threat.
type ThreatEvent struct {
	IP           string    `json:"ip"`
	RequestCount int       `json:"requestCount"`
	Paths        []string  `json:"paths"`
	Blocked      bool      `json:"blocked"`
	DetectedAt   time.Time `json:"detectedAt"`
}

// ThreatConfig holds burst detection settings.
type ThreatConfig struct {
	// BurstThreshold is the per-source request count that flags a burst.
	BurstThreshold int
	// BurstWindow is the look-back window for burst detection.
	BurstWindow time.Duration
	// BlacklistLimit caps exported blacklist entries.
	BlacklistLimit int
	// BlacklistWindow is the look-back window for blacklist exports.
	BlacklistWindow time.Duration
}

// ThreatService records threat events, detects request bursts and serves the
// security dashboard and blacklist exports.
type ThreatService struct {
	threats threat.Repository
	visits  visit.Repository
	cfg     ThreatConfig
	logger  *logger.Logger
	now     func() time.Time
}

// NewThreatService creates a new ThreatService.
func NewThreatService(threats threat.Repository, visits visit.Repository, cfg ThreatConfig, log *logger.Logger) *ThreatService {
	if cfg.BurstThreshold <= 0 {
		cfg.BurstThreshold = 100
	}
	if cfg.BurstWindow <= 0 {
		cfg.BurstWindow = time.Minute
	}
	if cfg.BlacklistLimit <= 0 {
		cfg.BlacklistLimit = 500
	}
	if cfg.BlacklistWindow <= 0 {
		cfg.BlacklistWindow = 30 * 24 * time.Hour
	}

	return &ThreatService{
		threats: threats,
		visits:  visits,
		cfg:     cfg,
		logger:  log,
		now:     time.Now,
	}
}

// WithClock overrides the service clock. Intended for tests.
func (s *ThreatService) WithClock(now func() time.Time) *ThreatService {
	s.now = now
	return s
}

// Record persists one threat event. Like visit recording it is best-effort:
// errors are logged and swallowed.
func (s *ThreatService) Record(ctx context.Context, input RecordThreatInput) {
	var paths []string
	if input.Path != "" {
		paths = []string{input.Path}
	}

	t := threat.New(input.SourceAddr, input.RequestCount, input.WindowSeconds, paths)

	if err := s.threats.Create(ctx, t); err != nil {
		s.logger.Error("failed to record threat",
			"source", input.SourceAddr,
			"trigger", input.Trigger,
			"error", err,
		)
		return
	}

	metrics.ThreatsDetectedTotal.WithLabelValues(input.Trigger).Inc()
}

// DetectBurst checks whether sourceAddr has exceeded the burst threshold in
// the trailing window, and if so records one threat event carrying the
// distinct paths the source touched. The check runs against the visit store,
// so it sees traffic across all server instances. It fires again on every
// request while the source stays over the threshold.
func (s *ThreatService) DetectBurst(ctx context.Context, sourceAddr string) {
	if sourceAddr == "" {
		return
	}

	since := s.now().Add(-s.cfg.BurstWindow)

	count, err := s.visits.CountBySourceSince(ctx, sourceAddr, since)
	if err != nil {
		s.logger.Error("burst detection count failed",
			"source", sourceAddr,
			"error", err,
		)
		return
	}
	if count < s.cfg.BurstThreshold {
		return
	}

	paths, err := s.visits.DistinctPathsBySourceSince(ctx, sourceAddr, since)
	if err != nil {
		s.logger.Error("burst detection path listing failed",
			"source", sourceAddr,
			"error", err,
		)
		paths = nil
	}

	t := threat.New(sourceAddr, count, int(s.cfg.BurstWindow.Seconds()), paths)
	if err := s.threats.Create(ctx, t); err != nil {
		s.logger.Error("failed to record burst threat",
			"source", sourceAddr,
			"count", count,
			"error", err,
		)
		return
	}

	metrics.ThreatsDetectedTotal.WithLabelValues(TriggerBurst).Inc()
	s.logger.Warn("request burst detected",
		"source", sourceAddr,
		"count", count,
		"window_seconds", int(s.cfg.BurstWindow.Seconds()),
	)
}

// TopAttackers returns the ranked blacklist over the given time range.
func (s *ThreatService) TopAttackers(ctx context.Context, timeRange shared.TimeRange) ([]threat.BlacklistEntry, error) {
	if !timeRange.IsValid() {
		timeRange = shared.TimeRange24h
	}

	since := s.now().UTC().Add(-timeRange.Duration())
	entries, err := s.threats.TopAttackersSince(ctx, since, s.cfg.BlacklistLimit)
	if err != nil {
		return nil, fmt.Errorf("top attackers: %w", err)
	}
	return entries, nil
}

// Blacklist returns the export blacklist over the configured export window.
func (s *ThreatService) Blacklist(ctx context.Context) ([]threat.BlacklistEntry, error) {
	since := s.now().UTC().Add(-s.cfg.BlacklistWindow)
	entries, err := s.threats.TopAttackersSince(ctx, since, s.cfg.BlacklistLimit)
	if err != nil {
		return nil, fmt.Errorf("blacklist: %w", err)
	}
	return entries, nil
}

// Summary builds the security dashboard view for the given time range.
func (s *ThreatService) Summary(ctx context.Context, timeRange shared.TimeRange) (*SecuritySummary, error) {
	if !timeRange.IsValid() {
		timeRange = shared.TimeRange24h
	}

	now := s.now().UTC()
	since := now.Add(-timeRange.Duration())

	total, err := s.threats.CountSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("count threats: %w", err)
	}

	blockedIPs, err := s.threats.CountDistinctSourcesSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("count blocked ips: %w", err)
	}

	recent, err := s.threats.ListRecentSince(ctx, since, recentAttemptsLimit)
	if err != nil {
		return nil, fmt.Errorf("recent threats: %w", err)
	}

	top, err := s.threats.TopAttackersSince(ctx, since, s.cfg.BlacklistLimit)
	if err != nil {
		return nil, fmt.Errorf("top attackers: %w", err)
	}

	summary := &SecuritySummary{
		TimeRange:      timeRange,
		TotalAttempts:  total,
		BlockedIPs:     blockedIPs,
		RecentAttempts: make([]ThreatEvent, 0, len(recent)),
		TopAttackerIPs: top,
		GeneratedAt:    now,
	}
	for _, t := range recent {
		summary.RecentAttempts = append(summary.RecentAttempts, ThreatEvent{
			IP:           t.SourceAddr(),
			RequestCount: t.RequestCount(),
			Paths:        t.Paths(),
			Blocked:      t.Blocked(),
			DetectedAt:   t.DetectedAt(),
		})
	}

	return summary, nil
}
