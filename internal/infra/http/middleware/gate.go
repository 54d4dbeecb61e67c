package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/folioworks/api/internal/app"
	"github.com/folioworks/api/internal/metrics"
	"github.com/folioworks/api/pkg/apierror"
	"github.com/folioworks/api/pkg/classifier"
	"github.com/folioworks/api/pkg/logger"
)

// GateConfig configures the request gate.
type GateConfig struct {
	// RedirectURL receives denied browser navigations.
	RedirectURL string
	// LogTimeout bounds the fire-and-forget recording calls.
	LogTimeout time.Duration
	// SkipPaths bypass the gate entirely (health, metrics, ingest, the
	// blocked page itself).
	SkipPaths []string
	// SkipPrefixes bypass the gate by path prefix (static assets).
	SkipPrefixes []string
}

// DefaultGateConfig returns the default gate configuration.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		RedirectURL: "/blocked",
		LogTimeout:  2 * time.Second,
		SkipPaths: []string{
			"/health",
			"/metrics",
			"/blocked",
			"/favicon.ico",
			"/api/v1/analytics/log",
		},
		SkipPrefixes: []string{
			"/static/",
			"/assets/",
		},
	}
}

// Gate screens every request before it reaches a handler. Suspicious
// requests are logged as threats and denied; clean requests are logged as
// visits and checked for bursts. All recording is fire-and-forget so a slow
// or broken store never delays a response.
type Gate struct {
	classifier *classifier.Classifier
	visits     *app.VisitService
	threats    *app.ThreatService
	cfg        GateConfig
	skipPaths  map[string]bool
	log        *logger.Logger
}

// NewGate creates a request gate.
func NewGate(c *classifier.Classifier, visits *app.VisitService, threats *app.ThreatService, cfg GateConfig, log *logger.Logger) *Gate {
	if cfg.LogTimeout <= 0 {
		cfg.LogTimeout = 2 * time.Second
	}
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = "/blocked"
	}

	skipPaths := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skipPaths[p] = true
	}

	return &Gate{
		classifier: c,
		visits:     visits,
		threats:    threats,
		cfg:        cfg,
		skipPaths:  skipPaths,
		log:        log,
	}
}

// Middleware returns the gate middleware.
func (g *Gate) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g.skip(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			url := r.URL.RequestURI()
			userAgent := r.UserAgent()
			ip := GetClientIP(r)

			if rule, matched := g.classifier.Match(url, userAgent); matched {
				g.log.Warn("suspicious request denied",
					"rule", rule.Name,
					"ip", ip,
					"path", r.URL.Path,
					"user_agent", userAgent,
					"request_id", GetRequestID(r.Context()),
				)
				metrics.ClassifierDenialsTotal.WithLabelValues(rule.Name).Inc()

				g.recordAsync(func(ctx context.Context) {
					g.threats.Record(ctx, app.RecordThreatInput{
						SourceAddr: ip,
						Path:       r.URL.Path,
						Trigger:    app.TriggerSignature,
					})
				})

				g.deny(w, r)
				return
			}

			g.recordAsync(func(ctx context.Context) {
				g.visits.Record(ctx, app.RecordVisitInput{
					SourceAddr: ip,
					Path:       r.URL.Path,
					Method:     r.Method,
					UserAgent:  userAgent,
					Referer:    r.Referer(),
				})
				g.threats.DetectBurst(ctx, ip)
			})

			next.ServeHTTP(w, r)
		})
	}
}

// deny writes the denial response: JSON for API-shaped requests, a redirect
// to the blocked page for browser navigations.
func (g *Gate) deny(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		apierror.Forbidden("Request blocked").WriteJSON(w)
		return
	}
	http.Redirect(w, r, g.cfg.RedirectURL, http.StatusFound)
}

// recordAsync runs fn on a detached context so recording survives the
// request ending but cannot outlive the timeout.
func (g *Gate) recordAsync(fn func(ctx context.Context)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), g.cfg.LogTimeout)
		defer cancel()
		fn(ctx)
	}()
}

func (g *Gate) skip(path string) bool {
	if g.skipPaths[path] {
		return true
	}
	for _, prefix := range g.cfg.SkipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// isAPIRequest reports whether the client expects a JSON response.
func isAPIRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
