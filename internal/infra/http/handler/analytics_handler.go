package handler

import (
	"net/http"

	"github.com/folioworks/api/internal/app"
	"github.com/folioworks/api/pkg/apierror"
	"github.com/folioworks/api/pkg/domain/shared"
	"github.com/folioworks/api/pkg/logger"
	"github.com/folioworks/api/pkg/validator"
)

// maxIngestBodySize caps the analytics ingest payload at 10KB.
const maxIngestBodySize = 10 << 10

// AnalyticsHandler handles analytics dashboard and ingest requests.
type AnalyticsHandler struct {
	analytics *app.AnalyticsService
	visits    *app.VisitService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analytics *app.AnalyticsService, visits *app.VisitService, v *validator.Validator, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		visits:    visits,
		validator: v,
		logger:    log,
	}
}

// Summary handles GET /api/v1/analytics?timeRange=…
// An omitted timeRange defaults to 24h; an unknown one is a 400.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	timeRange := shared.TimeRange24h
	if raw := r.URL.Query().Get("timeRange"); raw != "" {
		parsed, err := shared.ParseTimeRange(raw)
		if err != nil {
			apierror.BadRequest("timeRange must be one of: 1h, 24h, 7d, 30d").WriteJSON(w)
			return
		}
		timeRange = parsed
	}

	snapshot, err := h.analytics.Summarize(r.Context(), timeRange)
	if err != nil {
		h.logger.Error("analytics summary failed", "error", err)
		apierror.InternalError(err).WriteJSON(w)
		return
	}

	writeJSONResponse(w, http.StatusOK, snapshot)
}

// RealTime handles GET /api/v1/analytics/real-time?lastMinutes=…
func (h *AnalyticsHandler) RealTime(w http.ResponseWriter, r *http.Request) {
	lastMinutes := parseQueryInt(r.URL.Query().Get("lastMinutes"), app.DefaultRealTimeMinutes)

	stats, err := h.analytics.RealTime(r.Context(), lastMinutes)
	if err != nil {
		h.logger.Error("real-time analytics failed", "error", err)
		apierror.InternalError(err).WriteJSON(w)
		return
	}

	writeJSONResponse(w, http.StatusOK, stats)
}

// LogVisitRequest is the ingest payload posted by the site frontend.
type LogVisitRequest struct {
	Path      string `json:"path" validate:"required,max=2048"`
	Method    string `json:"method" validate:"omitempty,max=10"`
	IP        string `json:"ip" validate:"omitempty,max=64"`
	UserAgent string `json:"userAgent" validate:"omitempty,max=1024"`
	Referer   string `json:"referer" validate:"omitempty,max=2048"`
}

// Log handles POST /api/v1/analytics/log. The body is capped at 10KB;
// oversized payloads get a 413. Recording itself is fail-silent, so the
// response only reflects payload validity.
func (h *AnalyticsHandler) Log(w http.ResponseWriter, r *http.Request) {
	var req LogVisitRequest
	if apiErr := decodeJSON(w, r, maxIngestBodySize, &req); apiErr != nil {
		apiErr.WriteJSON(w)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		apierror.ValidationFailed("Invalid visit payload", err).WriteJSON(w)
		return
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	h.visits.Record(r.Context(), app.RecordVisitInput{
		SourceAddr: req.IP,
		Path:       req.Path,
		Method:     method,
		UserAgent:  req.UserAgent,
		Referer:    req.Referer,
	})

	writeJSONResponse(w, http.StatusOK, map[string]any{"success": true})
}
