package handler

import (
	"fmt"
	"net/http"

	"github.com/folioworks/api/internal/app"
	"github.com/folioworks/api/pkg/apierror"
	"github.com/folioworks/api/pkg/domain/shared"
	"github.com/folioworks/api/pkg/export"
	"github.com/folioworks/api/pkg/logger"
)

// SecurityHandler handles the security dashboard and blacklist exports.
type SecurityHandler struct {
	threats  *app.ThreatService
	renderer *export.Renderer
	logger   *logger.Logger
}

// NewSecurityHandler creates a new SecurityHandler.
func NewSecurityHandler(threats *app.ThreatService, renderer *export.Renderer, log *logger.Logger) *SecurityHandler {
	return &SecurityHandler{
		threats:  threats,
		renderer: renderer,
		logger:   log,
	}
}

// Summary handles GET /api/v1/security?timeRange=…
func (h *SecurityHandler) Summary(w http.ResponseWriter, r *http.Request) {
	timeRange := shared.TimeRange24h
	if raw := r.URL.Query().Get("timeRange"); raw != "" {
		parsed, err := shared.ParseTimeRange(raw)
		if err != nil {
			apierror.BadRequest("timeRange must be one of: 1h, 24h, 7d, 30d").WriteJSON(w)
			return
		}
		timeRange = parsed
	}

	summary, err := h.threats.Summary(r.Context(), timeRange)
	if err != nil {
		h.logger.Error("security summary failed", "error", err)
		apierror.InternalError(err).WriteJSON(w)
		return
	}

	writeJSONResponse(w, http.StatusOK, summary)
}

// Blacklist handles GET /api/v1/security/blacklist?format=…
// The endpoint is public: the blacklist is published so other operators can
// consume it. An unknown format is a 400, never a silent default.
func (h *SecurityHandler) Blacklist(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		raw = string(export.FormatTXT)
	}

	format, err := export.ParseFormat(raw)
	if err != nil {
		apierror.BadRequest("format must be one of: txt, json, csv, apache, nginx").WriteJSON(w)
		return
	}

	entries, err := h.threats.Blacklist(r.Context())
	if err != nil {
		h.logger.Error("blacklist export failed", "error", err)
		apierror.InternalError(err).WriteJSON(w)
		return
	}

	payload, err := h.renderer.Render(entries, format)
	if err != nil {
		h.logger.Error("blacklist rendering failed", "format", format, "error", err)
		apierror.InternalError(err).WriteJSON(w)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
