package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folioworks/api/internal/app"
	"github.com/folioworks/api/pkg/domain/threat"
	"github.com/folioworks/api/pkg/export"
	"github.com/folioworks/api/pkg/logger"
)

func newSecurityFixture(repo *stubThreatRepo) *SecurityHandler {
	log := logger.NewNop()
	svc := app.NewThreatService(repo, &stubVisitRepo{}, app.ThreatConfig{}, log)
	return NewSecurityHandler(svc, export.NewRenderer(), log)
}

func TestSecurityHandler_Summary(t *testing.T) {
	repo := &stubThreatRepo{
		total:   7,
		sources: 2,
		top: []threat.BlacklistEntry{
			{IP: "203.0.113.9", AttemptCount: 5, LastSeen: time.Now().UTC()},
		},
	}
	h := newSecurityFixture(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/security?timeRange=30d", nil)
	rec := httptest.NewRecorder()

	h.Summary(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var summary app.SecuritySummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "30d", string(summary.TimeRange))
	assert.Equal(t, 7, summary.TotalAttempts)
	assert.Equal(t, 2, summary.BlockedIPs)
	require.Len(t, summary.TopAttackerIPs, 1)
}

func TestSecurityHandler_Summary_InvalidRange(t *testing.T) {
	h := newSecurityFixture(&stubThreatRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/security?timeRange=forever", nil)
	rec := httptest.NewRecorder()

	h.Summary(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSecurityHandler_Blacklist_DefaultTXT(t *testing.T) {
	repo := &stubThreatRepo{
		top: []threat.BlacklistEntry{
			{IP: "203.0.113.9", AttemptCount: 42},
			{IP: "198.51.100.4", AttemptCount: 17},
		},
	}
	h := newSecurityFixture(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/security/blacklist", nil)
	rec := httptest.NewRecorder()

	h.Blacklist(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "ip-blacklist.txt")
	assert.Equal(t, "203.0.113.9  42\n198.51.100.4  17\n", rec.Body.String())
}

func TestSecurityHandler_Blacklist_JSON(t *testing.T) {
	repo := &stubThreatRepo{
		top: []threat.BlacklistEntry{{IP: "203.0.113.9", AttemptCount: 42}},
	}
	h := newSecurityFixture(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/security/blacklist?format=json", nil)
	rec := httptest.NewRecorder()

	h.Blacklist(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var entries []threat.BlacklistEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "203.0.113.9", entries[0].IP)
}

func TestSecurityHandler_Blacklist_Nginx(t *testing.T) {
	repo := &stubThreatRepo{
		top: []threat.BlacklistEntry{{IP: "203.0.113.9", AttemptCount: 42}},
	}
	h := newSecurityFixture(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/security/blacklist?format=nginx", nil)
	rec := httptest.NewRecorder()

	h.Blacklist(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "deny 203.0.113.9;")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "nginx-deny.conf")
}

func TestSecurityHandler_Blacklist_UnknownFormat(t *testing.T) {
	h := newSecurityFixture(&stubThreatRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/security/blacklist?format=xml", nil)
	rec := httptest.NewRecorder()

	h.Blacklist(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "txt, json, csv, apache, nginx")
}

func TestSecurityHandler_Blacklist_Empty(t *testing.T) {
	h := newSecurityFixture(&stubThreatRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/security/blacklist", nil)
	rec := httptest.NewRecorder()

	h.Blacklist(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}
