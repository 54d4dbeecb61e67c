// Package export renders ranked blacklist entries into the published threat
// intel formats: plain text, JSON, CSV and web-server deny-rule fragments.
// Every renderer produces the complete document in memory; callers either get
// the full payload or an error, never a partial file.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/folioworks/api/pkg/domain/shared"
	"github.com/folioworks/api/pkg/domain/threat"
)

// Format identifies an export format.
type Format string

// Supported formats.
const (
	FormatTXT    Format = "txt"
	FormatJSON   Format = "json"
	FormatCSV    Format = "csv"
	FormatApache Format = "apache"
	FormatNginx  Format = "nginx"
)

// ParseFormat parses a format from its query-parameter form. Unknown values
// are rejected; there is no default fallback.
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	switch f {
	case FormatTXT, FormatJSON, FormatCSV, FormatApache, FormatNginx:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unsupported export format %q", shared.ErrValidation, s)
	}
}

// ContentType returns the MIME type for the rendered document.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Filename returns the attachment filename for the rendered document.
func (f Format) Filename() string {
	switch f {
	case FormatJSON:
		return "ip-blacklist.json"
	case FormatCSV:
		return "ip-blacklist.csv"
	case FormatApache:
		return "apache-deny.conf"
	case FormatNginx:
		return "nginx-deny.conf"
	default:
		return "ip-blacklist.txt"
	}
}

// Renderer renders blacklist entries. Generation time is injected so output
// is reproducible in tests.
type Renderer struct {
	now func() time.Time
}

// NewRenderer creates a Renderer using wall-clock time.
func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// NewRendererWithClock creates a Renderer with a fixed clock.
func NewRendererWithClock(now func() time.Time) *Renderer {
	return &Renderer{now: now}
}

// Render renders entries in the given format. Entry order is preserved.
// An empty entry list yields a valid empty document for every format.
func (r *Renderer) Render(entries []threat.BlacklistEntry, format Format) ([]byte, error) {
	switch format {
	case FormatTXT:
		return r.renderTXT(entries), nil
	case FormatJSON:
		return r.renderJSON(entries)
	case FormatCSV:
		return r.renderCSV(entries)
	case FormatApache:
		return r.renderConfig(entries, "# Apache 2.4 deny rules",
			func(ip string) string { return "Deny from " + ip }), nil
	case FormatNginx:
		return r.renderConfig(entries, "# nginx deny rules",
			func(ip string) string { return "deny " + ip + ";" }), nil
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", shared.ErrValidation, format)
	}
}

func (r *Renderer) renderTXT(entries []threat.BlacklistEntry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		buf.WriteString(e.IP)
		buf.WriteString("  ")
		buf.WriteString(strconv.Itoa(e.AttemptCount))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func (r *Renderer) renderJSON(entries []threat.BlacklistEntry) ([]byte, error) {
	// Marshal an empty slice, not nil, so the empty document is "[]".
	if entries == nil {
		entries = []threat.BlacklistEntry{}
	}

	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render json: %w", err)
	}
	return append(out, '\n'), nil
}

func (r *Renderer) renderCSV(entries []threat.BlacklistEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"ip", "count", "lastSeen"}); err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	for _, e := range entries {
		record := []string{
			e.IP,
			strconv.Itoa(e.AttemptCount),
			e.LastSeen.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("render csv: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) renderConfig(entries []threat.BlacklistEntry, title string, directive func(ip string) string) []byte {
	var buf bytes.Buffer
	buf.WriteString(title)
	buf.WriteByte('\n')
	fmt.Fprintf(&buf, "# Generated at %s\n", r.now().UTC().Format(time.RFC3339))
	buf.WriteString("# Free to use for network defense.\n")

	for _, e := range entries {
		buf.WriteString(directive(e.IP))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
