// Package visit holds the visit domain: one immutable record per accepted
// request, used by the analytics read side.
package visit

import (
	"time"

	"github.com/folioworks/api/pkg/domain/shared"
	"github.com/folioworks/api/pkg/useragent"
)

// UnknownSource is the shared bucket for requests whose client address
// could not be determined.
const UnknownSource = "unknown"

// Visit represents one accepted request. Records are immutable once written;
// the subsystem never updates or deletes them.
type Visit struct {
	id         shared.ID
	sourceAddr string
	path       string
	method     string
	userAgent  string
	device     string
	browser    string
	os         string
	referer    string
	timestamp  time.Time
}

// New creates a visit record for an inbound request. Device, browser and OS
// labels are derived from the raw user agent; an empty source address falls
// back to the shared "unknown" bucket.
func New(sourceAddr, path, method, userAgent, referer string) *Visit {
	if sourceAddr == "" {
		sourceAddr = UnknownSource
	}

	info := useragent.Parse(userAgent)

	return &Visit{
		id:         shared.NewID(),
		sourceAddr: sourceAddr,
		path:       path,
		method:     method,
		userAgent:  userAgent,
		device:     info.Device,
		browser:    info.Browser,
		os:         info.OS,
		referer:    referer,
		timestamp:  time.Now().UTC(),
	}
}

// Reconstitute recreates a Visit from persistence.
func Reconstitute(
	id shared.ID,
	sourceAddr, path, method, userAgent string,
	device, browser, os, referer string,
	timestamp time.Time,
) *Visit {
	return &Visit{
		id:         id,
		sourceAddr: sourceAddr,
		path:       path,
		method:     method,
		userAgent:  userAgent,
		device:     device,
		browser:    browser,
		os:         os,
		referer:    referer,
		timestamp:  timestamp,
	}
}

// ID returns the record ID.
func (v *Visit) ID() shared.ID { return v.id }

// SourceAddr returns the best-effort client IP.
func (v *Visit) SourceAddr() string { return v.sourceAddr }

// Path returns the request's logical route.
func (v *Visit) Path() string { return v.path }

// Method returns the HTTP method.
func (v *Visit) Method() string { return v.method }

// UserAgent returns the raw user-agent string, possibly empty.
func (v *Visit) UserAgent() string { return v.userAgent }

// Device returns the derived device class.
func (v *Visit) Device() string { return v.device }

// Browser returns the derived browser label.
func (v *Visit) Browser() string { return v.browser }

// OS returns the derived operating system label.
func (v *Visit) OS() string { return v.os }

// Referer returns the referer header value, possibly empty.
func (v *Visit) Referer() string { return v.referer }

// Timestamp returns the server-assigned write time.
func (v *Visit) Timestamp() time.Time { return v.timestamp }
