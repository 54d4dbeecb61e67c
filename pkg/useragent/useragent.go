// Package useragent derives device, browser and OS labels from raw
// user-agent strings via ordered substring rules. First match wins; anything
// unrecognized yields "unknown". This is deliberately shallow sniffing for
// analytics breakdowns, not full UA parsing.
package useragent

import "strings"

// Unknown is the fallback label when no signature matches.
const Unknown = "unknown"

// rule pairs a lowercase substring signature with its label.
type rule struct {
	token string
	label string
}

// Order matters: more specific signatures come first. "edg" must precede
// "chrome", "opr" must precede "chrome", and "android" must precede "linux".
var browserRules = []rule{
	{"edg", "Edge"},
	{"opr", "Opera"},
	{"opera", "Opera"},
	{"chrome", "Chrome"},
	{"safari", "Safari"},
	{"firefox", "Firefox"},
	{"msie", "Internet Explorer"},
	{"trident", "Internet Explorer"},
}

var osRules = []rule{
	{"android", "Android"},
	{"iphone", "iOS"},
	{"ipad", "iOS"},
	{"windows", "Windows"},
	{"mac os", "macOS"},
	{"macintosh", "macOS"},
	{"linux", "Linux"},
}

var deviceRules = []rule{
	{"ipad", "tablet"},
	{"tablet", "tablet"},
	{"mobile", "mobile"},
	{"iphone", "mobile"},
	{"android", "mobile"},
	{"bot", "bot"},
	{"crawler", "bot"},
	{"spider", "bot"},
	// Nearly every real browser UA starts with Mozilla/5.0; treat the
	// remainder as desktop traffic.
	{"mozilla", "desktop"},
	{"windows", "desktop"},
	{"macintosh", "desktop"},
	{"x11", "desktop"},
}

// Info holds the derived labels for one user-agent string.
type Info struct {
	Device  string
	Browser string
	OS      string
}

// Parse derives device, browser and OS labels from a raw user-agent string.
// An absent user agent yields Unknown for all three fields.
func Parse(raw string) Info {
	if raw == "" {
		return Info{Device: Unknown, Browser: Unknown, OS: Unknown}
	}

	lowered := strings.ToLower(raw)
	return Info{
		Device:  match(deviceRules, lowered),
		Browser: match(browserRules, lowered),
		OS:      match(osRules, lowered),
	}
}

func match(rules []rule, ua string) string {
	for _, r := range rules {
		if strings.Contains(ua, r.token) {
			return r.label
		}
	}
	return Unknown
}
