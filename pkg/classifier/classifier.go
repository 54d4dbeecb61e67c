// Package classifier inspects request URLs and user-agent strings for known
// attack signatures. It is a heuristic tripwire, not a WAF: matching is coarse
// substring work with zero external dependencies, and false positives are an
// accepted trade for O(rule count) evaluation per request.
package classifier

import "strings"

// Rule is a single named signature check. Rules are evaluated in order and
// the first match wins.
type Rule struct {
	// Name identifies the rule in threat logs, e.g. "path_traversal".
	Name string

	// MatchURL reports whether the lowercased request URL matches.
	// Nil when the rule only inspects the user agent.
	MatchURL func(url string) bool

	// MatchUserAgent reports whether the lowercased user agent matches.
	// Nil when the rule only inspects the URL.
	MatchUserAgent func(ua string) bool
}

// scannerAgents is the denylist of known scanner tool names matched as
// case-insensitive substrings of the user agent.
var scannerAgents = []string{
	"sqlmap",
	"nikto",
	"nessus",
	"nmap",
	"masscan",
	"zgrab",
	"gobuster",
	"dirbuster",
	"wpscan",
	"hydra",
}

// scriptTokens are injection tokens matched anywhere in the URL.
var scriptTokens = []string{
	"script",
	"alert(",
	"eval(",
	"exec(",
	"system(",
}

// defaultRules is the built-in ordered signature list. New signatures are
// additive: append a Rule rather than editing match functions.
var defaultRules = []Rule{
	{
		Name:     "path_traversal",
		MatchURL: func(url string) bool { return strings.Contains(url, "../") },
	},
	{
		Name: "sql_injection",
		MatchURL: func(url string) bool {
			return containsPair(url, "select", "from") || containsPair(url, "union", "select")
		},
	},
	{
		Name: "script_injection",
		MatchURL: func(url string) bool {
			for _, tok := range scriptTokens {
				if strings.Contains(url, tok) {
					return true
				}
			}
			return false
		},
	},
	{
		Name: "scanner_user_agent",
		MatchUserAgent: func(ua string) bool {
			for _, name := range scannerAgents {
				if strings.Contains(ua, name) {
					return true
				}
			}
			return false
		},
	},
}

// Classifier evaluates an ordered rule list against inbound requests.
type Classifier struct {
	rules []Rule
}

// New returns a Classifier with the built-in signature rules.
func New() *Classifier {
	return &Classifier{rules: defaultRules}
}

// NewWithRules returns a Classifier using the given rules. The built-in
// rules are not included.
func NewWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Match returns the first rule matching the URL or user agent, and whether
// any rule matched. Unrecognized or empty input never matches.
func (c *Classifier) Match(url, userAgent string) (Rule, bool) {
	loweredURL := strings.ToLower(url)
	loweredUA := strings.ToLower(userAgent)

	for _, rule := range c.rules {
		if rule.MatchURL != nil && loweredURL != "" && rule.MatchURL(loweredURL) {
			return rule, true
		}
		if rule.MatchUserAgent != nil && loweredUA != "" && rule.MatchUserAgent(loweredUA) {
			return rule, true
		}
	}
	return Rule{}, false
}

// Classify reports whether the request looks suspicious.
func (c *Classifier) Classify(url, userAgent string) bool {
	_, suspicious := c.Match(url, userAgent)
	return suspicious
}

// containsPair reports whether first appears in s with second somewhere
// after it. Catches token sequences like "select ... from" regardless of
// what sits between them.
func containsPair(s, first, second string) bool {
	idx := strings.Index(s, first)
	if idx < 0 {
		return false
	}
	return strings.Contains(s[idx+len(first):], second)
}
