package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_Match_AttackSignatures(t *testing.T) {
	c := New()

	tests := []struct {
		name      string
		url       string
		userAgent string
		wantRule  string
	}{
		{
			name:     "path traversal",
			url:      "/files?path=../../etc/passwd",
			wantRule: "path_traversal",
		},
		{
			name:     "path traversal uppercase",
			url:      "/FILES/../SECRET",
			wantRule: "path_traversal",
		},
		{
			name:     "sql injection select from",
			url:      "/search?q=SELECT+password+FROM+users",
			wantRule: "sql_injection",
		},
		{
			name:     "sql injection union select",
			url:      "/item?id=1+UNION+SELECT+null",
			wantRule: "sql_injection",
		},
		{
			name:     "script injection tag",
			url:      "/page?q=<script>alert(1)</script>",
			wantRule: "script_injection",
		},
		{
			name:     "script injection eval",
			url:      "/page?cb=eval(document.cookie)",
			wantRule: "script_injection",
		},
		{
			name:      "sqlmap user agent",
			url:       "/",
			userAgent: "sqlmap/1.7-dev (https://sqlmap.org)",
			wantRule:  "scanner_user_agent",
		},
		{
			name:      "nikto user agent mixed case",
			url:       "/",
			userAgent: "Mozilla/5.00 (Nikto/2.1.6)",
			wantRule:  "scanner_user_agent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, matched := c.Match(tt.url, tt.userAgent)

			assert.True(t, matched)
			assert.Equal(t, tt.wantRule, rule.Name)
		})
	}
}

func TestClassifier_Match_CleanRequests(t *testing.T) {
	c := New()

	tests := []struct {
		name      string
		url       string
		userAgent string
	}{
		{
			name:      "home page",
			url:       "/",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0",
		},
		{
			name:      "blog post with query",
			url:       "/blog/building-a-portfolio?ref=newsletter",
			userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Safari/605.1.15",
		},
		{
			name: "word selection in path is not sql",
			url:  "/docs/selections",
		},
		{
			name:      "empty inputs",
			url:       "",
			userAgent: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, matched := c.Match(tt.url, tt.userAgent)

			assert.False(t, matched)
		})
	}
}

func TestClassifier_Match_FirstRuleWins(t *testing.T) {
	c := New()

	// URL matches both traversal and script injection; traversal is first.
	rule, matched := c.Match("/page?path=../x&cb=eval(1)", "")

	assert.True(t, matched)
	assert.Equal(t, "path_traversal", rule.Name)
}

func TestClassifier_Classify(t *testing.T) {
	c := New()

	assert.True(t, c.Classify("/a/../b", ""))
	assert.False(t, c.Classify("/about", "Mozilla/5.0"))
}

func TestNewWithRules(t *testing.T) {
	custom := NewWithRules([]Rule{
		{
			Name:     "blocked_path",
			MatchURL: func(url string) bool { return url == "/admin" },
		},
	})

	rule, matched := custom.Match("/admin", "")
	assert.True(t, matched)
	assert.Equal(t, "blocked_path", rule.Name)

	// Built-in rules are not included.
	_, matched = custom.Match("/a/../b", "")
	assert.False(t, matched)
}
