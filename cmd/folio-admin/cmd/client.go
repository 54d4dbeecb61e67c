package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is the backend API HTTP client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	verbose    bool
}

// NewClient creates a new backend API client. token may be empty for
// unauthenticated calls.
func NewClient(baseURL, token string, verbose bool) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		verbose: verbose,
	}
}

// Do performs an HTTP request and returns the response body.
func (c *Client) Do(method, path string, body any) ([]byte, int, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(context.Background(), method, url, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(c.token))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.verbose {
		fmt.Printf(">>> %s %s\n", method, url)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if c.verbose {
		fmt.Printf("<<< %d %s\n", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if resp.StatusCode >= 400 {
		return nil, resp.StatusCode, parseAPIError(resp.StatusCode, respBody)
	}

	return respBody, resp.StatusCode, nil
}

// Get performs a GET request.
func (c *Client) Get(path string) ([]byte, error) {
	data, _, err := c.Do(http.MethodGet, path, nil)
	return data, err
}

// Post performs a POST request.
func (c *Client) Post(path string, body any) ([]byte, error) {
	data, _, err := c.Do(http.MethodPost, path, body)
	return data, err
}

// APIError represents an error from the backend API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func parseAPIError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode}

	var parsed struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error.Message != "" {
			apiErr.Code = parsed.Error.Code
			apiErr.Message = parsed.Error.Message
		} else if parsed.Message != "" {
			apiErr.Message = parsed.Message
		}
	}

	if apiErr.Message == "" {
		switch statusCode {
		case 401:
			apiErr.Message = "unauthorized: invalid or missing token"
		case 403:
			apiErr.Message = "forbidden: request was blocked"
		case 404:
			apiErr.Message = "resource not found"
		case 429:
			apiErr.Message = "rate limit exceeded, try again later"
		default:
			apiErr.Message = fmt.Sprintf("API error: %d %s", statusCode, http.StatusText(statusCode))
		}
	}

	return apiErr
}

// Response types matching server handler structs.

type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

type AnalyticsResponse struct {
	TimeRange       string          `json:"timeRange"`
	TotalVisits     int             `json:"totalVisits"`
	UniqueVisitors  int             `json:"uniqueVisitors"`
	AvgPerVisitor   float64         `json:"avgPerVisitor"`
	TopPages        []PageCount     `json:"topPages"`
	Browsers        []LabelCount    `json:"browsers"`
	Devices         []LabelCount    `json:"devices"`
	OperatingSystem []LabelCount    `json:"operatingSystems"`
	Referers        []LabelCount    `json:"referers"`
	HourlyVisits    []HourlyBucket  `json:"hourlyVisits"`
	GeneratedAt     string          `json:"generatedAt"`
}

type PageCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type HourlyBucket struct {
	Hour  string `json:"hour"`
	Count int    `json:"count"`
}

type RealTimeResponse struct {
	ActiveVisitors int         `json:"activeVisitors"`
	CurrentPages   []PageCount `json:"currentPages"`
	Timestamp      string      `json:"timestamp"`
}

type SecurityResponse struct {
	TimeRange      string           `json:"timeRange"`
	TotalAttempts  int              `json:"totalAttempts"`
	BlockedIPs     int              `json:"blockedIPs"`
	RecentAttempts []ThreatEvent    `json:"recentAttempts"`
	TopAttackerIPs []BlacklistEntry `json:"topAttackerIPs"`
	GeneratedAt    string           `json:"generatedAt"`
}

type ThreatEvent struct {
	IP           string   `json:"ip"`
	RequestCount int      `json:"requestCount"`
	Paths        []string `json:"paths"`
	Blocked      bool     `json:"blocked"`
	DetectedAt   string   `json:"detectedAt"`
}

type BlacklistEntry struct {
	IP           string `json:"ip"`
	AttemptCount int    `json:"count"`
	LastSeen     string `json:"last_seen"`
}
