// In file: internal/tools/lookup.go
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const userAgent = "course-assistant/1.0"

// lookupClient is the HTTP client shared by the public-API tools. It enforces
// a timeout per request and a client-side rate limit, since Open-Meteo and
// Hebcal are free services with fair-use limits.
type lookupClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

func newLookupClient(timeout time.Duration) *lookupClient {
	return &lookupClient{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
	}
}

// statusError is returned for non-200 responses. Snippet is the start of the body.
type statusError struct {
	Code    int
	Snippet string
}

func (e *statusError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d. Response: %s", e.Code, e.Snippet)
}

// getJSON performs a GET with the given query and decodes a JSON body into out.
func (c *lookupClient) getJSON(ctx context.Context, base string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", base, err)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &statusError{Code: resp.StatusCode, Snippet: snippet(string(body), 200)}
	}
	if strings.TrimSpace(string(body)) == "" {
		return fmt.Errorf("empty response (no JSON returned)")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse JSON (%v). Response starts with: %s", err, snippet(string(body), 200))
	}
	return nil
}

func snippet(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > n {
		return s[:n]
	}
	return s
}
