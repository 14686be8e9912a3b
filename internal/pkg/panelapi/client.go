package panelapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vikramdxb02-del/smmcompare/internal/pkg/env"
)

const maxResponseBytes = 8 << 20

// RetryPolicy controls how often a single candidate is re-sent after a
// transport-level failure. The default of one attempt keeps the historical
// behavior of trying each endpoint shape at most once per fetch; operators
// can raise it via PANEL_FETCH_RETRIES / PANEL_FETCH_BACKOFF_MS.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// RetryPolicyFromEnv reads the operator-tunable retry settings.
func RetryPolicyFromEnv() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: env.GetInt("PANEL_FETCH_RETRIES", 1),
		Backoff:     time.Duration(env.GetInt("PANEL_FETCH_BACKOFF_MS", 500)) * time.Millisecond,
	}
}

// FetchError is returned when every endpoint candidate was exhausted. It
// carries enough detail for an operator to fix the stored API URL or key
// instead of staring at an opaque failure.
type FetchError struct {
	LastDiagnostic string
	AttemptedURLs  []string
	Suggestion     string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("no endpoint candidate returned a service list (tried %d): %s",
		len(e.AttemptedURLs), e.LastDiagnostic)
}

// Client fetches raw service catalogs from SMM panel APIs by walking an
// ordered candidate table. Candidates are tried strictly sequentially so a
// misconfigured provider is never hammered with parallel credentialed
// requests.
type Client struct {
	HTTPClient *http.Client
	Candidates []Candidate
	Retry      RetryPolicy
}

// NewClient returns a client with the generic candidate table and a
// bounded per-request timeout; upstream panels are untrusted and must not
// be able to stall an ingestion request forever.
func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Candidates: DefaultCandidates(),
		Retry:      RetryPolicyFromEnv(),
	}
}

// FetchCatalog tries each candidate in order and returns the first
// response that classifies as a JSON array, or as a JSON object wrapping
// one. HTML pages, garbage, shape mismatches, and network failures are
// recorded per candidate and the loop moves on; only full exhaustion
// surfaces as a *FetchError.
func (c *Client) FetchCatalog(ctx context.Context, baseURL, apiKey string) ([]map[string]any, error) {
	base := NormalizeBaseURL(baseURL)

	var attempted []string
	lastDiagnostic := "no candidates configured"

	for _, cand := range c.Candidates {
		req, err := cand.BuildRequest(ctx, base, apiKey)
		if err != nil {
			lastDiagnostic = fmt.Sprintf("building request: %v", err)
			continue
		}
		attempted = append(attempted, redactKey(req.URL.String(), apiKey))

		body, status, header, err := c.send(ctx, cand, base, apiKey)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastDiagnostic = fmt.Sprintf("request failed: %v", err)
			continue
		}

		result := Classify(status, header, body)
		switch result.Kind {
		case KindJSONArray:
			return objectItems(result.Array), nil
		case KindJSONObject:
			if list, ok := UnwrapList(result.Object); ok {
				return objectItems(list), nil
			}
			lastDiagnostic = result.Diagnostic
		default:
			lastDiagnostic = result.Diagnostic
		}
	}

	return nil, &FetchError{
		LastDiagnostic: lastDiagnostic,
		AttemptedURLs:  attempted,
		Suggestion: "verify the provider's API base URL points at the panel root " +
			"(no trailing /api segment) and that the stored API key is valid",
	}
}

// send performs one candidate request, retrying transport-level failures
// according to the retry policy. Application-level responses (any HTTP
// response at all) are never retried; the classifier decides those.
func (c *Client) send(ctx context.Context, cand Candidate, base, apiKey string) ([]byte, int, http.Header, error) {
	var lastErr error
	for attempt := 0; attempt < c.Retry.attempts(); attempt++ {
		if attempt > 0 && c.Retry.Backoff > 0 {
			select {
			case <-ctx.Done():
				return nil, 0, nil, ctx.Err()
			case <-time.After(c.Retry.Backoff * time.Duration(attempt)):
			}
		}

		// The body reader is consumed per attempt, so rebuild the request.
		req, err := cand.BuildRequest(ctx, base, apiKey)
		if err != nil {
			return nil, 0, nil, err
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return body, resp.StatusCode, resp.Header, nil
	}
	return nil, 0, nil, lastErr
}

// objectItems keeps only the array entries that are JSON objects; scalar
// entries cannot be normalized into a service record.
func objectItems(list []any) []map[string]any {
	items := make([]map[string]any, 0, len(list))
	for _, entry := range list {
		if obj, ok := entry.(map[string]any); ok {
			items = append(items, obj)
		}
	}
	return items
}

// redactKey keeps attempted URLs loggable without leaking credentials.
func redactKey(u, apiKey string) string {
	if apiKey == "" {
		return u
	}
	u = strings.ReplaceAll(u, url.QueryEscape(apiKey), "***")
	return strings.ReplaceAll(u, apiKey, "***")
}
