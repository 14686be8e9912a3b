package panelapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string, cands []Candidate) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
		Candidates: cands,
	}
}

func TestFetchCatalogAcceptsNthCandidateAndStops(t *testing.T) {
	var hits []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.URL.Path)
		switch r.URL.Path {
		case "/good":
			w.Write([]byte(`[{"id":"1","name":"A"},{"id":"2","name":"B"}]`))
		default:
			w.Write([]byte("<html><title>Login</title></html>"))
		}
	}))
	defer srv.Close()

	cands := []Candidate{
		{Path: "/bad1", Method: http.MethodGet, Auth: AuthQueryParam, AuthName: "key"},
		{Path: "/bad2", Method: http.MethodGet, Auth: AuthQueryParam, AuthName: "key"},
		{Path: "/good", Method: http.MethodGet, Auth: AuthQueryParam, AuthName: "key"},
		{Path: "/never", Method: http.MethodGet, Auth: AuthQueryParam, AuthName: "key"},
	}

	items, err := testClient(srv.URL, cands).FetchCatalog(context.Background(), srv.URL, "k")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, []string{"/bad1", "/bad2", "/good"}, hits, "must stop after first acceptance")
}

func TestFetchCatalogUnwrapsObjectResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":"7","name":"Wrapped"}]}`))
	}))
	defer srv.Close()

	cands := []Candidate{{Path: "/api", Method: http.MethodGet, Auth: AuthQueryParam, AuthName: "key"}}
	items, err := testClient(srv.URL, cands).FetchCatalog(context.Background(), srv.URL, "k")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "7", items[0]["id"])
}

func TestFetchCatalogAcceptsArrayOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(`[{"id":"1"}]`))
	}))
	defer srv.Close()

	cands := []Candidate{{Path: "/api", Method: http.MethodGet, Auth: AuthQueryParam, AuthName: "key"}}
	items, err := testClient(srv.URL, cands).FetchCatalog(context.Background(), srv.URL, "k")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestFetchCatalogExhaustionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"Invalid API key"}`))
	}))
	defer srv.Close()

	cands := DefaultCandidates()
	_, err := testClient(srv.URL, cands).FetchCatalog(context.Background(), srv.URL, "supersecret")

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Len(t, fetchErr.AttemptedURLs, len(cands), "every candidate URL must be listed")
	assert.NotEmpty(t, fetchErr.Suggestion)
	assert.Contains(t, fetchErr.LastDiagnostic, "Invalid API key")

	for _, u := range fetchErr.AttemptedURLs {
		assert.NotContains(t, u, "supersecret", "credential must be redacted in diagnostics")
	}
}

func TestFetchCatalogSkipsNonObjectItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"1"},"garbage",42,{"id":"2"}]`))
	}))
	defer srv.Close()

	cands := []Candidate{{Path: "/api", Method: http.MethodGet, Auth: AuthQueryParam, AuthName: "key"}}
	items, err := testClient(srv.URL, cands).FetchCatalog(context.Background(), srv.URL, "k")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestFetchCatalogRetriesTransportFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			// Kill the connection mid-request to force a transport error.
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				conn.Close()
			}
			return
		}
		w.Write([]byte(`[{"id":"1"}]`))
	}))
	defer srv.Close()

	client := testClient(srv.URL, []Candidate{{Path: "/api", Method: http.MethodGet, Auth: AuthQueryParam, AuthName: "key"}})
	client.Retry = RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond}

	items, err := client.FetchCatalog(context.Background(), srv.URL, "k")
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchCatalogHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := testClient(srv.URL, DefaultCandidates()).FetchCatalog(ctx, srv.URL, "k")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
