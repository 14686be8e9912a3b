package panelapi

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://panel.example.com", "https://panel.example.com"},
		{"https://panel.example.com/", "https://panel.example.com"},
		{"https://panel.example.com/api", "https://panel.example.com"},
		{"https://panel.example.com/api/", "https://panel.example.com"},
		{"https://panel.example.com/api/v1", "https://panel.example.com"},
		{"https://panel.example.com/api/v2/", "https://panel.example.com"},
		{"  https://panel.example.com/API ", "https://panel.example.com"},
		{"https://panel.example.com/shop", "https://panel.example.com/shop"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeBaseURL(tt.in), tt.in)
	}
}

func TestDefaultCandidatesOrder(t *testing.T) {
	cands := DefaultCandidates()
	require.GreaterOrEqual(t, len(cands), 6)

	// The key+action query convention is the most common and must be first.
	assert.Equal(t, http.MethodGet, cands[0].Method)
	assert.Equal(t, AuthQueryParam, cands[0].Auth)
	assert.Equal(t, "services", cands[0].Params["action"])

	// The table covers the union of observed auth conventions.
	var sawForm, sawJSON, sawBearer, sawCustomHeader bool
	for _, cand := range cands {
		if cand.Encoding == EncodingForm {
			sawForm = true
		}
		if cand.Encoding == EncodingJSON {
			sawJSON = true
		}
		if cand.Auth == AuthHeader && cand.AuthPrefix == "Bearer " {
			sawBearer = true
		}
		if cand.Auth == AuthHeader && cand.AuthName == "API-Key" {
			sawCustomHeader = true
		}
	}
	assert.True(t, sawForm, "form-encoded POST candidate missing")
	assert.True(t, sawJSON, "JSON POST candidate missing")
	assert.True(t, sawBearer, "bearer-token GET candidate missing")
	assert.True(t, sawCustomHeader, "custom-header GET candidate missing")
}

func TestBuildRequestQueryAuth(t *testing.T) {
	cand := DefaultCandidates()[0]
	req, err := cand.BuildRequest(context.Background(), "https://panel.example.com", "sekrit")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "sekrit", req.URL.Query().Get("key"))
	assert.Equal(t, "services", req.URL.Query().Get("action"))
	assert.Equal(t, "/api", req.URL.Path)
}

func TestBuildRequestFormAuth(t *testing.T) {
	cand := Candidate{
		Path:     "/api/v2",
		Method:   http.MethodPost,
		Auth:     AuthFormField,
		AuthName: "key",
		Params:   map[string]string{"action": "services"},
		Encoding: EncodingForm,
	}

	req, err := cand.BuildRequest(context.Background(), "https://panel.example.com", "sekrit")
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
	body, _ := io.ReadAll(req.Body)
	assert.Contains(t, string(body), "key=sekrit")
	assert.Contains(t, string(body), "action=services")
	// Credential must not leak into the URL on form candidates.
	assert.Empty(t, req.URL.Query().Get("key"))
}

func TestBuildRequestHeaderAuth(t *testing.T) {
	cand := Candidate{
		Path:       "/api/services",
		Method:     http.MethodGet,
		Auth:       AuthHeader,
		AuthName:   "Authorization",
		AuthPrefix: "Bearer ",
	}

	req, err := cand.BuildRequest(context.Background(), "https://panel.example.com", "sekrit")
	require.NoError(t, err)
	assert.Equal(t, "Bearer sekrit", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
}

func TestBuildRequestJSONBody(t *testing.T) {
	cand := Candidate{
		Path:     "/api/v2",
		Method:   http.MethodPost,
		Auth:     AuthFormField,
		AuthName: "key",
		Params:   map[string]string{"action": "services"},
		Encoding: EncodingJSON,
	}

	req, err := cand.BuildRequest(context.Background(), "https://panel.example.com", "sekrit")
	require.NoError(t, err)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	body, _ := io.ReadAll(req.Body)
	assert.JSONEq(t, `{"key":"sekrit","action":"services"}`, string(body))
}
