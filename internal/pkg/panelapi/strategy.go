package panelapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// AuthPlacement says where a candidate puts the API key.
type AuthPlacement int

const (
	AuthQueryParam AuthPlacement = iota
	AuthHeader
	AuthFormField
)

// BodyEncoding says how a candidate encodes its request body.
type BodyEncoding int

const (
	EncodingNone BodyEncoding = iota
	EncodingForm
	EncodingJSON
)

// Candidate is one endpoint shape to try against a panel: a path appended
// to the normalized base URL, a method, where the credential goes, and how
// the body (if any) is encoded.
type Candidate struct {
	Path       string
	Method     string
	Auth       AuthPlacement
	AuthName   string
	AuthPrefix string
	Params     map[string]string
	Encoding   BodyEncoding
}

// NormalizeBaseURL prepares a stored API base URL for template expansion:
// whitespace and the trailing slash are removed, and a trailing /api,
// /api/v1 or /api/v2 segment is stripped so candidates can re-append the
// correct versioned path without duplicating it.
func NormalizeBaseURL(raw string) string {
	base := strings.TrimRight(strings.TrimSpace(raw), "/")
	lower := strings.ToLower(base)
	for _, suffix := range []string{"/api/v2", "/api/v1", "/api"} {
		if strings.HasSuffix(lower, suffix) {
			return base[:len(base)-len(suffix)]
		}
	}
	return base
}

// DefaultCandidates returns the generic endpoint table, ordered by how
// often each convention shows up across panel vendors. The key+action
// query API is by far the most common, so it goes first.
func DefaultCandidates() []Candidate {
	return []Candidate{
		{
			Path:     "/api",
			Method:   http.MethodGet,
			Auth:     AuthQueryParam,
			AuthName: "key",
			Params:   map[string]string{"action": "services"},
		},
		{
			Path:     "/api/v2",
			Method:   http.MethodPost,
			Auth:     AuthFormField,
			AuthName: "key",
			Params:   map[string]string{"action": "services"},
			Encoding: EncodingForm,
		},
		{
			Path:     "/api/v2",
			Method:   http.MethodPost,
			Auth:     AuthFormField,
			AuthName: "key",
			Params:   map[string]string{"action": "services"},
			Encoding: EncodingJSON,
		},
		{
			Path:       "/api/services",
			Method:     http.MethodGet,
			Auth:       AuthHeader,
			AuthName:   "Authorization",
			AuthPrefix: "Bearer ",
		},
		{
			Path:     "/api/v2/services",
			Method:   http.MethodGet,
			Auth:     AuthHeader,
			AuthName: "API-Key",
		},
		{
			Path:     "/services",
			Method:   http.MethodGet,
			Auth:     AuthQueryParam,
			AuthName: "key",
		},
	}
}

// keyActionCandidates is the narrow table used for the panel family that
// standardized on the ?key=&action=services convention.
func keyActionCandidates() []Candidate {
	all := DefaultCandidates()
	return []Candidate{all[0], all[1]}
}

// BuildRequest expands a candidate against a normalized base URL and
// credential into a concrete HTTP request.
func (cand Candidate) BuildRequest(ctx context.Context, base, apiKey string) (*http.Request, error) {
	target, err := url.Parse(base + cand.Path)
	if err != nil {
		return nil, err
	}

	query := target.Query()
	form := url.Values{}
	for name, value := range cand.Params {
		if cand.Encoding == EncodingNone {
			query.Set(name, value)
		} else {
			form.Set(name, value)
		}
	}

	switch cand.Auth {
	case AuthQueryParam:
		query.Set(cand.AuthName, apiKey)
	case AuthFormField:
		form.Set(cand.AuthName, apiKey)
	}
	target.RawQuery = query.Encode()

	var body *bytes.Reader
	contentType := ""
	switch cand.Encoding {
	case EncodingForm:
		body = bytes.NewReader([]byte(form.Encode()))
		contentType = "application/x-www-form-urlencoded"
	case EncodingJSON:
		payload := make(map[string]string, len(form))
		for name := range form {
			payload[name] = form.Get(name)
		}
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	default:
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, cand.Method, target.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cand.Auth == AuthHeader {
		req.Header.Set(cand.AuthName, cand.AuthPrefix+apiKey)
	}

	return req, nil
}
