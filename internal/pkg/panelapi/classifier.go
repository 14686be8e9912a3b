package panelapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Kind describes what a raw upstream response body turned out to be.
type Kind int

const (
	// KindJSONArray means the body parsed as a top-level JSON array.
	KindJSONArray Kind = iota
	// KindJSONObject means the body parsed as a top-level JSON object;
	// callers should try UnwrapList before treating it as a failure.
	KindJSONObject
	// KindHTMLError means the body is an HTML (or XML) document, typically
	// a login page or vendor error page served instead of the API payload.
	KindHTMLError
	// KindUnparseable means the body is neither valid JSON nor recognizable HTML.
	KindUnparseable
)

// Classification is the result of inspecting one upstream response.
type Classification struct {
	Kind       Kind
	Array      []any
	Object     map[string]any
	Diagnostic string
}

const snippetLen = 240

var (
	htmlTitleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	htmlErrorRe = regexp.MustCompile(`(?i)[^<>\n]*(error|invalid|unauthorized)[^<>\n]*`)
)

// Classify inspects an upstream response. JSON parsing is attempted before
// the Content-Type header is consulted at all: SMM panels are routinely
// observed to return JSON with a missing or wrong content type. The HTTP
// status alone never decides failure either; a non-2xx body that is valid
// JSON is still parsed so the vendor's own error message can be surfaced.
func Classify(statusCode int, header http.Header, body []byte) Classification {
	trimmed := strings.TrimSpace(string(body))

	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		switch v := parsed.(type) {
		case []any:
			return Classification{Kind: KindJSONArray, Array: v}
		case map[string]any:
			return Classification{
				Kind:       KindJSONObject,
				Object:     v,
				Diagnostic: apiErrorMessage(v, statusCode),
			}
		}
		// Bare JSON scalar (e.g. a quoted error string) is useless as a catalog.
		return Classification{
			Kind:       KindUnparseable,
			Diagnostic: fmt.Sprintf("status %d: JSON scalar response: %s", statusCode, snippet(trimmed)),
		}
	}

	if isHTMLDocument(trimmed) {
		return Classification{
			Kind:       KindHTMLError,
			Diagnostic: fmt.Sprintf("status %d: HTML page instead of JSON: %s", statusCode, htmlDiagnostic(trimmed)),
		}
	}

	return Classification{
		Kind:       KindUnparseable,
		Diagnostic: fmt.Sprintf("status %d: unparseable response: %s", statusCode, snippet(trimmed)),
	}
}

// UnwrapList digs into the wrapper keys panels commonly use around their
// service list and returns the nested array if one exists.
func UnwrapList(obj map[string]any) ([]any, bool) {
	for _, key := range []string{"data", "services", "result"} {
		if nested, ok := obj[key].([]any); ok {
			return nested, true
		}
	}
	return nil, false
}

func isHTMLDocument(trimmed string) bool {
	lower := strings.ToLower(trimmed)
	for _, marker := range []string{"<!doctype", "<html", "<?xml"} {
		if strings.HasPrefix(lower, marker) {
			return true
		}
	}
	return false
}

// htmlDiagnostic pulls a short human-readable hint out of an HTML error
// page: the title tag if present, otherwise the first line mentioning an
// error, otherwise a plain snippet.
func htmlDiagnostic(body string) string {
	if m := htmlTitleRe.FindStringSubmatch(body); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			return title
		}
	}
	if m := htmlErrorRe.FindString(body); m != "" {
		return strings.TrimSpace(m)
	}
	return snippet(body)
}

// apiErrorMessage extracts the vendor's own error text from a JSON object
// response so operators see "Invalid API key" rather than a bare status.
func apiErrorMessage(obj map[string]any, statusCode int) string {
	for _, key := range []string{"error", "message"} {
		if msg, ok := obj[key].(string); ok && msg != "" {
			return fmt.Sprintf("status %d: API error: %s", statusCode, msg)
		}
	}
	return fmt.Sprintf("status %d: JSON object without a recognizable service list", statusCode)
}

func snippet(s string) string {
	if len(s) > snippetLen {
		return s[:snippetLen]
	}
	return s
}
