// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package request

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Header is a single named header value. The order of Headers on a Request
// is significant: the canonical curl rendering emits headers in insertion
// order, and that rendering doubles as the request's identity.
type Header struct {
	Name  string
	Value string
}

// QueryParam is a single query-string pair. Keys are single-valued: folding
// a repeated key keeps its first position and takes the last value.
type QueryParam struct {
	Key   string
	Value string
}

// Response is the captured payload paired with a Request.
type Response struct {
	// Type is the MIME type recorded in the archive (content.mimeType).
	Type string

	// Text is the raw body text. For binary payloads it may be base64
	// as captured, or empty.
	Text string
}

// Request is a single HTTP request reconstructed from a capture archive.
//
// Description:
//
//	A Request holds the method, URL as captured (which may already carry a
//	query string), the retained headers in capture order, the parsed query
//	pairs, and an optional body. It is built once during archive parsing
//	and treated as immutable afterwards; the rendering methods never
//	modify it.
//
// Thread Safety:
//
//	Safe for concurrent reads after construction. Construction itself is
//	single-writer.
type Request struct {
	Method  string
	URL     string
	Headers []Header
	Query   []QueryParam

	// Body is the raw body text. When JSONBody is true, Body has been
	// normalized through a parse/re-encode round trip so that renderings
	// are stable regardless of source formatting.
	Body     string
	JSONBody bool
}

// New returns a Request with the given method and URL. An empty method
// defaults to GET, matching how capture archives omit it.
func New(method, rawURL string) *Request {
	if method == "" {
		method = "GET"
	}
	return &Request{Method: method, URL: rawURL}
}

// AddHeader folds a header into the request. Names compare
// case-insensitively: a repeated name keeps its first position and
// first-seen casing but takes the last value.
func (r *Request) AddHeader(name, value string) {
	for i := range r.Headers {
		if strings.EqualFold(r.Headers[i].Name, name) {
			r.Headers[i].Value = value
			return
		}
	}
	r.Headers = append(r.Headers, Header{Name: name, Value: value})
}

// Header returns the value of the named header, matched case-insensitively.
func (r *Request) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// AddQueryParam folds a query pair into the request. A repeated key keeps
// its first position and takes the last value.
func (r *Request) AddQueryParam(key, value string) {
	for i := range r.Query {
		if r.Query[i].Key == key {
			r.Query[i].Value = value
			return
		}
	}
	r.Query = append(r.Query, QueryParam{Key: key, Value: value})
}

// SetBody attaches a body to the request. When contentType indicates JSON
// and text parses as JSON, the body is stored in normalized form and
// flagged so renderings re-emit it as JSON with a Content-Type header.
func (r *Request) SetBody(text, contentType string) {
	if strings.Contains(strings.ToLower(contentType), "application/json") {
		if norm, ok := NormalizeJSON(text); ok {
			r.Body = norm
			r.JSONBody = true
			return
		}
	}
	r.Body = text
	r.JSONBody = false
}

// NormalizeJSON re-encodes text through a JSON round trip, producing a
// compact form with object keys sorted. It reports false when text is not
// valid JSON. The normalized form is what makes two captures of the same
// JSON body coalesce to one graph node even when their formatting differs.
func NormalizeJSON(text string) (string, bool) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return "", false
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(out), true
}

// CurlCommand renders the canonical shell invocation for the request.
//
// Description:
//
//	Emits `curl -X <METHOD>`, one `-H '<name>: <value>'` per header in
//	insertion order, `--data '<body>'` when a body is present, and finally
//	the quoted URL with the query string appended as `?k=v&k=v`. JSON
//	bodies are emitted in normalized form and a Content-Type header is
//	inserted before the data flag when none was captured.
//
//	The result is deterministic for a given Request: it serves as the
//	node identity during graph coalescing and as the haystack for
//	dynamic-part membership checks.
//
// Outputs:
//
//	string - The canonical curl command.
func (r *Request) CurlCommand() string {
	return r.render(false)
}

// MinifiedCurlCommand renders the canonical curl with referer and cookie
// headers omitted. This short form is what gets shown to the language
// model during dynamic-part extraction; dropping the two noisiest headers
// reduces hallucinated parts.
func (r *Request) MinifiedCurlCommand() string {
	return r.render(true)
}

// String renders the full canonical curl command.
func (r *Request) String() string {
	return r.CurlCommand()
}

func (r *Request) render(minified bool) string {
	parts := []string{"curl -X " + r.Method}

	hasContentType := false
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, "Content-Type") {
			hasContentType = true
		}
		if minified {
			lower := strings.ToLower(h.Name)
			if lower == "referer" || lower == "cookie" {
				continue
			}
		}
		parts = append(parts, "-H '"+h.Name+": "+h.Value+"'")
	}

	if r.Body != "" {
		if r.JSONBody && !hasContentType {
			parts = append(parts, "-H 'Content-Type: application/json'")
		}
		parts = append(parts, "--data '"+r.Body+"'")
	}

	parts = append(parts, "'"+r.RenderedURL()+"'")
	return strings.Join(parts, " ")
}

// RenderedURL returns the URL as it appears in the canonical rendering:
// the captured URL with any folded query parameters appended.
func (r *Request) RenderedURL() string {
	if len(r.Query) == 0 {
		return r.URL
	}
	pairs := make([]string, 0, len(r.Query))
	for _, q := range r.Query {
		pairs = append(pairs, q.Key+"="+q.Value)
	}
	return r.URL + "?" + strings.Join(pairs, "&")
}

// ParseCurl reconstructs a Request from its canonical curl rendering.
//
// Description:
//
//	Accepts the exact dialect produced by CurlCommand: single-quoted
//	header, data, and URL tokens introduced by `-X`, `-H`, and `--data`
//	flags. It is not a general curl parser. Re-rendering the result
//	yields a string equal to a canonical input, so canonicalization is
//	idempotent.
//
// Inputs:
//
//	command - The curl command text.
//
// Outputs:
//
//	*Request - The reconstructed request.
//	error - Non-nil when the text is not in canonical form.
//
// Errors:
//
//	ErrMalformedCurl - Missing curl prefix, dangling flag, unterminated
//	quote, or no URL token.
func ParseCurl(command string) (*Request, error) {
	tokens, err := tokenize(command)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 || tokens[0] != "curl" {
		return nil, fmt.Errorf("%w: missing curl prefix", ErrMalformedCurl)
	}

	req := &Request{Method: "GET"}
	var rawURL string
	var body string
	var hasBody bool

	for i := 1; i < len(tokens); i++ {
		switch tokens[i] {
		case "-X":
			i++
			if i >= len(tokens) {
				return nil, fmt.Errorf("%w: -X without a method", ErrMalformedCurl)
			}
			req.Method = tokens[i]
		case "-H":
			i++
			if i >= len(tokens) {
				return nil, fmt.Errorf("%w: -H without a header", ErrMalformedCurl)
			}
			name, value, ok := strings.Cut(tokens[i], ": ")
			if !ok {
				name, value, _ = strings.Cut(tokens[i], ":")
			}
			req.AddHeader(name, value)
		case "--data":
			i++
			if i >= len(tokens) {
				return nil, fmt.Errorf("%w: --data without a payload", ErrMalformedCurl)
			}
			body = tokens[i]
			hasBody = true
		default:
			rawURL = tokens[i]
		}
	}

	if rawURL == "" {
		return nil, fmt.Errorf("%w: no URL", ErrMalformedCurl)
	}

	base, query, found := strings.Cut(rawURL, "?")
	req.URL = base
	if found && query != "" {
		for _, pair := range strings.Split(query, "&") {
			k, v, _ := strings.Cut(pair, "=")
			req.AddQueryParam(k, v)
		}
	}

	if hasBody {
		contentType, _ := req.Header("Content-Type")
		req.SetBody(body, contentType)
	}
	return req, nil
}

// tokenize splits a canonical curl command into bare words and the
// contents of single-quoted segments. Quoted segments may contain spaces;
// nothing in the canonical dialect escapes a quote.
func tokenize(s string) ([]string, error) {
	var tokens []string
	i := 0
	for i < len(s) {
		switch {
		case s[i] == ' ':
			i++
		case s[i] == '\'':
			end := strings.IndexByte(s[i+1:], '\'')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated quote", ErrMalformedCurl)
			}
			tokens = append(tokens, s[i+1:i+1+end])
			i += end + 2
		default:
			next := strings.IndexByte(s[i:], ' ')
			if next < 0 {
				tokens = append(tokens, s[i:])
				i = len(s)
			} else {
				tokens = append(tokens, s[i:i+next])
				i += next
			}
		}
	}
	return tokens, nil
}
