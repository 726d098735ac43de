// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package har

import (
	"net/url"
	"path"
	"strings"
)

// trackingKeywords flag telemetry traffic. An entry whose URL, any header,
// or body contains one of these (case-insensitive) never reaches the
// action-identification prompt.
var trackingKeywords = []string{
	"google",
	"taboola",
	"datadog",
	"sentry",
}

// strippedHeaderKeywords drop headers that carry no replay value from
// normalized requests: cookies travel separately, sec-/accept/user-agent
// are browser fingerprinting, and the rest are analytics vendors.
var strippedHeaderKeywords = []string{
	"cookie",
	"sec-",
	"accept",
	"user-agent",
	"referer",
	"relic",
	"sentry",
	"datadog",
	"amplitude",
	"mixpanel",
	"segment",
	"heap",
	"hotjar",
	"fullstory",
	"pendo",
	"optimizely",
	"adobe",
	"analytics",
	"tracking",
	"telemetry",
	"clarity",
	"matomo",
	"plausible",
}

// excludedExtensions are static-asset suffixes dropped from the candidate
// list. The extension must match exactly (".gz" excludes "x.gz" but not
// "x.gz2"). Note that .js, .map, .pdf and .zip are intentionally kept:
// script URLs matter for the shell-page check and pdf/zip are common
// download targets.
var excludedExtensions = map[string]struct{}{
	".png":   {},
	".jpg":   {},
	".jpeg":  {},
	".gif":   {},
	".webp":  {},
	".svg":   {},
	".ico":   {},
	".css":   {},
	".woff":  {},
	".woff2": {},
	".ttf":   {},
	".otf":   {},
	".eot":   {},
	".mp3":   {},
	".mp4":   {},
	".wav":   {},
	".avi":   {},
	".mov":   {},
	".flv":   {},
	".wmv":   {},
	".webm":  {},
	".rar":   {},
	".7z":    {},
	".tar":   {},
	".gz":    {},
	".exe":   {},
	".dmg":   {},
}

// Candidate is one row of the shortlist shown to the language model when
// it picks the action URL.
type Candidate struct {
	Method          string `json:"method"`
	URL             string `json:"url"`
	ResponseFormat  string `json:"response_format"`
	ResponsePreview string `json:"response_preview"`
}

// previewLen caps the response preview at 30 characters. Enough to tell
// JSON from HTML from nothing, short enough to keep the prompt small.
const previewLen = 30

// CandidateURLs returns the filtered shortlist for action identification.
//
// Description:
//
//	Walks the raw entries in capture order and keeps (method, URL,
//	response MIME type, response preview) for every entry that is not a
//	static asset and not telemetry. The static-asset check matches the
//	URL path's extension exactly against excludedExtensions; the
//	telemetry check scans the URL, every raw header name and value, and
//	the post body for trackingKeywords. Raw headers are used on purpose:
//	normalization strips exactly the headers the telemetry check needs
//	to see.
//
// Outputs:
//
//	[]Candidate - Shortlist in capture order; empty when everything was
//	filtered out.
func (a *Archive) CandidateURLs() []Candidate {
	var out []Candidate
	for _, e := range a.raw {
		if e.Request.URL == "" {
			continue
		}
		if hasExcludedExtension(e.Request.URL) {
			continue
		}
		if isTracking(e.Request) {
			continue
		}

		method := e.Request.Method
		if method == "" {
			method = "GET"
		}

		var format, previewText string
		if e.Response.Content != nil {
			format = e.Response.Content.MimeType
			previewText = truncateRunes(e.Response.Content.Text, previewLen)
		}

		out = append(out, Candidate{
			Method:          method,
			URL:             e.Request.URL,
			ResponseFormat:  format,
			ResponsePreview: previewText,
		})
	}
	return out
}

func hasExcludedExtension(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		// Unparseable URLs have no detectable extension; let the
		// keyword filter judge them.
		return false
	}
	ext := path.Ext(strings.ToLower(u.Path))
	_, excluded := excludedExtensions[ext]
	return excluded
}

// isTracking reports whether any tracking keyword occurs in the entry's
// URL, headers, or body. The haystack is the lowered concatenation of all
// of them, matching how captures are scanned elsewhere.
func isTracking(raw requestJSON) bool {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(raw.URL))
	for _, h := range raw.Headers {
		sb.WriteString(strings.ToLower(h.Name))
		sb.WriteString(strings.ToLower(h.Value))
	}
	if raw.PostData != nil {
		sb.WriteString(strings.ToLower(raw.PostData.Text))
	}
	haystack := sb.String()

	for _, kw := range trackingKeywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

func isStrippedHeader(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range strippedHeaderKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// truncateRunes returns the first n runes of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
