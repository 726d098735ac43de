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
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/wlg001/Integuru/services/agent/request"
)

// Raw archive schema. Deliberately minimal: only the fields the engine
// consumes, with plain string payloads.
type archiveJSON struct {
	Log *logJSON `json:"log"`
}

type logJSON struct {
	Entries []entryJSON `json:"entries"`
}

type entryJSON struct {
	Request  requestJSON  `json:"request"`
	Response responseJSON `json:"response"`
}

type requestJSON struct {
	Method      string      `json:"method"`
	URL         string      `json:"url"`
	Headers     []nameValue `json:"headers"`
	QueryString []nameValue `json:"queryString"`
	PostData    *postData   `json:"postData"`
}

type nameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type postData struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

type responseJSON struct {
	Status  int          `json:"status"`
	Content *contentJSON `json:"content"`
}

type contentJSON struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// Entry pairs a normalized Request with its captured Response. Entries
// keep the archive's capture order.
type Entry struct {
	Request  *request.Request
	Response request.Response
}

// Archive is a loaded capture archive.
//
// Description:
//
//	Holds the normalized entries in capture order plus the raw entries
//	needed by the candidate filter (the filter inspects headers that the
//	normalization step strips, so it cannot run on Entries alone).
//
// Thread Safety:
//
//	Read-only after loading; safe for concurrent reads.
type Archive struct {
	Entries []Entry

	raw []entryJSON
}

// ParseHAR loads a capture archive from a file.
//
// Errors:
//
//	ErrMalformedArchive - Invalid JSON or missing log envelope.
//	*os.PathError - The file cannot be opened.
func ParseHAR(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening capture archive: %w", err)
	}
	defer f.Close()

	arc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, path)
	}
	return arc, nil
}

// Decode reads a capture archive from r and normalizes its entries.
//
// Description:
//
//	For each entry: the method defaults to GET, headers matching any
//	stripped keyword are dropped, query-string pairs are folded in order,
//	and the post-data text becomes the body (parsed as JSON when the
//	surviving content-type header indicates JSON). The response keeps
//	{mimeType, text} as captured.
//
// Outputs:
//
//	*Archive - Entries in capture order.
//	error - Non-nil when the payload is not an archive.
//
// Errors:
//
//	ErrMalformedArchive - Invalid JSON or missing log envelope.
func Decode(r io.Reader) (*Archive, error) {
	var doc archiveJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}
	if doc.Log == nil {
		return nil, fmt.Errorf("%w: missing log envelope", ErrMalformedArchive)
	}

	arc := &Archive{
		Entries: make([]Entry, 0, len(doc.Log.Entries)),
		raw:     doc.Log.Entries,
	}
	for _, e := range doc.Log.Entries {
		arc.Entries = append(arc.Entries, Entry{
			Request:  normalizeRequest(e.Request),
			Response: normalizeResponse(e.Response),
		})
	}
	return arc, nil
}

// URLIndex maps each request URL as captured to its entry. Duplicate URLs
// are tolerated: the last capture wins, so only one of them is visible to
// the action-identification prompt.
func (a *Archive) URLIndex() map[string]Entry {
	idx := make(map[string]Entry, len(a.Entries))
	for _, e := range a.Entries {
		idx[e.Request.URL] = e
	}
	return idx
}

func normalizeRequest(raw requestJSON) *request.Request {
	req := request.New(raw.Method, raw.URL)

	for _, h := range raw.Headers {
		if isStrippedHeader(h.Name) {
			continue
		}
		req.AddHeader(h.Name, h.Value)
	}

	for _, q := range raw.QueryString {
		req.AddQueryParam(q.Name, q.Value)
	}

	if raw.PostData != nil && raw.PostData.Text != "" {
		contentType, _ := req.Header("Content-Type")
		req.SetBody(raw.PostData.Text, contentType)
	}
	return req
}

func normalizeResponse(raw responseJSON) request.Response {
	if raw.Content == nil {
		return request.Response{}
	}
	return request.Response{
		Type: raw.Content.MimeType,
		Text: raw.Content.Text,
	}
}
