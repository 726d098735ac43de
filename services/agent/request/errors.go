// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package request models HTTP requests reconstructed from a browser capture
// and their canonical curl renderings.
//
// The canonical rendering is load-bearing: the discovery engine uses the
// exact curl text as a request's identity when coalescing graph nodes, as
// the haystack for dynamic-part substring checks, and as the payload shown
// to the language model. Both renderings are therefore deterministic for a
// given Request:
//   - headers render in insertion order,
//   - query parameters render in first-seen key order,
//   - JSON bodies are normalized once at construction time.
//
// # Ownership Model
//
// A Request is built once (AddHeader / AddQueryParam / SetBody) and treated
// as immutable afterwards. Renderings never mutate the Request, so repeated
// calls yield byte-identical strings.
package request

import "errors"

// Sentinel errors for request parsing.
var (
	// ErrMalformedCurl is returned by ParseCurl when the input is not in
	// the canonical dialect produced by CurlCommand.
	ErrMalformedCurl = errors.New("malformed curl command")
)
