// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package agent implements the discovery engine that reverse-engineers the
// dependency graph behind a browser action.
//
// Given a HAR capture, a cookie snapshot, and a plain-language description
// of the action, the engine asks the reasoning oracle which captured request
// performs the action, then works backwards: every dynamic value in that
// request is traced to the upstream request, cookie, or dead end that
// produced it, until no unresolved values remain. The result is a DAG whose
// reverse-topological order is a replay recipe for the action.
//
// The package also contains the emission stage, which turns a completed
// graph into runnable integration code by prompting the oracle once per
// node and once more to stitch the snippets together.
//
// # Thread Safety
//
// The engine is single-threaded by design. Every oracle call is a blocking
// suspension point and all graph mutation happens between two such calls on
// one goroutine, so neither Agent nor Emitter carries locks and neither is
// safe for concurrent use.
package agent

import "errors"

// Sentinel errors for the discovery engine.
var (
	// ErrURLNotFound is returned when the oracle names an action URL that
	// does not appear in the candidate shortlist built from the capture.
	ErrURLNotFound = errors.New("action URL not present in the capture")
)
