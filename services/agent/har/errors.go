// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package har loads browser capture archives (HAR 1.2) and cookie
// snapshots, and derives the inputs the discovery engine works from:
// the ordered entry list, the URL index, and the filtered candidate
// list shown to the language model during action identification.
//
// Only the subset of the HAR schema the engine consumes is decoded:
// log.entries[].request.{method,url,headers,queryString,postData} and
// log.entries[].response.{status,content}. Everything else in the
// archive is ignored.
package har

import "errors"

// Sentinel errors for archive and cookie loading. All of them are fatal
// configuration errors: the caller is expected to fix its inputs and
// rerun, not to retry.
var (
	// ErrMalformedArchive is returned when the capture archive is not
	// valid JSON or lacks the log envelope.
	ErrMalformedArchive = errors.New("malformed capture archive")

	// ErrMalformedCookies is returned when the cookie snapshot is not a
	// JSON array of cookie records.
	ErrMalformedCookies = errors.New("malformed cookie snapshot")

	// ErrNoCandidates is returned by the engine when the filtered
	// candidate list is empty, meaning the archive has nothing the
	// action-identification prompt could choose from.
	ErrNoCandidates = errors.New("no candidate requests in archive")
)
