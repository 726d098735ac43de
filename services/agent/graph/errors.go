// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides the dependency DAG the discovery engine grows.
//
// Nodes represent the sources a replayed action needs: the action request
// itself (master), upstream requests that produce tokens (curl), cookies
// from the session snapshot (cookie), and unresolvable literals
// (not_found). An edge A → B means A consumes a literal that B provides;
// the edge records that literal.
//
// # Ownership Model
//
// The DAG owns its nodes. Callers receive *Node and may read it freely,
// but mutation goes through UpdateNode and AppendExtractedParts so the
// store's invariants (deduplicated extracted parts) hold.
//
// # Thread Safety
//
// The DAG is NOT safe for concurrent use. Discovery is single-threaded by
// design: every mutation happens between two oracle calls on one
// goroutine, so the store carries no locks.
package graph

import (
	"errors"
	"strings"
)

// Sentinel errors for DAG operations.
var (
	// ErrNodeNotFound is returned when an operation references a node ID
	// that was never added.
	ErrNodeNotFound = errors.New("node not found")
)

// CycleError reports a dependency cycle. A cycle cannot arise from honest
// inputs: it means a downstream value was misattributed as an upstream
// source, so discovery halts and dumps the graph for diagnosis.
type CycleError struct {
	// Path holds the node IDs along the cycle, with the entry node
	// repeated at the end.
	Path []string
}

// NewCycleError creates a CycleError for the given node path.
func NewCycleError(path []string) *CycleError {
	return &CycleError{Path: path}
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return "cycle detected: " + strings.Join(e.Path, " -> ")
}
