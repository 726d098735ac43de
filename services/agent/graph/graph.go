// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"github.com/google/uuid"

	"github.com/wlg001/Integuru/services/agent/request"
)

// NodeKind discriminates what a node sources its value from.
type NodeKind string

const (
	// KindMaster is the unique node for the action request itself.
	KindMaster NodeKind = "master"

	// KindCurl is an upstream request whose response provides literals.
	KindCurl NodeKind = "curl"

	// KindCookie is a cookie from the session snapshot.
	KindCookie NodeKind = "cookie"

	// KindNotFound marks a literal with no discoverable producer.
	KindNotFound NodeKind = "not_found"
)

// Content carries the kind-specific payload of a node. For master and
// curl nodes Request/Response are set; for cookie nodes CookieName plus
// CookieValue (the literal the cookie provides); for not_found nodes
// SearchString (the literal that had no producer).
type Content struct {
	Request      *request.Request
	Response     request.Response
	CookieName   string
	CookieValue  string
	SearchString string
}

// Key returns the display form of the content: the canonical curl for
// request-backed nodes, the cookie name for cookie nodes, the search
// string for not_found nodes.
func (c Content) Key() string {
	switch {
	case c.Request != nil:
		return c.Request.CurlCommand()
	case c.CookieName != "":
		return c.CookieName
	default:
		return c.SearchString
	}
}

// Node is one vertex of the dependency DAG.
type Node struct {
	ID      string
	Kind    NodeKind
	Content Content

	// DynamicParts are the literals this node still needs from upstream.
	// The engine fills the list when a node is expanded and clears it
	// once every literal is resolved into an edge, so on a completed
	// graph the list is empty everywhere.
	DynamicParts []string

	// ExtractedParts are the literals this node provides downstream,
	// deduplicated in insertion order.
	ExtractedParts []string

	// InputVariables maps caller-supplied variable names to the literal
	// as it appears in this node's request.
	InputVariables map[string]string
}

// Edge is a directed dependency: From consumes Literal, To provides it.
type Edge struct {
	From    string
	To      string
	Literal string
}

// DAG is the dependency graph store.
//
// Description:
//
//	Nodes are addressed by fresh UUIDs and kept in insertion order so
//	every traversal and rendering is deterministic. The store itself
//	does not enforce acyclicity; the engine calls DetectCycle at each
//	iteration boundary and halts on a hit.
type DAG struct {
	nodes map[string]*Node
	order []string
	edges []Edge

	out map[string][]int // node ID -> indexes into edges
	in  map[string][]int
}

// NodeOption mutates a node during AddNode or UpdateNode.
type NodeOption func(*Node)

// WithDynamicParts overwrites the node's outstanding literals.
func WithDynamicParts(parts ...string) NodeOption {
	return func(n *Node) {
		n.DynamicParts = parts
	}
}

// WithExtractedParts overwrites the node's provided literals,
// deduplicated in the given order.
func WithExtractedParts(parts ...string) NodeOption {
	return func(n *Node) {
		n.ExtractedParts = dedupe(parts)
	}
}

// WithInputVariables overwrites the node's input-variable mapping.
func WithInputVariables(vars map[string]string) NodeOption {
	return func(n *Node) {
		n.InputVariables = vars
	}
}

// New creates an empty DAG.
func New() *DAG {
	return &DAG{
		nodes: make(map[string]*Node),
		out:   make(map[string][]int),
		in:    make(map[string][]int),
	}
}

// AddNode creates a node with a fresh ID and returns it.
func (d *DAG) AddNode(kind NodeKind, content Content, opts ...NodeOption) *Node {
	n := &Node{
		ID:      uuid.NewString(),
		Kind:    kind,
		Content: content,
	}
	for _, opt := range opts {
		opt(n)
	}
	d.nodes[n.ID] = n
	d.order = append(d.order, n.ID)
	return n
}

// UpdateNode applies the given options to an existing node. Attributes
// without an option stay untouched.
func (d *DAG) UpdateNode(id string, opts ...NodeOption) error {
	n, ok := d.nodes[id]
	if !ok {
		return ErrNodeNotFound
	}
	for _, opt := range opts {
		opt(n)
	}
	return nil
}

// AppendExtractedParts adds literals to a node's provided set, keeping
// first occurrences and dropping duplicates.
func (d *DAG) AppendExtractedParts(id string, literals ...string) error {
	n, ok := d.nodes[id]
	if !ok {
		return ErrNodeNotFound
	}
	n.ExtractedParts = dedupe(append(n.ExtractedParts, literals...))
	return nil
}

// Node returns the node with the given ID.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (d *DAG) Nodes() []*Node {
	out := make([]*Node, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.nodes[id])
	}
	return out
}

// Len returns the number of nodes.
func (d *DAG) Len() int {
	return len(d.order)
}

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge {
	return append([]Edge(nil), d.edges...)
}

// AddEdge records that from consumes literal from to. Parallel edges with
// different literals are kept: a consumer may need several parts from one
// producer, and each part matters for code emission.
//
// Errors:
//
//	ErrNodeNotFound - Either endpoint is unknown.
func (d *DAG) AddEdge(from, to, literal string) error {
	if _, ok := d.nodes[from]; !ok {
		return ErrNodeNotFound
	}
	if _, ok := d.nodes[to]; !ok {
		return ErrNodeNotFound
	}
	d.edges = append(d.edges, Edge{From: from, To: to, Literal: literal})
	d.out[from] = append(d.out[from], len(d.edges)-1)
	d.in[to] = append(d.in[to], len(d.edges)-1)
	return nil
}

// Successors returns the distinct targets of the node's outgoing edges in
// first-edge order.
func (d *DAG) Successors(id string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, at := range d.out[id] {
		to := d.edges[at].To
		if _, dup := seen[to]; dup {
			continue
		}
		seen[to] = struct{}{}
		out = append(out, to)
	}
	return out
}

// Predecessors returns the distinct sources of the node's incoming edges
// in first-edge order.
func (d *DAG) Predecessors(id string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, at := range d.in[id] {
		from := d.edges[at].From
		if _, dup := seen[from]; dup {
			continue
		}
		seen[from] = struct{}{}
		out = append(out, from)
	}
	return out
}

// ConsumedParts returns the distinct literals on the node's outgoing
// edges in edge order: the parts this node needs produced before it can
// replay. Code emission parameterizes the node's snippet with exactly
// this list.
func (d *DAG) ConsumedParts(id string) []string {
	var parts []string
	for _, at := range d.out[id] {
		if lit := d.edges[at].Literal; lit != "" {
			parts = append(parts, lit)
		}
	}
	return dedupe(parts)
}

// Sources returns nodes with no incoming edges, in insertion order. On a
// completed discovery the master node is the unique source.
func (d *DAG) Sources() []string {
	var out []string
	for _, id := range d.order {
		if len(d.in[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Sinks returns nodes with no outgoing edges, in insertion order.
func (d *DAG) Sinks() []string {
	var out []string
	for _, id := range d.order {
		if len(d.out[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// DetectCycle looks for a directed cycle.
//
// Description:
//
//	Depth-first search with a recursion stack. Nodes are visited in
//	insertion order and successors in edge order, so the reported path
//	is deterministic for a given graph.
//
// Outputs:
//
//	[]string - The node IDs along the first cycle found, with the entry
//	node repeated at the end; nil when the graph is acyclic.
func (d *DAG) DetectCycle() []string {
	visited := make(map[string]bool, len(d.order))
	onStack := make(map[string]bool, len(d.order))
	var path []string

	var walk func(id string) []string
	walk = func(id string) []string {
		visited[id] = true
		onStack[id] = true
		path = append(path, id)

		for _, next := range d.Successors(id) {
			if !visited[next] {
				if cycle := walk(next); cycle != nil {
					return cycle
				}
			} else if onStack[next] {
				// Slice the current path from the re-entered node
				// and close the loop.
				start := 0
				for i, p := range path {
					if p == next {
						start = i
						break
					}
				}
				cycle := append([]string(nil), path[start:]...)
				return append(cycle, next)
			}
		}

		onStack[id] = false
		path = path[:len(path)-1]
		return nil
	}

	for _, id := range d.order {
		if visited[id] {
			continue
		}
		if cycle := walk(id); cycle != nil {
			return cycle
		}
	}
	return nil
}

// dedupe removes duplicate strings, keeping first occurrences in order.
// Always returns a fresh slice so callers' backing arrays are never
// aliased through the option API.
func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
