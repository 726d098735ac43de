// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package agent

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/wlg001/Integuru/services/agent/graph"
	"github.com/wlg001/Integuru/services/agent/har"
	"github.com/wlg001/Integuru/services/llm"
)

// DefaultMaxSteps bounds how many nodes one run may expand. Each expansion
// costs at least one oracle call, so the cap is primarily a spend guard
// against adversarial captures.
const DefaultMaxSteps = 15

// Option configures an Agent at construction time.
type Option func(*Agent)

// WithMaxSteps overrides the expansion budget. Values below one are
// ignored and the default is kept.
func WithMaxSteps(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxSteps = n
		}
	}
}

// WithInputVariables supplies caller-known values (amounts, recipients,
// free-form user data) so the engine can classify them as inputs instead
// of chasing them upstream.
func WithInputVariables(vars map[string]string) Option {
	return func(a *Agent) {
		for name, value := range vars {
			a.inputVars[name] = value
		}
	}
}

// WithLogger overrides the default slog logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *Agent) {
		if log != nil {
			a.log = log
		}
	}
}

// Agent is the discovery engine. It owns the DAG under construction, the
// coalescing indexes, and the work stack; the oracle is the only external
// collaborator consulted during a run.
//
// Thread Safety: not safe for concurrent use; see the package comment.
type Agent struct {
	prompt  string
	archive *har.Archive
	jar     *har.CookieJar
	oracle  llm.Oracle

	inputVars map[string]string
	varNames  []string // sorted keys of inputVars, for deterministic matching

	urlIndex map[string]har.Entry
	entries  []searchEntry

	dag         *graph.DAG
	curlIndex   map[string]string // canonical curl -> node ID
	cookieIndex map[string]string // cookie name -> node ID
	todo        []string
	maxSteps    int

	log *slog.Logger
}

// searchEntry caches the strings the upstream search compares against, so
// the per-literal scan does not re-render and re-lower every curl.
type searchEntry struct {
	entry     har.Entry
	curl      string
	curlLower string
	textLower string
}

// Result is what a run produces. DAG is always non-nil, even when Run
// returns an error, so callers can dump the partial graph for diagnosis.
type Result struct {
	// DAG is the dependency graph built so far.
	DAG *graph.DAG

	// ActionURL is the captured URL the oracle identified as performing
	// the action. Empty if identification never completed.
	ActionURL string

	// MasterID is the node ID of the action request.
	MasterID string

	// Exhausted reports that the step budget ran out with work still
	// queued. The graph is usable but incomplete.
	Exhausted bool
}

// New builds an Agent over a parsed capture.
//
// Description:
//
//	prompt is the plain-language description of the action to trace.
//	archive and jar are the parsed HAR capture and cookie snapshot; jar
//	may be empty but not nil. oracle answers the reasoning calls.
func New(prompt string, archive *har.Archive, jar *har.CookieJar, oracle llm.Oracle, opts ...Option) *Agent {
	a := &Agent{
		prompt:      prompt,
		archive:     archive,
		jar:         jar,
		oracle:      oracle,
		inputVars:   make(map[string]string),
		dag:         graph.New(),
		curlIndex:   make(map[string]string),
		cookieIndex: make(map[string]string),
		maxSteps:    DefaultMaxSteps,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.varNames = make([]string, 0, len(a.inputVars))
	for name := range a.inputVars {
		a.varNames = append(a.varNames, name)
	}
	sort.Strings(a.varNames)
	return a
}

// =============================================================================
// Discovery Loop
// =============================================================================

// Run executes discovery to a fixed point.
//
// Description:
//
//	Identifies the action request, seeds the master node, then expands
//	nodes off a LIFO stack until none have unresolved dynamic parts or
//	the step budget runs out. Expansion of one node is described on
//	expand.
//
// Outputs:
//
//   - *Result: always non-nil; carries the DAG built so far.
//   - error: har.ErrNoCandidates when the capture filters down to nothing,
//     ErrURLNotFound when the oracle names an unknown URL, any oracle
//     failure verbatim, or *graph.CycleError when an expansion closed a
//     cycle. Budget exhaustion is not an error.
func (a *Agent) Run(ctx context.Context) (*Result, error) {
	res := &Result{DAG: a.dag}

	candidates := a.archive.CandidateURLs()
	if len(candidates) == 0 {
		return res, har.ErrNoCandidates
	}
	a.urlIndex = a.archive.URLIndex()
	a.buildSearchCache()

	actionURL, err := identifyActionURL(ctx, a.oracle, candidates, a.prompt)
	if err != nil {
		return res, err
	}
	res.ActionURL = actionURL
	a.log.Info("action URL identified", "url", actionURL)

	entry, ok := a.urlIndex[actionURL]
	if !ok {
		return res, fmt.Errorf("%w: %s", ErrURLNotFound, actionURL)
	}
	res.MasterID = a.seedMaster(entry)

	steps := 0
	for len(a.todo) > 0 {
		if steps >= a.maxSteps {
			res.Exhausted = true
			a.log.Warn("step budget exhausted", "max_steps", a.maxSteps, "pending", len(a.todo))
			break
		}
		steps++

		id := a.todo[len(a.todo)-1]
		a.todo = a.todo[:len(a.todo)-1]

		if err := a.expand(ctx, id); err != nil {
			return res, err
		}
		if path := a.dag.DetectCycle(); path != nil {
			return res, graph.NewCycleError(path)
		}
	}
	return res, nil
}

// seedMaster creates (or reuses) the node for the action request and
// queues it for expansion.
func (a *Agent) seedMaster(entry har.Entry) string {
	curl := entry.Request.CurlCommand()
	id, ok := a.curlIndex[curl]
	if !ok {
		node := a.dag.AddNode(graph.KindMaster, graph.Content{
			Request:  entry.Request,
			Response: entry.Response,
		})
		a.curlIndex[curl] = node.ID
		id = node.ID
	}
	a.todo = append(a.todo, id)
	return id
}

// =============================================================================
// Node Expansion
// =============================================================================

// expand resolves every dynamic part of one node.
//
// Description:
//
//	Asks the oracle for the node's dynamic parts, reclassifies the ones
//	that are really caller-supplied inputs, then finds a producer for
//	each remaining literal: the cookie jar first, the captured responses
//	second, a not_found marker last. Producers are coalesced through the
//	curl and cookie indexes so shared dependencies converge on a single
//	node; newly created curl nodes are queued for their own expansion.
//	On return the node's resolution state lives entirely on its edges
//	and its DynamicParts list is empty.
func (a *Agent) expand(ctx context.Context, id string) error {
	node, ok := a.dag.Node(id)
	if !ok {
		return fmt.Errorf("expand %s: %w", id, graph.ErrNodeNotFound)
	}
	req := node.Content.Request

	// Javascript assets are fetched, not performed; nothing to trace.
	if strings.HasSuffix(req.RenderedURL(), ".js") {
		return a.dag.UpdateNode(id, graph.WithDynamicParts())
	}

	parts, err := identifyDynamicParts(ctx, a.oracle, req.MinifiedCurlCommand())
	if err != nil {
		return err
	}
	a.log.Debug("dynamic parts identified", "node_id", id, "count", len(parts))

	inputHits := make(map[string]string)
	if len(a.inputVars) > 0 {
		parts = a.moveInputLiterals(parts, inputHits)

		identified, err := identifyInputVariables(ctx, a.oracle, req.CurlCommand(), a.inputVars)
		if err != nil {
			return err
		}
		for name, literal := range identified {
			inputHits[name] = literal
		}
		parts = stripLiterals(parts, identified)
	}

	opts := []graph.NodeOption{graph.WithDynamicParts(parts...)}
	if len(inputHits) > 0 {
		opts = append(opts, graph.WithInputVariables(inputHits))
	}
	if err := a.dag.UpdateNode(id, opts...); err != nil {
		return err
	}

	consumerCurl := req.CurlCommand()
	var enqueue []string
	for _, s := range parts {
		if cookie, ok := a.jar.FindByValue(s); ok {
			if err := a.linkCookie(id, cookie.Name, s); err != nil {
				return err
			}
			continue
		}

		producers := a.findProducers(s, consumerCurl)
		if len(producers) == 0 {
			a.log.Warn("could not find curl with search string", "search_string", s)
			nf := a.dag.AddNode(graph.KindNotFound, graph.Content{SearchString: s})
			if err := a.dag.AddEdge(id, nf.ID, s); err != nil {
				return err
			}
			continue
		}

		chosen := producers[0]
		if len(producers) > 1 {
			curls := make([]string, len(producers))
			for i, p := range producers {
				curls[i] = p.curl
			}
			idx, err := chooseSimplestRequest(ctx, a.oracle, curls)
			if err != nil {
				return err
			}
			chosen = producers[idx]
		}

		// Script fetches and page shells reference half the session's
		// values; treating them as producers only drags the whole page
		// load into the graph.
		if strings.HasSuffix(chosen.entry.Request.URL, ".js") ||
			strings.Contains(chosen.entry.Response.Type, "text/html") {
			a.log.Debug("producer skipped",
				"search_string", s,
				"url", chosen.entry.Request.URL,
				"response_type", chosen.entry.Response.Type)
			continue
		}

		pid, ok := a.curlIndex[chosen.curl]
		if ok {
			if err := a.dag.AppendExtractedParts(pid, s); err != nil {
				return err
			}
		} else {
			n := a.dag.AddNode(graph.KindCurl, graph.Content{
				Request:  chosen.entry.Request,
				Response: chosen.entry.Response,
			}, graph.WithExtractedParts(s))
			a.curlIndex[chosen.curl] = n.ID
			pid = n.ID
			enqueue = append(enqueue, pid)
		}
		if err := a.dag.AddEdge(id, pid, s); err != nil {
			return err
		}
	}
	a.todo = append(a.todo, enqueue...)

	// Resolution state now lives on the edges.
	return a.dag.UpdateNode(id, graph.WithDynamicParts())
}

// linkCookie records that node id consumes literal s from the named
// cookie, creating the cookie node on first reference.
func (a *Agent) linkCookie(id, name, s string) error {
	cid, ok := a.cookieIndex[name]
	if ok {
		if err := a.dag.AppendExtractedParts(cid, s); err != nil {
			return err
		}
	} else {
		n := a.dag.AddNode(graph.KindCookie, graph.Content{
			CookieName:  name,
			CookieValue: s,
		}, graph.WithExtractedParts(s))
		a.cookieIndex[name] = n.ID
		cid = n.ID
	}
	if err := a.dag.AddEdge(id, cid, s); err != nil {
		return err
	}
	a.log.Debug("literal resolved to cookie", "node_id", id, "cookie", name)
	return nil
}

// moveInputLiterals splits the caller-supplied values out of parts: any
// literal contained in an input-variable value is recorded in hits under
// that variable's name instead of being chased upstream. Variable names
// are tried in sorted order so a literal matching several variables lands
// deterministically.
func (a *Agent) moveInputLiterals(parts []string, hits map[string]string) []string {
	remaining := parts[:0]
	for _, p := range parts {
		moved := false
		for _, name := range a.varNames {
			if strings.Contains(a.inputVars[name], p) {
				hits[name] = p
				moved = true
				break
			}
		}
		if !moved {
			remaining = append(remaining, p)
		}
	}
	return remaining
}

// stripLiterals removes every part equal to one of the identified
// input-variable values.
func stripLiterals(parts []string, identified map[string]string) []string {
	if len(identified) == 0 {
		return parts
	}
	values := make(map[string]struct{}, len(identified))
	for _, v := range identified {
		values[v] = struct{}{}
	}
	remaining := parts[:0]
	for _, p := range parts {
		if _, ok := values[p]; !ok {
			remaining = append(remaining, p)
		}
	}
	return remaining
}

// =============================================================================
// Upstream Search
// =============================================================================

// buildSearchCache renders every entry's canonical curl once and lowers
// the haystacks the literal scan matches against.
func (a *Agent) buildSearchCache() {
	a.entries = make([]searchEntry, 0, len(a.archive.Entries))
	for _, e := range a.archive.Entries {
		curl := e.Request.CurlCommand()
		a.entries = append(a.entries, searchEntry{
			entry:     e,
			curl:      curl,
			curlLower: strings.ToLower(curl),
			textLower: strings.ToLower(e.Response.Text),
		})
	}
}

// findProducers scans the capture for requests that could have produced
// literal s, in capture order.
//
// Description:
//
//	A request qualifies when its response contains s (case-insensitive)
//	while its own curl does not — it produced the value rather than
//	consumed it — or, for values the site URL-encodes before reuse, when
//	the decoded literal appears in the curl but not in the response. The
//	consumer's own request is excluded: its curl contains s by
//	construction, which would otherwise satisfy the decoded branch and
//	close a self-loop.
func (a *Agent) findProducers(s, consumerCurl string) []searchEntry {
	sLower := strings.ToLower(s)
	decoded, err := url.PathUnescape(s)
	if err != nil {
		decoded = s
	}

	var out []searchEntry
	for _, e := range a.entries {
		if e.curl == consumerCurl {
			continue
		}
		if strings.Contains(e.textLower, sLower) && !strings.Contains(e.curlLower, sLower) {
			out = append(out, e)
			continue
		}
		if strings.Contains(e.curl, decoded) && !strings.Contains(e.entry.Response.Text, decoded) {
			out = append(out, e)
		}
	}
	return out
}
