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
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/wlg001/Integuru/services/agent/graph"
	"github.com/wlg001/Integuru/services/llm"
)

const (
	// SnippetsFileName holds the obfuscated per-node snippets.
	SnippetsFileName = "generated_code.txt"

	// ProgramFileName holds the stitched runnable program.
	ProgramFileName = "generated_code.py"

	// largeResponseThreshold is the response size above which HTML and
	// Javascript bodies are reduced to context windows around each
	// extracted literal instead of being quoted whole.
	largeResponseThreshold = 100000

	// snippetContext is how many bytes of context to keep on each side
	// of an extracted literal in a reduced body.
	snippetContext = 50
)

// saveFileTypes are response content types emitted code should write to
// disk rather than parse.
var saveFileTypes = map[string]struct{}{
	"application/octet-stream": {},
	"application/pdf":          {},
	"application/zip":          {},
	"image/jpeg":               {},
	"image/png":                {},
}

// Emitter turns a completed dependency graph into integration code: one
// oracle-written Python function per request node, glued together by a
// final stitching call. Emission is the stage that prefers the alternate
// model; the Oracle's Generate method handles that selection.
type Emitter struct {
	dag    *graph.DAG
	oracle llm.Oracle
	log    *slog.Logger
}

// NewEmitter builds an Emitter over a discovered graph. A nil log falls
// back to slog.Default().
func NewEmitter(dag *graph.DAG, oracle llm.Oracle, log *slog.Logger) *Emitter {
	if log == nil {
		log = slog.Default()
	}
	return &Emitter{dag: dag, oracle: oracle, log: log}
}

// EmitResult reports where emission wrote its artifacts.
type EmitResult struct {
	SnippetsPath string
	ProgramPath  string
}

// Emit generates integration code for every node in replay order.
//
// Description:
//
//	Walks the graph in replay order (producers before consumers). Cookie
//	nodes become one-line jar lookups, not_found nodes become comment
//	markers, and request nodes each cost one oracle call. The combined
//	snippets are passed through the obfuscation map so captured tokens
//	never appear in the artifacts, written to SnippetsFileName, then a
//	final oracle call stitches them into the runnable program written to
//	ProgramFileName. Both paths are rooted at dir.
//
// Errors:
//
//	Any oracle failure aborts emission; file write failures are wrapped
//	with the path's role.
func (e *Emitter) Emit(ctx context.Context, dir string) (*EmitResult, error) {
	order := e.dag.ReplayOrder()

	var snippets []string
	var literals []string
	for _, id := range order {
		node, ok := e.dag.Node(id)
		if !ok {
			continue
		}
		literals = append(literals, e.dag.ConsumedParts(id)...)

		switch node.Kind {
		case graph.KindCookie:
			snippets = append(snippets,
				fmt.Sprintf("%s = cookie_dict['%s']", node.Content.CookieValue, node.Content.CookieName))
		case graph.KindNotFound:
			snippets = append(snippets,
				fmt.Sprintf("# unresolved value %q: no producer found in the capture", node.Content.SearchString))
		default:
			code, err := e.generateSnippet(ctx, node)
			if err != nil {
				return nil, err
			}
			snippets = append(snippets, code)
		}
	}

	combined := NewObfuscation(literals).Apply(strings.Join(snippets, "\n\n"))

	snippetsPath := filepath.Join(dir, SnippetsFileName)
	if err := os.WriteFile(snippetsPath, []byte(combined), 0o644); err != nil {
		return nil, fmt.Errorf("write snippets: %w", err)
	}
	e.log.Info("wrote code snippets", "path", snippetsPath, "count", len(snippets))

	program, err := e.aggregate(ctx, combined)
	if err != nil {
		return nil, err
	}
	programPath := filepath.Join(dir, ProgramFileName)
	if err := os.WriteFile(programPath, []byte(program), 0o644); err != nil {
		return nil, fmt.Errorf("write program: %w", err)
	}
	e.log.Info("generated integration code", "path", programPath)

	return &EmitResult{SnippetsPath: snippetsPath, ProgramPath: programPath}, nil
}

// generateSnippet asks the oracle for one callable function replaying the
// node's request, with parsing instructions derived from the captured
// response.
func (e *Emitter) generateSnippet(ctx context.Context, node *graph.Node) (string, error) {
	prompt := snippetPrompt(
		node.Content.Request.CurlCommand(),
		e.dag.ConsumedParts(node.ID),
		e.responseSection(node),
	)
	code, err := e.oracle.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate snippet for node %s: %w", node.ID, err)
	}
	return stripFences(code), nil
}

// responseSection renders the parsing instructions for a node's captured
// response: save-to-file for binary downloads, JSON key paths when the
// body decodes, regex-with-context for HTML and Javascript. Later matches
// override earlier ones, mirroring how mixed content types degrade.
func (e *Emitter) responseSection(node *graph.Node) string {
	resp := node.Content.Response
	extracted := node.ExtractedParts
	if extracted == nil {
		extracted = []string{}
	}

	var section string

	if _, ok := saveFileTypes[resp.Type]; ok {
		section = fmt.Sprintf(`The response is a downloadable file of type %s.
Include code to save the response content to a file with an appropriate extension.`, resp.Type)
	}

	if strings.Contains(resp.Type, "application/json") {
		var doc any
		if err := json.Unmarshal([]byte(resp.Text), &doc); err != nil {
			e.log.Warn("response did not decode as JSON; key paths unavailable",
				"node_id", node.ID, "error", err)
			doc = nil
		}
		keyPaths := make([][]JSONPathMatch, 0, len(extracted))
		for _, part := range extracted {
			keyPaths = append(keyPaths, FindJSONPath(doc, part))
		}
		paths, _ := json.Marshal(keyPaths)

		section = fmt.Sprintf(`Response:
%s

Parse out the following variables from the response using JSON keys:
%s

Through your judgement from analyzing the response, if polling is required to retrieve the variables above from the response. If so, implement polling else dont.`, resp.Text, paths)
	}

	if strings.Contains(resp.Type, "text/html") || strings.Contains(resp.Type, "application/javascript") {
		var body string
		if len(resp.Text) > largeResponseThreshold {
			var windows []string
			for _, part := range extracted {
				idx := strings.Index(resp.Text, part)
				if idx < 0 {
					continue
				}
				start := idx - snippetContext
				if start < 0 {
					start = 0
				}
				end := idx + len(part) + snippetContext
				if end > len(resp.Text) {
					end = len(resp.Text)
				}
				windows = append(windows, part+": "+resp.Text[start:end])
			}
			body = fmt.Sprintf(`The HTML response is too long to process entirely.
Here are the relevant sections for each variable to be extracted:

%s`, strings.Join(windows, "\n"))
		} else {
			body = fmt.Sprintf("Response:\n%s", resp.Text)
		}

		parts, _ := json.Marshal(extracted)
		section = fmt.Sprintf(`%s

Parse out the following variables from the response using regex with locational context:

%s
Do not include the variable in the regex filter as the variable will change. And do not be too specific with the regex.`, body, parts)
	}

	return section
}

// snippetPrompt assembles the per-node generation prompt.
func snippetPrompt(curl string, dynamicParts []string, responseSection string) string {
	paramsClause := "only the cookie string"
	var dynamicSection string
	if len(dynamicParts) > 0 {
		paramsClause = "1. a dict of all the parameters and 2. Just the cookie string"
		list, _ := json.Marshal(dynamicParts)
		dynamicSection = fmt.Sprintf(`Instead of hard coding, pass the following variables into the function as parameters in a dict. The dict should have keys thats the same as the value itself
%s

Keep everything else in the header hardcoded.`, list)
	}

	return fmt.Sprintf(`Task:
Write a Python function with a descriptive name that makes a request like the cURL below:
%s

Assume cookies are in a variable as parameter called "cookie_string".

The parameters should be %s.

%s

%s

Return a dictionary with the keys as the original parsed values content (needs to be hardcoded) and the values as the parsed values.

Do not include pseudo-headers or any headers that start with a colon in the request.

IMPORTANT! Do not include any backticks or markdown syntax AT ALL`, curl, paramsClause, dynamicSection, responseSection)
}

// aggregate stitches the obfuscated snippets into one runnable program.
func (e *Emitter) aggregate(ctx context.Context, combined string) (string, error) {
	prompt := fmt.Sprintf(`The following text contains multiple Python functions:

%s

Please generate Python code that does the following:
1. Fix up the functions if needed in the order they appear in the text.
2. Leave everything that is hardcoded as is.
3. Call each function in the order they appear in the text.
4. The cookies will be hard coded in the file in a string format of key=value;key=value. You will need to convert them to a dict to retrieve values from them.
5. Pass the return value of each function as an argument to the next function, if applicable.
6. Ensure that the last function in the text is called last.
7. Output the entire directly runnable code

Only provide the Python code, without any explanations or markdown formatting.
DO NOT include any backticks or markdown syntax AT ALL`, combined)

	code, err := e.oracle.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("aggregate functions: %w", err)
	}
	return stripFences(code), nil
}

// stripFences removes the markdown code fences the model sometimes emits
// despite instructions.
func stripFences(code string) string {
	code = strings.TrimSpace(code)
	code = strings.TrimPrefix(code, "```python")
	code = strings.TrimSuffix(code, "```")
	return strings.TrimSpace(code)
}
