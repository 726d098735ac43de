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

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/wlg001/Integuru/services/agent/har"
	"github.com/wlg001/Integuru/services/llm"
)

// =============================================================================
// Oracle Calls
// =============================================================================
//
// Each helper wraps one forced function call: it renders the prompt, names
// the function schema the model must fill, and decodes the arguments. The
// argument payload is already known to be valid JSON (the oracle checks),
// so decode failures here mean the model filled the schema with the wrong
// shape and are reported as llm.ErrInvalidArguments.

// identifyActionURL asks the oracle which candidate URL performs the
// described action. The answer must be one of the candidates; anything
// else is reported as ErrURLNotFound, because an invented URL has no
// captured request to seed the graph with.
func identifyActionURL(ctx context.Context, o llm.Oracle, candidates []har.Candidate, action string) (string, error) {
	list, err := json.Marshal(candidates)
	if err != nil {
		return "", fmt.Errorf("encode candidates: %w", err)
	}

	fn := openai.FunctionDefinition{
		Name:        "identify_end_url",
		Description: "Identify the URL responsible for a specific action",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"url": {
					Type:        jsonschema.String,
					Description: "The URL responsible for " + action,
				},
			},
			Required: []string{"url"},
		},
	}

	prompt := fmt.Sprintf(`%s
Task:
Given the above list of URLs, request types, and response formats, find the URL responsible for the action below:
%s`, list, action)

	raw, err := o.CallFunction(ctx, prompt, fn)
	if err != nil {
		return "", err
	}

	var args struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrInvalidArguments, err)
	}
	if args.URL == "" {
		return "", fmt.Errorf("%w: missing url", llm.ErrInvalidArguments)
	}

	for _, c := range candidates {
		if c.URL == args.URL {
			return args.URL, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrURLNotFound, args.URL)
}

// identifyDynamicParts asks the oracle which substrings of the minified
// curl are server-validated session values. The reply is deduplicated in
// order and stripped of empty strings before it reaches the engine.
func identifyDynamicParts(ctx context.Context, o llm.Oracle, minifiedCurl string) ([]string, error) {
	fn := openai.FunctionDefinition{
		Name: "identify_dynamic_parts",
		Description: "Given the above cURL command, identify which parts are dynamic and validated by the server " +
			"for correctness (e.g., IDs, tokens, session variables). Exclude any parameters that represent " +
			"arbitrary user input or general data that can be hardcoded (e.g., amounts, notes, messages).",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"dynamic_parts": {
					Type:  jsonschema.Array,
					Items: &jsonschema.Definition{Type: jsonschema.String},
					Description: "List of dynamic parts identified in the cURL command. Do not include duplicates. " +
						"Only strictly include the dynamic values (not the keys or any extra part in front of or " +
						"after the value) of parts that are unique to a user or session and, if incorrect, will " +
						"cause the request to fail. Do not include the keys, only the values.",
				},
			},
			Required: []string{"dynamic_parts"},
		},
	}

	prompt := fmt.Sprintf(`URL: %s

Task:

Use your best judgment to identify which parts of the cURL command are dynamic, specific to a user or session, and are checked by the server for validity. These include tokens, IDs, session variables, or any other values that are unique to a user or session and, if incorrect, will cause the request to fail.

Important:
- IGNORE THE COOKIE HEADER
- Ignore common headers like user-agent, sec-ch-ua, accept-encoding, referer, etc.
- Exclude parameters that represent arbitrary user input or general data that can be hardcoded, such as amounts, notes, messages, actions, etc.
- Only output the variable values and not the keys.
- Only include dynamic parts that are unique identifiers, tokens, or session variables.`, minifiedCurl)

	raw, err := o.CallFunction(ctx, prompt, fn)
	if err != nil {
		return nil, err
	}

	var args struct {
		DynamicParts []string `json:"dynamic_parts"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrInvalidArguments, err)
	}

	parts := make([]string, 0, len(args.DynamicParts))
	seen := make(map[string]struct{}, len(args.DynamicParts))
	for _, p := range args.DynamicParts {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		parts = append(parts, p)
	}
	return parts, nil
}

// identifyInputVariables asks the oracle which caller-supplied input
// variables appear in the full curl, and in what exact form. Variables the
// model does not report are simply absent from the result.
func identifyInputVariables(ctx context.Context, o llm.Oracle, curl string, inputVars map[string]string) (map[string]string, error) {
	vars, err := json.Marshal(inputVars)
	if err != nil {
		return nil, fmt.Errorf("encode input variables: %w", err)
	}

	fn := openai.FunctionDefinition{
		Name:        "identify_input_variables",
		Description: "Identify input variables present in the cURL command.",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"identified_variables": {
					Type:        jsonschema.Array,
					Description: "A list of identified variables and their values.",
					Items: &jsonschema.Definition{
						Type: jsonschema.Object,
						Properties: map[string]jsonschema.Definition{
							"variable_name": {
								Type:        jsonschema.String,
								Description: "The original key of the variable",
							},
							"variable_value": {
								Type: jsonschema.String,
								Description: "The exact version of the variable that is present in the cURL command. " +
									"This should closely match the value in the provided Input Variables.",
							},
						},
						Required: []string{"variable_name", "variable_value"},
					},
				},
			},
			Required: []string{"identified_variables"},
		},
	}

	prompt := fmt.Sprintf(`cURL: %s
Input Variables: %s

Task:
Identify which input variables (the value in the key-value pair) from the Input Variables provided above are present in the cURL command.

Important:
- If an input variable is found in the cURL, include it in the output.
- Do not include variables that are not provided above.
- The key of the input variable is a description of the variable.
- The value is the value that should closely match the value in the cURL command. No substitutions.`, curl, vars)

	raw, err := o.CallFunction(ctx, prompt, fn)
	if err != nil {
		return nil, err
	}

	var args struct {
		IdentifiedVariables []struct {
			VariableName  string `json:"variable_name"`
			VariableValue string `json:"variable_value"`
		} `json:"identified_variables"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrInvalidArguments, err)
	}

	identified := make(map[string]string, len(args.IdentifiedVariables))
	for _, v := range args.IdentifiedVariables {
		if v.VariableName == "" || v.VariableValue == "" {
			continue
		}
		identified[v.VariableName] = v.VariableValue
	}
	return identified, nil
}

// chooseSimplestRequest asks the oracle which curl in the list has the
// fewest further dependencies and returns its index.
func chooseSimplestRequest(ctx context.Context, o llm.Oracle, curls []string) (int, error) {
	list, err := json.Marshal(curls)
	if err != nil {
		return 0, fmt.Errorf("encode curl list: %w", err)
	}

	fn := openai.FunctionDefinition{
		Name:        "get_simplest_curl_index",
		Description: "Find the index of the simplest cURL command from a list",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"index": {
					Type:        jsonschema.Integer,
					Description: "The index of the simplest cURL command in the list",
				},
			},
			Required: []string{"index"},
		},
	}

	prompt := fmt.Sprintf(`%s
Task:
Given the above list of cURL commands, find the index of the curl that has the least number of dependencies and variables.
The index should be 0-based (i.e., the first item has index 0).`, list)

	raw, err := o.CallFunction(ctx, prompt, fn)
	if err != nil {
		return 0, err
	}

	var args struct {
		Index int `json:"index"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return 0, fmt.Errorf("%w: %v", llm.ErrInvalidArguments, err)
	}
	if args.Index < 0 || args.Index >= len(curls) {
		return 0, fmt.Errorf("%w: index %d out of range [0,%d)", llm.ErrInvalidArguments, args.Index, len(curls))
	}
	return args.Index, nil
}
