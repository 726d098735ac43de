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

import "sort"

// JSONPathMatch records one place a literal value sits inside a decoded
// JSON document: the chain of object keys and array indexes leading to it,
// and the value itself.
type JSONPathMatch struct {
	KeyPath []any `json:"key_path"`
	Value   any   `json:"value"`
}

// FindJSONPath walks a decoded JSON document and returns a match for every
// string field whose value equals target exactly. Object keys are visited
// in sorted order so the match list is deterministic. doc is the result of
// unmarshalling into any: maps, slices, and primitives.
func FindJSONPath(doc any, target string) []JSONPathMatch {
	var out []JSONPathMatch
	walkJSON(doc, target, nil, &out)
	return out
}

func walkJSON(v any, target string, path []any, out *[]JSONPathMatch) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walkJSON(t[k], target, append(path, k), out)
		}
	case []any:
		for i, item := range t {
			walkJSON(item, target, append(path, i), out)
		}
	case string:
		if t == target {
			*out = append(*out, JSONPathMatch{
				KeyPath: append([]any{}, path...),
				Value:   t,
			})
		}
	}
}
