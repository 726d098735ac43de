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
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

// Obfuscation maps sensitive literals to stable placeholder identifiers,
// so session tokens from the capture never appear verbatim in emitted
// code. The zero value is usable and substitutes nothing.
type Obfuscation map[string]string

// NewObfuscation derives a placeholder for every distinct literal. The
// placeholder is var_ followed by the FNV-32a hash of the literal, which
// keeps it a valid identifier in any emitted language; hash collisions
// between distinct literals get a numeric suffix.
func NewObfuscation(literals []string) Obfuscation {
	m := make(Obfuscation, len(literals))
	taken := make(map[string]struct{}, len(literals))
	for _, lit := range literals {
		if lit == "" {
			continue
		}
		if _, ok := m[lit]; ok {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(lit))
		alias := sanitizeAlias(fmt.Sprintf("var_%d", h.Sum32()))
		for n := 2; ; n++ {
			if _, ok := taken[alias]; !ok {
				break
			}
			alias = sanitizeAlias(fmt.Sprintf("var_%d_%d", h.Sum32(), n))
		}
		taken[alias] = struct{}{}
		m[lit] = alias
	}
	return m
}

// sanitizeAlias keeps an alias a bare identifier.
func sanitizeAlias(alias string) string {
	alias = strings.ReplaceAll(alias, "-", "_")
	return strings.ReplaceAll(alias, ".", "_")
}

// Apply replaces every literal in code with its placeholder. Longer
// literals are substituted first so a literal that contains another is
// not corrupted by the shorter one's replacement.
func (o Obfuscation) Apply(code string) string {
	for _, lit := range keysByLength(o) {
		code = strings.ReplaceAll(code, lit, o[lit])
	}
	return code
}

// Invert replaces every placeholder in code with its original literal,
// undoing Apply.
func (o Obfuscation) Invert(code string) string {
	inv := make(map[string]string, len(o))
	for lit, alias := range o {
		inv[alias] = lit
	}
	for _, alias := range keysByLength(inv) {
		code = strings.ReplaceAll(code, alias, inv[alias])
	}
	return code
}

// keysByLength returns the map's keys longest first, ties broken
// lexicographically so substitution order is deterministic.
func keysByLength(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}
