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
	"strings"
	"testing"
)

func TestNewObfuscation(t *testing.T) {
	o := NewObfuscation([]string{"tok-abc", "", "tok-abc", "sid.9"})

	if len(o) != 2 {
		t.Fatalf("entries = %d, want empties and duplicates dropped: %v", len(o), o)
	}
	for lit, alias := range o {
		if !strings.HasPrefix(alias, "var_") {
			t.Errorf("alias for %q = %q, want var_ prefix", lit, alias)
		}
		if strings.ContainsAny(alias, "-.") {
			t.Errorf("alias %q is not a bare identifier", alias)
		}
	}
	if o["tok-abc"] == o["sid.9"] {
		t.Error("distinct literals share an alias")
	}
}

func TestNewObfuscation_HashCollision(t *testing.T) {
	// costarring and liquid collide under 32-bit FNV-1a; the second one
	// must still get a distinct alias.
	o := NewObfuscation([]string{"costarring", "liquid", "other"})

	seen := make(map[string]string, len(o))
	for lit, alias := range o {
		if prev, dup := seen[alias]; dup {
			t.Fatalf("alias %q assigned to both %q and %q", alias, prev, lit)
		}
		seen[alias] = lit
	}
}

func TestObfuscation_ApplyLongestFirst(t *testing.T) {
	o := NewObfuscation([]string{"abc", "abcdef"})

	applied := o.Apply("x abcdef y abc z")
	if strings.Contains(applied, "abc") {
		t.Errorf("literal survived substitution: %q", applied)
	}
	// The longer literal must have been replaced whole, not corrupted
	// into <alias-of-abc>def.
	if strings.Contains(applied, o["abc"]+"def") {
		t.Errorf("longer literal corrupted by shorter one's alias: %q", applied)
	}
	if !strings.Contains(applied, o["abcdef"]) || !strings.Contains(applied, o["abc"]) {
		t.Errorf("aliases missing from output: %q", applied)
	}
}

func TestObfuscation_InvertRoundTrip(t *testing.T) {
	o := NewObfuscation([]string{"TOKEN-12345", "sid=9f8e", "plain"})
	code := `headers = {"Authorization": "Bearer TOKEN-12345", "Cookie": "sid=9f8e"}
print("plain", "untouched")`

	applied := o.Apply(code)
	for lit := range o {
		if strings.Contains(applied, lit) {
			t.Errorf("literal %q survived Apply", lit)
		}
	}
	if !strings.Contains(applied, "untouched") {
		t.Errorf("non-literal text modified: %q", applied)
	}

	if got := o.Invert(applied); got != code {
		t.Errorf("round trip mismatch:\n got %q\nwant %q", got, code)
	}
}

func TestObfuscation_ZeroValue(t *testing.T) {
	var o Obfuscation
	if got := o.Apply("unchanged"); got != "unchanged" {
		t.Errorf("zero-value Apply = %q", got)
	}
	if got := o.Invert("unchanged"); got != "unchanged" {
		t.Errorf("zero-value Invert = %q", got)
	}
}
