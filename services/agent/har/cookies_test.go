// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package har

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCookieFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cookies.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseCookies(t *testing.T) {
	path := writeCookieFile(t, `[
  {"name": "csrf", "value": "abc123", "domain": ".example.com", "path": "/", "expires": 1766000000.5, "httpOnly": true, "secure": true, "sameSite": "Lax"},
  {"name": "", "value": "ignored"},
  {"name": "session", "value": "s-1"},
  {"name": "csrf", "value": "replaced"}
]`)

	jar, err := ParseCookies(path)
	if err != nil {
		t.Fatalf("ParseCookies: %v", err)
	}

	if jar.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (nameless skipped, duplicate folded)", jar.Len())
	}

	csrf, ok := jar.Get("csrf")
	if !ok {
		t.Fatal("csrf not found")
	}
	if csrf.Value != "replaced" {
		t.Errorf("duplicate name should take the last record, got %q", csrf.Value)
	}
	if csrf.Domain != "" {
		t.Errorf("last record replaces wholesale, got domain %q", csrf.Domain)
	}

	if _, ok := jar.Get("absent"); ok {
		t.Error("Get(absent) = true")
	}
}

func TestParseCookies_Malformed(t *testing.T) {
	t.Run("not an array", func(t *testing.T) {
		path := writeCookieFile(t, `{"name": "csrf"}`)
		_, err := ParseCookies(path)
		if !errors.Is(err, ErrMalformedCookies) {
			t.Errorf("expected ErrMalformedCookies, got: %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ParseCookies(filepath.Join(t.TempDir(), "absent.json"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected os.ErrNotExist, got: %v", err)
		}
	})
}

func TestFindByValue(t *testing.T) {
	path := writeCookieFile(t, `[
  {"name": "first", "value": "xxTOKENxx"},
  {"name": "second", "value": "TOKEN"}
]`)
	jar, err := ParseCookies(path)
	if err != nil {
		t.Fatalf("ParseCookies: %v", err)
	}

	t.Run("substring match in file order", func(t *testing.T) {
		c, ok := jar.FindByValue("TOKEN")
		if !ok {
			t.Fatal("no match")
		}
		if c.Name != "first" {
			t.Errorf("matched %q, want the first cookie in file order", c.Name)
		}
	})

	t.Run("case sensitive", func(t *testing.T) {
		if _, ok := jar.FindByValue("token"); ok {
			t.Error("lowercase needle matched an uppercase value")
		}
	})

	t.Run("empty literal matches nothing", func(t *testing.T) {
		if _, ok := jar.FindByValue(""); ok {
			t.Error("empty literal matched")
		}
	})

	t.Run("no match", func(t *testing.T) {
		if _, ok := jar.FindByValue("absent"); ok {
			t.Error("unexpected match")
		}
	})
}
