// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package request

import (
	"errors"
	"strings"
	"testing"
)

func TestCurlCommand_HeaderOrder(t *testing.T) {
	r := New("POST", "https://api.example.com/v1/transfer")
	r.AddHeader("Authorization", "Bearer tok123")
	r.AddHeader("X-Request-Id", "req-9")

	got := r.CurlCommand()
	want := "curl -X POST -H 'Authorization: Bearer tok123' -H 'X-Request-Id: req-9' 'https://api.example.com/v1/transfer'"
	if got != want {
		t.Errorf("CurlCommand = %q, want %q", got, want)
	}
}

func TestCurlCommand_QueryAppended(t *testing.T) {
	r := New("GET", "https://x.test/a")
	r.AddQueryParam("b", "1")
	r.AddQueryParam("c", "2")

	got := r.CurlCommand()
	want := "curl -X GET 'https://x.test/a?b=1&c=2'"
	if got != want {
		t.Errorf("CurlCommand = %q, want %q", got, want)
	}

	// Repeated keys keep their first position and take the last value.
	r.AddQueryParam("b", "9")
	got = r.CurlCommand()
	want = "curl -X GET 'https://x.test/a?b=9&c=2'"
	if got != want {
		t.Errorf("after refold: CurlCommand = %q, want %q", got, want)
	}
}

func TestCurlCommand_RepeatedCallsStable(t *testing.T) {
	r := New("GET", "https://x.test/a")
	r.AddQueryParam("b", "1")

	first := r.CurlCommand()
	second := r.CurlCommand()
	if first != second {
		t.Errorf("renderings differ:\n first: %q\nsecond: %q", first, second)
	}
}

func TestCurlCommand_JSONBody(t *testing.T) {
	t.Run("inserts content type", func(t *testing.T) {
		r := New("POST", "https://x.test/do")
		r.AddHeader("Authorization", "Bearer t")
		r.SetBody(`{"to": "alice", "amount": 100}`, "application/json")

		got := r.CurlCommand()
		want := "curl -X POST -H 'Authorization: Bearer t' -H 'Content-Type: application/json' --data '{\"amount\":100,\"to\":\"alice\"}' 'https://x.test/do'"
		if got != want {
			t.Errorf("CurlCommand = %q, want %q", got, want)
		}
	})

	t.Run("keeps captured content type", func(t *testing.T) {
		r := New("POST", "https://x.test/do")
		r.AddHeader("content-type", "application/json; charset=utf-8")
		r.SetBody(`{"a":1}`, "application/json; charset=utf-8")

		got := r.CurlCommand()
		if strings.Count(got, "ontent-") != 1 {
			t.Errorf("content type header duplicated: %q", got)
		}
	})

	t.Run("non JSON body passes through", func(t *testing.T) {
		r := New("POST", "https://x.test/do")
		r.SetBody("a=1&b=2", "application/x-www-form-urlencoded")

		got := r.CurlCommand()
		want := "curl -X POST --data 'a=1&b=2' 'https://x.test/do'"
		if got != want {
			t.Errorf("CurlCommand = %q, want %q", got, want)
		}
	})

	t.Run("invalid JSON with JSON content type kept as text", func(t *testing.T) {
		r := New("POST", "https://x.test/do")
		r.SetBody("{broken", "application/json")

		if r.JSONBody {
			t.Error("JSONBody = true for unparseable body")
		}
		if r.Body != "{broken" {
			t.Errorf("Body = %q, want original text", r.Body)
		}
	})
}

func TestMinifiedCurlCommand(t *testing.T) {
	r := New("GET", "https://x.test/a")
	r.AddHeader("Referer", "https://x.test/home")
	r.AddHeader("Cookie", "sid=1")
	r.AddHeader("X-Token", "t0k")

	got := r.MinifiedCurlCommand()
	want := "curl -X GET -H 'X-Token: t0k' 'https://x.test/a'"
	if got != want {
		t.Errorf("MinifiedCurlCommand = %q, want %q", got, want)
	}

	// The full rendering keeps the headers.
	full := r.CurlCommand()
	if !strings.Contains(full, "Referer") || !strings.Contains(full, "Cookie") {
		t.Errorf("full rendering lost headers: %q", full)
	}
}

func TestHeader_CaseInsensitive(t *testing.T) {
	r := New("GET", "https://x.test/a")
	r.AddHeader("Content-Type", "text/plain")

	if v, ok := r.Header("content-type"); !ok || v != "text/plain" {
		t.Errorf("Header(content-type) = %q, %v", v, ok)
	}

	// Folding is case-insensitive: first casing wins, last value wins.
	r.AddHeader("CONTENT-TYPE", "application/json")
	if len(r.Headers) != 1 {
		t.Fatalf("expected 1 header after fold, got %d", len(r.Headers))
	}
	if r.Headers[0].Name != "Content-Type" || r.Headers[0].Value != "application/json" {
		t.Errorf("folded header = %+v", r.Headers[0])
	}
}

func TestParseCurl_RoundTrip(t *testing.T) {
	build := func(f func(*Request)) *Request {
		r := New("GET", "https://x.test/a")
		f(r)
		return r
	}

	tests := []struct {
		name string
		req  *Request
	}{
		{
			name: "bare GET",
			req:  New("GET", "https://x.test/a"),
		},
		{
			name: "headers and query",
			req: build(func(r *Request) {
				r.AddHeader("Authorization", "Bearer tok")
				r.AddHeader("X-A", "b: c")
				r.AddQueryParam("page", "2")
				r.AddQueryParam("q", "hello")
			}),
		},
		{
			name: "JSON body without content type",
			req: build(func(r *Request) {
				r.Method = "POST"
				r.SetBody(`{"b": 2, "a": 1}`, "application/json")
			}),
		},
		{
			name: "form body",
			req: build(func(r *Request) {
				r.Method = "POST"
				r.AddHeader("Content-Type", "application/x-www-form-urlencoded")
				r.SetBody("a=1&b=2", "application/x-www-form-urlencoded")
			}),
		},
		{
			name: "URL already carrying a query",
			req: build(func(r *Request) {
				r.URL = "https://x.test/a?pre=1"
				r.AddQueryParam("pre", "1")
			}),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			canonical := tc.req.CurlCommand()

			parsed, err := ParseCurl(canonical)
			if err != nil {
				t.Fatalf("ParseCurl(%q): %v", canonical, err)
			}

			again := parsed.CurlCommand()
			if again != canonical {
				t.Errorf("round trip diverged:\n    in: %q\n   out: %q", canonical, again)
			}
		})
	}
}

func TestParseCurl_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not curl", "wget 'https://x.test'"},
		{"dangling method flag", "curl -X"},
		{"dangling header flag", "curl -X GET -H"},
		{"unterminated quote", "curl -X GET 'https://x.test"},
		{"no URL", "curl -X GET -H 'A: b'"},
		{"empty", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCurl(tc.in)
			if err == nil {
				t.Fatalf("expected error for %q", tc.in)
			}
			if !errors.Is(err, ErrMalformedCurl) {
				t.Errorf("expected ErrMalformedCurl, got: %v", err)
			}
		})
	}
}

func TestNormalizeJSON(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"object keys sorted", `{"b": 2, "a": 1}`, `{"a":1,"b":2}`, true},
		{"array", `[1, 2, 3]`, `[1,2,3]`, true},
		{"scalar", "123", "123", true},
		{"not JSON", "a=1&b=2", "", false},
		{"empty", "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeJSON(tc.in)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if got != tc.want {
				t.Errorf("NormalizeJSON = %q, want %q", got, tc.want)
			}
		})
	}

	t.Run("idempotent", func(t *testing.T) {
		once, ok := NormalizeJSON(`{"z": [3, {"y": "x"}], "a": true}`)
		if !ok {
			t.Fatal("first pass failed")
		}
		twice, ok := NormalizeJSON(once)
		if !ok {
			t.Fatal("second pass failed")
		}
		if once != twice {
			t.Errorf("not idempotent: %q vs %q", once, twice)
		}
	})
}
