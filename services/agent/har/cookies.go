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
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Cookie is one record from the cookie snapshot taken alongside the
// capture. Expires is kept as a json.Number because exporters disagree on
// whether it is a float, an integer, or a string.
type Cookie struct {
	Name     string      `json:"name"`
	Value    string      `json:"value"`
	Domain   string      `json:"domain"`
	Path     string      `json:"path"`
	Expires  json.Number `json:"expires"`
	HTTPOnly bool        `json:"httpOnly"`
	Secure   bool        `json:"secure"`
	SameSite string      `json:"sameSite"`
}

// CookieJar holds the snapshot's cookies keyed by name while preserving
// file order. Order matters: when a dynamic part occurs in several cookie
// values, the first cookie in the file wins.
type CookieJar struct {
	cookies []Cookie
	index   map[string]int
}

// ParseCookies loads a cookie snapshot from a JSON array file.
//
// Description:
//
//	Records without a name are skipped. A repeated name keeps its first
//	position and takes the last record, mirroring how the URL index
//	treats duplicate URLs.
//
// Errors:
//
//	ErrMalformedCookies - The file is not a JSON array of cookie records.
//	*os.PathError - The file cannot be read.
func ParseCookies(path string) (*CookieJar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cookie snapshot: %w", err)
	}

	var records []Cookie
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCookies, err)
	}

	jar := &CookieJar{index: make(map[string]int, len(records))}
	for _, c := range records {
		if c.Name == "" {
			continue
		}
		if at, ok := jar.index[c.Name]; ok {
			jar.cookies[at] = c
			continue
		}
		jar.index[c.Name] = len(jar.cookies)
		jar.cookies = append(jar.cookies, c)
	}
	return jar, nil
}

// Len returns the number of distinct cookies in the jar.
func (j *CookieJar) Len() int {
	return len(j.cookies)
}

// Get returns the cookie with the given name.
func (j *CookieJar) Get(name string) (Cookie, bool) {
	at, ok := j.index[name]
	if !ok {
		return Cookie{}, false
	}
	return j.cookies[at], true
}

// FindByValue returns the first cookie, in file order, whose value
// contains the literal. The match is case-sensitive: cookie values are
// opaque tokens, and case-folding them would invent matches. An empty
// literal matches nothing (it would otherwise match every cookie).
func (j *CookieJar) FindByValue(literal string) (Cookie, bool) {
	if literal == "" {
		return Cookie{}, false
	}
	for _, c := range j.cookies {
		if strings.Contains(c.Value, literal) {
			return c, true
		}
	}
	return Cookie{}, false
}
