// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

// Helper to capture stdout
func captureStdout(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// Helper to capture stderr
func captureStderr(f func()) string {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	f()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// =============================================================================
// Icon.Render Tests
// =============================================================================

func TestIcon_Render_Plain(t *testing.T) {
	SetPlain(true)
	defer SetPlain(false)

	icons := []Icon{IconSuccess, IconWarning, IconError, IconArrow, IconBullet}
	for _, icon := range icons {
		if got := icon.Render(); got != string(icon) {
			t.Errorf("expected bare %q in plain mode, got %q", string(icon), got)
		}
	}
}

func TestIcon_Render_Styled(t *testing.T) {
	SetPlain(false)

	// Style rendering degrades to the bare rune when the terminal has no
	// color profile, so only assert the icon text survives.
	for _, icon := range []Icon{IconSuccess, IconWarning, IconError} {
		if got := icon.Render(); !strings.Contains(got, string(icon)) {
			t.Errorf("icon %q lost its rune: %q", string(icon), got)
		}
	}
}

func TestIcon_Render_Default(t *testing.T) {
	SetPlain(false)

	// Icons without semantic styling pass through untouched.
	for _, icon := range []Icon{IconArrow, IconBullet} {
		if got := icon.Render(); got != string(icon) {
			t.Errorf("expected %q, got %q", string(icon), got)
		}
	}
}

// =============================================================================
// Plain Mode Tests
// =============================================================================

func TestSetPlain(t *testing.T) {
	SetPlain(true)
	if !isPlain() {
		t.Error("isPlain() = false after SetPlain(true)")
	}

	SetPlain(false)
	if isPlain() {
		t.Error("isPlain() = true after SetPlain(false)")
	}
}

func TestTitle_Plain(t *testing.T) {
	SetPlain(true)
	defer SetPlain(false)

	output := captureStdout(func() {
		Title("Dependency graph")
	})

	if output != "Dependency graph\n" {
		t.Errorf("expected bare title line, got %q", output)
	}
}

func TestSuccess_Plain(t *testing.T) {
	SetPlain(true)
	defer SetPlain(false)

	output := captureStdout(func() {
		Success("operation completed")
	})

	if output != "OK: operation completed\n" {
		t.Errorf("expected 'OK: operation completed', got %q", output)
	}
}

func TestWarning_Plain(t *testing.T) {
	SetPlain(true)
	defer SetPlain(false)

	output := captureStderr(func() {
		Warning("budget exhausted")
	})

	if output != "WARN: budget exhausted\n" {
		t.Errorf("expected 'WARN: budget exhausted' on stderr, got %q", output)
	}
}

func TestError_Plain(t *testing.T) {
	SetPlain(true)
	defer SetPlain(false)

	output := captureStderr(func() {
		Error("loading HAR capture")
	})

	if output != "ERROR: loading HAR capture\n" {
		t.Errorf("expected 'ERROR: loading HAR capture' on stderr, got %q", output)
	}

	// Nothing may leak onto stdout, which is reserved for graph dumps.
	stdout := captureStdout(func() {
		Error("quiet on stdout")
	})
	if stdout != "" {
		t.Errorf("plain-mode Error wrote to stdout: %q", stdout)
	}
}

func TestInfo_Plain(t *testing.T) {
	SetPlain(true)
	defer SetPlain(false)

	output := captureStdout(func() {
		Info("capture: 3 requests, 1 cookies")
	})

	if output != "capture: 3 requests, 1 cookies\n" {
		t.Errorf("expected bare info line, got %q", output)
	}
}

func TestMuted_Plain(t *testing.T) {
	SetPlain(true)
	defer SetPlain(false)

	output := captureStdout(func() {
		Muted("secondary detail")
	})

	if output != "secondary detail\n" {
		t.Errorf("expected bare muted line, got %q", output)
	}
}

// =============================================================================
// Styled Mode Tests
// =============================================================================

func TestSuccess_Styled(t *testing.T) {
	SetPlain(false)

	output := captureStdout(func() {
		Success("operation completed")
	})

	if !strings.Contains(output, "operation completed") {
		t.Errorf("message text lost: %q", output)
	}
	if !strings.Contains(output, string(IconSuccess)) {
		t.Errorf("success icon missing: %q", output)
	}
}

func TestWarning_Styled_UsesStdout(t *testing.T) {
	SetPlain(false)

	output := captureStdout(func() {
		Warning("slow oracle")
	})

	if !strings.Contains(output, "slow oracle") {
		t.Errorf("styled warning not on stdout: %q", output)
	}
}

func TestError_Styled(t *testing.T) {
	SetPlain(false)

	output := captureStdout(func() {
		Error("something failed")
	})

	if !strings.Contains(output, "something failed") {
		t.Errorf("message text lost: %q", output)
	}
	if !strings.Contains(output, string(IconError)) {
		t.Errorf("error icon missing: %q", output)
	}
}

func TestInfo_Styled(t *testing.T) {
	SetPlain(false)

	output := captureStdout(func() {
		Info("detail line")
	})

	if !strings.Contains(output, "detail line") {
		t.Errorf("message text lost: %q", output)
	}
	if !strings.Contains(output, "│") {
		t.Errorf("info gutter missing: %q", output)
	}
}
