// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux provides terminal output styling for the Integuru CLI.
package ux

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
)

// Integuru color palette - copper traces on dark solder mask
var (
	// Primary palette (brightest to darkest)
	ColorCopperBright  = lipgloss.Color("#F2A65A") // Bright copper - highlights
	ColorCopperPrimary = lipgloss.Color("#E08E45") // Primary copper - brand color
	ColorCopperDeep    = lipgloss.Color("#C4733A") // Deep copper - accents
	ColorEmber         = lipgloss.Color("#A65A2E") // Ember - secondary elements

	// Dark palette (backgrounds, muted elements)
	ColorSoot = lipgloss.Color("#1C1917") // Soot - near black
	ColorAsh  = lipgloss.Color("#78716C") // Ash - muted text, borders

	// Semantic colors
	ColorSuccess = lipgloss.Color("#7FB069") // Green for resolved sources
	ColorWarning = lipgloss.Color("#F4D03F") // Amber for warnings
	ColorError   = lipgloss.Color("#E74C3C") // Red for errors and dead ends
	ColorMuted   = lipgloss.Color("#78716C") // Ash for secondary text
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	// Text styles
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style

	// Box styles
	Box      lipgloss.Style
	ErrorBox lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorCopperBright),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorCopperPrimary),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorAsh),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorCopperBright).Bold(true),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorCopperDeep).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	if isPlain() {
		return string(i)
	}
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

// plain disables styling globally. Set when stdout is not a terminal so
// piped output stays grep-friendly.
var plain atomic.Bool

// SetPlain toggles unstyled output for every helper in the package.
func SetPlain(v bool) {
	plain.Store(v)
}

func isPlain() bool {
	return plain.Load()
}

// Title prints a styled title line.
func Title(text string) {
	if isPlain() {
		fmt.Println(text)
		return
	}
	fmt.Println(Styles.Title.Render(text))
}

// Success prints a success message with a checkmark.
func Success(text string) {
	if isPlain() {
		fmt.Printf("OK: %s\n", text)
		return
	}
	fmt.Printf("%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
}

// Warning prints a warning message.
func Warning(text string) {
	if isPlain() {
		fmt.Fprintf(os.Stderr, "WARN: %s\n", text)
		return
	}
	fmt.Printf("%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
}

// Error prints an error message.
func Error(text string) {
	if isPlain() {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", text)
		return
	}
	fmt.Printf("%s %s\n", IconError.Render(), Styles.Error.Render(text))
}

// Info prints an informational message.
func Info(text string) {
	if isPlain() {
		fmt.Println(text)
		return
	}
	fmt.Printf("%s %s\n", Styles.Muted.Render("│"), text)
}

// Muted prints secondary text.
func Muted(text string) {
	if isPlain() {
		fmt.Println(text)
		return
	}
	fmt.Println(Styles.Muted.Render(text))
}
