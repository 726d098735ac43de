// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wlg001/Integuru/pkg/ux"
)

// RenderOptions controls the text dumps of the DAG.
type RenderOptions struct {
	// Color styles the output with the terminal palette. Leave false
	// when writing to a file or a pipe.
	Color bool

	// MaxDepth caps how deep the forward dump descends. Zero means
	// unlimited.
	MaxDepth int
}

// Render writes the forward tree dump: sources first, successors
// indented below their consumers with box-drawing connectors. A node
// reachable on several paths is expanded once and marked as already
// visited afterwards.
func (d *DAG) Render(w io.Writer, opts RenderOptions) error {
	var sb strings.Builder
	visited := make(map[string]struct{})

	sources := d.Sources()
	for i, id := range sources {
		d.renderForward(&sb, id, "", i == len(sources)-1, visited, 1, opts)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (d *DAG) renderForward(sb *strings.Builder, id, prefix string, isLast bool, visited map[string]struct{}, depth int, opts RenderOptions) {
	connector := "├── "
	if isLast {
		connector = "└── "
	}
	childPrefix := prefix + "│   "
	if isLast {
		childPrefix = prefix + "    "
	}

	n := d.nodes[id]
	sb.WriteString(prefix + connector + d.forwardLabel(n, childPrefix, opts.Color) + "\n")
	visited[id] = struct{}{}

	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		return
	}

	children := d.Successors(id)
	for i, child := range children {
		lastChild := i == len(children)-1
		if _, seen := visited[child]; seen {
			loop := "├── "
			if lastChild {
				loop = "└── "
			}
			sb.WriteString(childPrefix + loop + paint(ux.Styles.Muted, "(already visited) [node_id: "+child+"]", opts.Color) + "\n")
			continue
		}
		d.renderForward(sb, child, childPrefix, lastChild, visited, depth+1, opts)
	}
}

// forwardLabel builds the multi-line node label. Continuation lines are
// indented under the connector so the tree stays readable.
func (d *DAG) forwardLabel(n *Node, childPrefix string, color bool) string {
	cont := "\n" + childPrefix + "    "

	label := paint(kindStyle(n.Kind), "["+string(n.Kind)+"]", color) +
		" " + paint(ux.Styles.Muted, "[node_id: "+n.ID+"]", color)
	if len(n.InputVariables) > 0 {
		label += cont + fmt.Sprintf("[input_variables: %v]", n.InputVariables)
	}
	label += cont + fmt.Sprintf("[dynamic_parts: %v]", n.DynamicParts)
	label += cont + fmt.Sprintf("[extracted_parts: %v]", n.ExtractedParts)
	label += cont + "[" + n.Content.Key() + "]"
	return label
}

// RenderReverse writes the replay-order dump: every node is printed after
// all of its successors, so reading top to bottom gives the order the
// requests must be made in.
func (d *DAG) RenderReverse(w io.Writer, opts RenderOptions) error {
	var sb strings.Builder
	done := make(map[string]struct{})

	sources := d.Sources()
	for i, id := range sources {
		d.renderReverse(&sb, id, "", i == len(sources)-1, make(map[string]struct{}), done, opts)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (d *DAG) renderReverse(sb *strings.Builder, id, prefix string, isLast bool, onPath, done map[string]struct{}, opts RenderOptions) {
	if _, ok := done[id]; ok {
		return
	}
	if _, ok := onPath[id]; ok {
		return
	}
	onPath[id] = struct{}{}
	defer delete(onPath, id)

	childPrefix := prefix + "│   "
	if isLast {
		childPrefix = prefix + "    "
	}

	children := d.Successors(id)
	for i, child := range children {
		d.renderReverse(sb, child, childPrefix, i == len(children)-1, onPath, done, opts)
	}

	connector := "├── "
	if isLast {
		connector = "└── "
	}
	sb.WriteString(prefix + connector + d.reverseLabel(d.nodes[id], opts.Color) + "\n")
	done[id] = struct{}{}
}

// reverseLabel builds the single-line node label used in replay order.
func (d *DAG) reverseLabel(n *Node, color bool) string {
	return paint(kindStyle(n.Kind), "["+string(n.Kind)+"]", color) +
		" " + paint(ux.Styles.Muted, "[node_id: "+n.ID+"]", color) +
		fmt.Sprintf(" [dynamic_parts: %v]", n.DynamicParts) +
		fmt.Sprintf(" [extracted_parts: %v]", n.ExtractedParts) +
		fmt.Sprintf(" [input_variables: %v]", n.InputVariables) +
		" [" + n.Content.Key() + "]"
}

// ReplayOrder returns every node reachable from the sources, each after
// all of its successors. This is the order emitted code must call the
// requests in: producers run before consumers.
func (d *DAG) ReplayOrder() []string {
	var order []string
	done := make(map[string]struct{})

	var walk func(id string, onPath map[string]struct{})
	walk = func(id string, onPath map[string]struct{}) {
		if _, ok := done[id]; ok {
			return
		}
		if _, ok := onPath[id]; ok {
			return
		}
		onPath[id] = struct{}{}
		defer delete(onPath, id)

		for _, child := range d.Successors(id) {
			walk(child, onPath)
		}
		order = append(order, id)
		done[id] = struct{}{}
	}

	for _, id := range d.Sources() {
		walk(id, make(map[string]struct{}))
	}
	return order
}

func kindStyle(kind NodeKind) lipgloss.Style {
	switch kind {
	case KindMaster:
		return ux.Styles.Highlight
	case KindCurl:
		return ux.Styles.Subtitle
	case KindCookie:
		return ux.Styles.Success
	case KindNotFound:
		return ux.Styles.Error
	default:
		return ux.Styles.Bold
	}
}

func paint(style lipgloss.Style, s string, color bool) string {
	if !color {
		return s
	}
	return style.Render(s)
}
