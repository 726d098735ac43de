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
	"strings"
	"testing"
)

// diamond builds master -> login -> seed plus master -> seed, so the seed
// is reachable on two paths.
func diamond(t *testing.T) (d *DAG, master, login, seed *Node) {
	t.Helper()
	d = New()
	master = d.AddNode(KindMaster, curlContent("POST", "https://x.test/do"))
	login = d.AddNode(KindCurl, curlContent("GET", "https://x.test/login"),
		WithExtractedParts("T1"))
	seed = d.AddNode(KindCurl, curlContent("GET", "https://x.test/seed"),
		WithExtractedParts("S1"))

	for _, e := range []struct {
		from, to, lit string
	}{
		{master.ID, login.ID, "T1"},
		{login.ID, seed.ID, "S1"},
		{master.ID, seed.ID, "S1"},
	} {
		if err := d.AddEdge(e.from, e.to, e.lit); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	return d, master, login, seed
}

func TestRender_ForwardTree(t *testing.T) {
	d, master, login, seed := diamond(t)

	var sb strings.Builder
	if err := d.Render(&sb, RenderOptions{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := sb.String()

	t.Run("root label", func(t *testing.T) {
		if !strings.HasPrefix(out, "└── [master] [node_id: "+master.ID+"]") {
			t.Errorf("dump does not open with the master:\n%s", out)
		}
		for _, want := range []string{
			"[dynamic_parts: []]",
			"[extracted_parts: []]",
			"[curl -X POST 'https://x.test/do']",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("missing %q in:\n%s", want, out)
			}
		}
	})

	t.Run("revisited node printed once", func(t *testing.T) {
		if got := strings.Count(out, "'https://x.test/seed'"); got != 1 {
			t.Errorf("seed label printed %d times, want 1:\n%s", got, out)
		}
		if !strings.Contains(out, "(already visited) [node_id: "+seed.ID+"]") {
			t.Errorf("second path to the seed not marked:\n%s", out)
		}
	})

	t.Run("connectors", func(t *testing.T) {
		if !strings.Contains(out, "├── ") || !strings.Contains(out, "└── ") {
			t.Errorf("box connectors missing:\n%s", out)
		}
	})

	t.Run("max depth", func(t *testing.T) {
		var shallow strings.Builder
		if err := d.Render(&shallow, RenderOptions{MaxDepth: 1}); err != nil {
			t.Fatalf("Render: %v", err)
		}
		if strings.Contains(shallow.String(), login.ID) {
			t.Errorf("depth cap ignored:\n%s", shallow.String())
		}
	})
}

func TestRender_ForwardLabelInputVariables(t *testing.T) {
	d := New()
	d.AddNode(KindMaster, curlContent("POST", "https://x.test/pay"),
		WithInputVariables(map[string]string{"amount": "50"}))

	var sb strings.Builder
	if err := d.Render(&sb, RenderOptions{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(sb.String(), "[input_variables: map[amount:50]]") {
		t.Errorf("input variables missing from label:\n%s", sb.String())
	}
}

func TestRenderReverse_ReplaySequence(t *testing.T) {
	d, master, login, seed := diamond(t)
	cookie := d.AddNode(KindCookie, Content{CookieName: "csrf", CookieValue: "abc"},
		WithExtractedParts("abc"))
	nf := d.AddNode(KindNotFound, Content{SearchString: "GHOST"})
	if err := d.AddEdge(master.ID, cookie.ID, "abc"); err != nil {
		t.Fatal(err)
	}
	if err := d.AddEdge(master.ID, nf.ID, "GHOST"); err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	if err := d.RenderReverse(&sb, RenderOptions{}); err != nil {
		t.Fatalf("RenderReverse: %v", err)
	}
	out := sb.String()

	t.Run("single line per node", func(t *testing.T) {
		for _, n := range d.Nodes() {
			if got := strings.Count(out, n.ID); got != 1 {
				t.Errorf("node %s printed %d times, want 1:\n%s", n.ID, got, out)
			}
		}
	})

	t.Run("producers before consumers", func(t *testing.T) {
		iSeed := strings.Index(out, seed.ID)
		iLogin := strings.Index(out, login.ID)
		iMaster := strings.Index(out, master.ID)
		iCookie := strings.Index(out, cookie.ID)
		if !(iSeed < iLogin && iLogin < iMaster) {
			t.Errorf("request order wrong:\n%s", out)
		}
		if iCookie > iMaster {
			t.Errorf("cookie printed after its consumer:\n%s", out)
		}
	})

	t.Run("label format", func(t *testing.T) {
		if !strings.Contains(out,
			"[curl] [node_id: "+login.ID+"] [dynamic_parts: []] [extracted_parts: [T1]] [input_variables: map[]] [curl -X GET 'https://x.test/login']") {
			t.Errorf("request label drifted:\n%s", out)
		}
		if !strings.Contains(out, "[cookie] [node_id: "+cookie.ID+"]") ||
			!strings.Contains(out, "[csrf]") {
			t.Errorf("cookie label drifted:\n%s", out)
		}
		if !strings.Contains(out, "[not_found] [node_id: "+nf.ID+"]") ||
			!strings.Contains(out, "[GHOST]") {
			t.Errorf("not_found label drifted:\n%s", out)
		}
	})
}

func TestReplayOrder(t *testing.T) {
	t.Run("diamond visits each node once", func(t *testing.T) {
		d, master, login, seed := diamond(t)

		order := d.ReplayOrder()
		if len(order) != 3 {
			t.Fatalf("order = %v, want 3 nodes", order)
		}
		pos := make(map[string]int, len(order))
		for i, id := range order {
			pos[id] = i
		}
		if !(pos[seed.ID] < pos[login.ID] && pos[login.ID] < pos[master.ID]) {
			t.Errorf("order = %v, want seed, login, master", order)
		}
	})

	t.Run("successors always first", func(t *testing.T) {
		d, _, _, _ := diamond(t)
		order := d.ReplayOrder()
		pos := make(map[string]int, len(order))
		for i, id := range order {
			pos[id] = i
		}
		for _, e := range d.Edges() {
			if pos[e.To] >= pos[e.From] {
				t.Errorf("producer %s not before consumer %s in %v", e.To, e.From, order)
			}
		}
	})

	t.Run("orphaned source is still emitted", func(t *testing.T) {
		d, _, _, _ := diamond(t)
		orphan := d.AddNode(KindCookie, Content{CookieName: "stray", CookieValue: "v"})

		order := d.ReplayOrder()
		if len(order) != 4 {
			t.Fatalf("order = %v, want the orphan included", order)
		}
		found := false
		for _, id := range order {
			if id == orphan.ID {
				found = true
			}
		}
		if !found {
			t.Errorf("orphan %s missing from %v", orphan.ID, order)
		}
	})
}
