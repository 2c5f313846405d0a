package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/starford/raido/internal/vault"
)

// scenario builds the three-note vault used across the golden tests:
// Index links Topic1 and Topic2; Topic2 links Topic1 and a missing note.
func scenario(t *testing.T) (*vault.Vault, *vault.Resolution) {
	t.Helper()
	v, err := vault.Build([]vault.File{
		{Path: "Index.md", Text: "[[Topic1]] [[Topic2]]"},
		{Path: "Topic1.md", Text: "no links here"},
		{Path: "Topic2.md", Text: "[[Topic1]] [[Missing]]"},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return v, vault.Resolve(v)
}

func TestBuild_Scenario(t *testing.T) {
	v, r := scenario(t)
	rep := Build(v, r, "Index")

	if rep.TotalNotes != 3 {
		t.Errorf("total_notes = %d, want 3", rep.TotalNotes)
	}
	if rep.TotalEdges != 3 {
		t.Errorf("total_edges = %d, want 3", rep.TotalEdges)
	}
	if len(rep.DanglingLinks) != 1 {
		t.Fatalf("dangling = %v, want one entry", rep.DanglingLinks)
	}
	if d := rep.DanglingLinks[0]; d.From != "Topic2" || d.To != "Missing" {
		t.Errorf("dangling[0] = %+v, want Topic2 -> Missing", d)
	}
	if len(rep.OrphanNotes) != 0 {
		t.Errorf("orphans = %v, want []", rep.OrphanNotes)
	}
}

func TestBuild_ScenarioWithoutRoot(t *testing.T) {
	v, r := scenario(t)
	rep := Build(v, r)
	if len(rep.OrphanNotes) != 1 || rep.OrphanNotes[0] != "Index" {
		t.Errorf("orphans = %v, want [Index]", rep.OrphanNotes)
	}
}

func TestWriteJSON_Idempotent(t *testing.T) {
	render := func() string {
		v, r := scenario(t)
		var buf bytes.Buffer
		if err := Build(v, r, "Index").WriteJSON(&buf); err != nil {
			t.Fatalf("WriteJSON: %v", err)
		}
		return buf.String()
	}
	first := render()
	second := render()
	if first != second {
		t.Errorf("reports differ between identical scans:\n%s\n---\n%s", first, second)
	}
	if !strings.Contains(first, `"total_notes": 3`) {
		t.Errorf("unexpected JSON: %s", first)
	}
}

func TestWriteJSON_EmptyListsNotNull(t *testing.T) {
	v, err := vault.Build([]vault.File{
		{Path: "A.md", Text: "[[B]]"},
		{Path: "B.md", Text: "[[A]]"},
	})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Build(v, vault.Resolve(v)).WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "null") {
		t.Errorf("empty findings must encode as [], got: %s", out)
	}
}

func TestWriteText(t *testing.T) {
	v, r := scenario(t)
	var buf bytes.Buffer
	if err := Build(v, r, "Index").WriteText(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"notes: 3", "edges: 3", "Topic2 -> Missing", "orphan notes: none"} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q:\n%s", want, out)
		}
	}
}
