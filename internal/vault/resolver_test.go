package vault

import "testing"

func mustBuild(t *testing.T, files []File) *Vault {
	t.Helper()
	v, err := Build(files)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return v
}

func TestResolve_DanglingEdge(t *testing.T) {
	v := mustBuild(t, []File{
		{Path: "A.md", Text: "[[B]]"},
	})
	r := Resolve(v)
	dangling := r.Dangling()
	if len(dangling) != 1 {
		t.Fatalf("len(dangling) = %d, want 1", len(dangling))
	}
	if dangling[0].From != "A" || dangling[0].To != "B" {
		t.Errorf("dangling = %+v", dangling[0])
	}
}

func TestResolve_DuplicateLinksProduceDuplicateEdges(t *testing.T) {
	v := mustBuild(t, []File{
		{Path: "A.md", Text: "[[B]] and [[B]]"},
		{Path: "B.md", Text: ""},
	})
	r := Resolve(v)
	if len(r.Edges) != 2 {
		t.Fatalf("len(edges) = %d, want 2", len(r.Edges))
	}
	if r.Resolved() != 2 {
		t.Errorf("resolved = %d, want 2", r.Resolved())
	}
}

func TestOrphans_NoRoots(t *testing.T) {
	// A -> B, B -> C, nothing points at A.
	v := mustBuild(t, []File{
		{Path: "A.md", Text: "[[B]]"},
		{Path: "B.md", Text: "[[C]]"},
		{Path: "C.md", Text: ""},
	})
	orphans := Resolve(v).Orphans()
	if len(orphans) != 1 || orphans[0] != "A" {
		t.Errorf("orphans = %v, want [A]", orphans)
	}
}

func TestOrphans_RootExcluded(t *testing.T) {
	v := mustBuild(t, []File{
		{Path: "Index.md", Text: "[[A]]"},
		{Path: "A.md", Text: ""},
	})
	r := Resolve(v)
	if got := r.Orphans(); len(got) != 1 || got[0] != "Index" {
		t.Errorf("orphans without roots = %v, want [Index]", got)
	}
	if got := r.Orphans("Index"); len(got) != 0 {
		t.Errorf("orphans with root = %v, want []", got)
	}
}

func TestOrphans_DanglingInboundDoesNotCount(t *testing.T) {
	// B is only referenced by a link from A... but A links to "b" (wrong
	// case), which is dangling. B stays an orphan.
	v := mustBuild(t, []File{
		{Path: "A.md", Text: "[[b]]"},
		{Path: "B.md", Text: "[[A]]"},
	})
	orphans := Resolve(v).Orphans()
	if len(orphans) != 1 || orphans[0] != "B" {
		t.Errorf("orphans = %v, want [B]", orphans)
	}
}

func TestResolve_EdgeOrderFollowsScanOrder(t *testing.T) {
	v := mustBuild(t, []File{
		{Path: "One.md", Text: "[[Two]] [[Three]]"},
		{Path: "Two.md", Text: "[[One]]"},
		{Path: "Three.md", Text: ""},
	})
	r := Resolve(v)
	want := []struct{ from, to string }{
		{"One", "Two"}, {"One", "Three"}, {"Two", "One"},
	}
	if len(r.Edges) != len(want) {
		t.Fatalf("len(edges) = %d, want %d", len(r.Edges), len(want))
	}
	for i, w := range want {
		if r.Edges[i].From != w.from || r.Edges[i].To != w.to {
			t.Errorf("edge[%d] = %+v, want %s -> %s", i, r.Edges[i], w.from, w.to)
		}
	}
}
