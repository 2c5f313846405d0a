package vault

import (
	"errors"
	"testing"

	"github.com/starford/raido/internal/apperr"
)

func TestTitleOf(t *testing.T) {
	cases := []struct{ path, want string }{
		{"02 - Functions.md", "02 - Functions"},
		{"topics/Closures.md", "Closures"},
		{"plain", "plain"},
		{"a/b/JavaScript Notes Index.md", "JavaScript Notes Index"},
	}
	for _, c := range cases {
		if got := TitleOf(c.path); got != c.want {
			t.Errorf("TitleOf(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}

func TestBuild_Basic(t *testing.T) {
	v, err := Build([]File{
		{Path: "Index.md", Text: "[[Topic1]] [[Topic2]]"},
		{Path: "Topic1.md", Text: "no links here"},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(v.Notes) != 2 {
		t.Fatalf("len(notes) = %d, want 2", len(v.Notes))
	}
	if v.Notes[0].Title != "Index" || v.Notes[1].Title != "Topic1" {
		t.Errorf("titles = %q, %q", v.Notes[0].Title, v.Notes[1].Title)
	}
	if len(v.Notes[0].Links) != 2 {
		t.Errorf("index links = %v", v.Notes[0].Links)
	}
	if v.Lookup("Topic1") == nil {
		t.Error("Lookup(Topic1) = nil")
	}
	if v.Lookup("Topic2") != nil {
		t.Error("Lookup(Topic2) should be nil (no such file)")
	}
}

func TestBuild_DuplicateTitle(t *testing.T) {
	_, err := Build([]File{
		{Path: "a/02 - Functions.md", Text: "x"},
		{Path: "b/02 - Functions.md", Text: "y"},
	})
	if err == nil {
		t.Fatal("expected DuplicateTitleError")
	}
	var dup *apperr.DuplicateTitleError
	if !errors.As(err, &dup) {
		t.Fatalf("error type = %T", err)
	}
	if dup.Title != "02 - Functions" {
		t.Errorf("title = %q", dup.Title)
	}
	if dup.PathA != "a/02 - Functions.md" || dup.PathB != "b/02 - Functions.md" {
		t.Errorf("paths = %q, %q", dup.PathA, dup.PathB)
	}
}

func TestBuild_CaseSensitiveTitles(t *testing.T) {
	v, err := Build([]File{
		{Path: "Note.md", Text: ""},
		{Path: "note.md", Text: ""},
	})
	if err != nil {
		t.Fatalf("case-differing titles must not collide: %v", err)
	}
	if len(v.Notes) != 2 {
		t.Errorf("len(notes) = %d, want 2", len(v.Notes))
	}
}
