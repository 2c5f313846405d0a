package vaultservice

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/testutil"
)

func testService(t *testing.T, roots ...string) *Service {
	t.Helper()
	_, store := testutil.TestVault(t)
	db := testutil.TestDB(t)
	return NewService(store, db, roots)
}

func TestCreateAndGet(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	created, err := svc.CreateNote(ctx, "topics/hello.md", []byte("# Hi\n[[world]] ✅"))
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if created.Title != "hello" {
		t.Errorf("title = %q, want hello", created.Title)
	}
	if len(created.Links) != 1 || created.Links[0].Target != "world" || created.Links[0].Marker != "✅" {
		t.Errorf("links = %v", created.Links)
	}

	got, err := svc.GetNote(ctx, "topics/hello.md")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Checksum != created.Checksum {
		t.Errorf("checksum mismatch: %q vs %q", got.Checksum, created.Checksum)
	}
}

func TestCreate_AlreadyExists(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "a.md", []byte("x")); err != nil {
		t.Fatal(err)
	}
	_, err := svc.CreateNote(ctx, "a.md", []byte("y"))
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := testService(t)
	_, err := svc.GetNote(context.Background(), "missing.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdate_ChecksumConflict(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "a.md", []byte("one")); err != nil {
		t.Fatal(err)
	}
	_, err := svc.UpdateNote(ctx, "a.md", []byte("two"), "stale-checksum")
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}

func TestUpdate_RewritesLinks(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "a.md", []byte("[[old]]")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateNote(ctx, "a.md", []byte("[[new]]"), ""); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}

	bl, err := svc.Backlinks(ctx, "old")
	if err != nil {
		t.Fatal(err)
	}
	if len(bl) != 0 {
		t.Errorf("stale backlinks = %v", bl)
	}
	bl, _ = svc.Backlinks(ctx, "new")
	if len(bl) != 1 || bl[0] != "a.md" {
		t.Errorf("backlinks = %v, want [a.md]", bl)
	}
}

func TestReport_DuplicateTitlesSurfaced(t *testing.T) {
	svc := testService(t, "Index")
	ctx := context.Background()

	for path, text := range map[string]string{
		"Index.md":    "[[Note]]",
		"x/Note.md":   "body",
		"y/Note.md":   "other body",
		"Lonely.md":   "nothing links here",
		"Topic.md":    "[[Ghost]]",
		"z/Topic2.md": "[[Topic]]",
	} {
		if _, err := svc.CreateNote(ctx, path, []byte(text)); err != nil {
			t.Fatalf("CreateNote(%s): %v", path, err)
		}
	}

	rep, err := svc.Report(ctx)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if rep.TotalNotes != 6 {
		t.Errorf("total_notes = %d, want 6", rep.TotalNotes)
	}
	if len(rep.DuplicateTitles) != 1 || rep.DuplicateTitles[0].Title != "Note" {
		t.Errorf("duplicate_titles = %v", rep.DuplicateTitles)
	}
	foundGhost := false
	for _, d := range rep.DanglingLinks {
		if d.To == "Ghost" {
			foundGhost = true
		}
	}
	if !foundGhost {
		t.Errorf("dangling = %v, want a Ghost entry", rep.DanglingLinks)
	}
	for _, o := range rep.OrphanNotes {
		if o == "Index" {
			t.Error("Index is a root and must not be reported as orphan")
		}
	}
}

func TestDelete_RemovesFromIndex(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "a.md", []byte("[[b]]")); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteNote(ctx, "a.md"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	bl, _ := svc.Backlinks(ctx, "b")
	if len(bl) != 0 {
		t.Errorf("backlinks after delete = %v", bl)
	}
	if _, err := svc.GetNote(ctx, "a.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
