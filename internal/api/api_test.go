package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/storage"
	"github.com/starford/raido/internal/vaultservice"
)

// testEnv sets up a temp vault, SQLite DB, service, and router.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string, roots ...string) (*vaultservice.Service, http.Handler) {
	t.Helper()

	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	dbFile, err := os.CreateTemp("", "raido-api-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := vaultservice.NewService(store, db, roots)
	router := NewRouter(svc, authToken != "", authToken, nil)
	return svc, router
}

func createNote(t *testing.T, router http.Handler, path, content string) {
	t.Helper()
	body, _ := json.Marshal(CreateNoteRequest{Path: path, Content: content})
	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create %s status = %d, body = %s", path, w.Code, w.Body.String())
	}
}

func TestCreateAndGetNote(t *testing.T) {
	_, router := testEnv(t, "")
	createNote(t, router, "hello.md", "# Hello\nSee [[world]].")

	req := httptest.NewRequest(http.MethodGet, "/notes/hello.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var note NoteDetail
	_ = json.Unmarshal(w.Body.Bytes(), &note)
	if note.Path != "hello.md" {
		t.Errorf("path = %q", note.Path)
	}
	if note.Title != "hello" {
		t.Errorf("title = %q, want hello", note.Title)
	}
	if note.Heading != "Hello" {
		t.Errorf("heading = %q, want Hello", note.Heading)
	}
	if len(note.Links) != 1 || note.Links[0].Target != "world" {
		t.Errorf("links = %v", note.Links)
	}
}

func TestGetNote_NotFound(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodGet, "/notes/missing.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestCreateNote_Conflict(t *testing.T) {
	_, router := testEnv(t, "")
	createNote(t, router, "dup.md", "first")

	body, _ := json.Marshal(CreateNoteRequest{Path: "dup.md", Content: "second"})
	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestUpdateNote_ChecksumMismatch(t *testing.T) {
	_, router := testEnv(t, "")
	createNote(t, router, "up.md", "original")

	body, _ := json.Marshal(UpdateNoteRequest{Content: "changed"})
	req := httptest.NewRequest(http.MethodPut, "/notes/up.md", bytes.NewReader(body))
	req.Header.Set("If-Match", `"wrong-checksum"`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestDeleteNote(t *testing.T) {
	_, router := testEnv(t, "")
	createNote(t, router, "bye.md", "gone soon")

	req := httptest.NewRequest(http.MethodDelete, "/notes/bye.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/notes/bye.md", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", w.Code)
	}
}

func TestListNotes(t *testing.T) {
	_, router := testEnv(t, "")
	createNote(t, router, "a.md", "a")
	createNote(t, router, "b.md", "b")

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var resp NoteListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 || len(resp.Notes) != 2 {
		t.Errorf("total = %d, len = %d, want 2/2", resp.Total, len(resp.Notes))
	}
}

func TestGraph(t *testing.T) {
	_, router := testEnv(t, "")
	createNote(t, router, "a.md", "[[b]] and [[Missing]]")
	createNote(t, router, "b.md", "back to [[a]]")

	req := httptest.NewRequest(http.MethodGet, "/graph", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("graph status = %d", w.Code)
	}
	var resp GraphResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Nodes) != 2 {
		t.Errorf("nodes = %v", resp.Nodes)
	}
	if len(resp.Edges) != 3 {
		t.Errorf("len(edges) = %d, want 3", len(resp.Edges))
	}
	danglingCount := 0
	for _, e := range resp.Edges {
		if e.Dangling {
			danglingCount++
		}
	}
	if danglingCount != 1 {
		t.Errorf("dangling edges = %d, want 1", danglingCount)
	}
}

func TestReport(t *testing.T) {
	_, router := testEnv(t, "", "Index")
	createNote(t, router, "Index.md", "[[Topic1]] [[Topic2]]")
	createNote(t, router, "Topic1.md", "no links here")
	createNote(t, router, "Topic2.md", "[[Topic1]] [[Missing]]")

	req := httptest.NewRequest(http.MethodGet, "/report", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("report status = %d, body = %s", w.Code, w.Body.String())
	}
	var rep ReportResponse
	_ = json.Unmarshal(w.Body.Bytes(), &rep)
	if rep.TotalNotes != 3 {
		t.Errorf("total_notes = %d, want 3", rep.TotalNotes)
	}
	if rep.TotalEdges != 3 {
		t.Errorf("total_edges = %d, want 3", rep.TotalEdges)
	}
	if len(rep.DanglingLinks) != 1 || rep.DanglingLinks[0].From != "Topic2" || rep.DanglingLinks[0].To != "Missing" {
		t.Errorf("dangling = %v", rep.DanglingLinks)
	}
	if len(rep.OrphanNotes) != 0 {
		t.Errorf("orphans = %v, want [] (Index excluded as root)", rep.OrphanNotes)
	}
	if len(rep.DuplicateTitles) != 0 {
		t.Errorf("duplicate_titles = %v, want []", rep.DuplicateTitles)
	}
}

func TestAuth_TokenRequired(t *testing.T) {
	_, router := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status with token = %d, want 200", w.Code)
	}
}

func TestCreateNote_InvalidBody(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
