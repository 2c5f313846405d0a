// Package vaultservice coordinates storage and index operations for the
// server mode: note CRUD, the live link graph, and the findings report.
package vaultservice

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/parser"
	"github.com/starford/raido/internal/report"
	"github.com/starford/raido/internal/storage"
	"github.com/starford/raido/internal/vault"
)

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	Path        string           `json:"path"`
	Title       string           `json:"title"`
	Heading     string           `json:"heading,omitempty"`
	Content     string           `json:"content"`
	Checksum    string           `json:"checksum"`
	Tags        []string         `json:"tags"`
	Frontmatter map[string]any   `json:"frontmatter,omitempty"`
	Links       []models.LinkRef `json:"links"`
	Backlinks   []string         `json:"backlinks"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Heading   string    `json:"heading,omitempty"`
	Checksum  string    `json:"checksum"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VaultReport is the server-mode findings report. It extends the scan report
// with duplicate titles, which the watcher tolerates rather than failing on.
type VaultReport struct {
	report.Report
	DuplicateTitles []index.DuplicateTitle `json:"duplicate_titles"`
}

// Service coordinates storage and index operations.
type Service struct {
	store storage.Provider
	db    *index.DB
	roots []string
}

// NewService creates a new vault service. roots are the index-note titles
// excluded from orphan detection.
func NewService(store storage.Provider, db *index.DB, roots []string) *Service {
	return &Service{store: store, db: db, roots: roots}
}

// GetNote reads a note from storage, parses it, and enriches with backlinks.
func (s *Service) GetNote(_ context.Context, path string) (*NoteDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildNoteDetail(path, data)
}

// CreateNote writes a new note and indexes it.
func (s *Service) CreateNote(_ context.Context, path string, content []byte) (*NoteDetail, error) {
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildNoteDetail(path, content)
}

// UpdateNote writes updated content with optimistic concurrency.
func (s *Service) UpdateNote(_ context.Context, path string, content []byte, ifMatch string) (*NoteDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildNoteDetail(path, content)
}

// DeleteNote removes a note from storage and index.
func (s *Service) DeleteNote(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		return err
	}
	return s.db.DeleteNote(path)
}

// ListNotes returns paginated notes with optional tag filter.
func (s *Service) ListNotes(_ context.Context, limit, offset int, tag, sort string) ([]NoteListItem, int, error) {
	rows, total, err := s.db.ListNotes(limit, offset, tag, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]NoteListItem, len(rows))
	for i, r := range rows {
		items[i] = NoteListItem{
			Path:      r.Path,
			Title:     r.Title,
			Heading:   r.Heading,
			Checksum:  r.Checksum,
			Tags:      nonNilSlice(r.Tags),
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Graph returns all nodes and link edges for graph consumers.
func (s *Service) Graph(_ context.Context) ([]index.GraphNode, []models.Edge, error) {
	return s.db.Graph()
}

// Backlinks returns all note paths that link to the given title.
func (s *Service) Backlinks(_ context.Context, target string) ([]string, error) {
	return s.db.Backlinks(target)
}

// Report assembles the current findings report from the index.
func (s *Service) Report(_ context.Context) (*VaultReport, error) {
	notes, edges, err := s.db.Stats()
	if err != nil {
		return nil, err
	}
	dangling, err := s.db.Dangling()
	if err != nil {
		return nil, err
	}
	orphans, err := s.db.Orphans(s.roots)
	if err != nil {
		return nil, err
	}
	dups, err := s.db.DuplicateTitles()
	if err != nil {
		return nil, err
	}

	rep := &VaultReport{DuplicateTitles: dups}
	rep.TotalNotes = notes
	rep.TotalEdges = edges
	rep.DanglingLinks = []report.DanglingLink{}
	for _, e := range dangling {
		rep.DanglingLinks = append(rep.DanglingLinks, report.DanglingLink{From: e.From, To: e.To})
	}
	rep.OrphanNotes = nonNilSlice(orphans)
	if rep.DuplicateTitles == nil {
		rep.DuplicateTitles = []index.DuplicateTitle{}
	}
	return rep, nil
}

// IndexFile parses data and upserts it into the index.
// Exported so that sync and watcher callers can reuse it.
func (s *Service) IndexFile(path string, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	return s.db.UpsertNote(index.NoteRow{
		Path:      path,
		Title:     vault.TitleOf(path),
		Heading:   res.Heading,
		Checksum:  checksum.Sum(data),
		Tags:      nonNilSlice(res.Tags),
		UpdatedAt: time.Now(),
	}, res.Links)
}

// buildNoteDetail constructs a NoteDetail from raw data without re-reading the file.
func (s *Service) buildNoteDetail(path string, data []byte) (*NoteDetail, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	bl, err := s.db.Backlinks(vault.TitleOf(path))
	if err != nil {
		return nil, err
	}
	return &NoteDetail{
		Path:        path,
		Title:       vault.TitleOf(path),
		Heading:     res.Heading,
		Content:     string(data),
		Checksum:    checksum.Sum(data),
		Tags:        nonNilSlice(res.Tags),
		Frontmatter: res.Frontmatter,
		Links:       nonNilSlice(res.Links),
		Backlinks:   nonNilSlice(bl),
		UpdatedAt:   time.Now(),
	}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
