package api

import (
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/vaultservice"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// UpdateNoteRequest is the request body for updating a note.
type UpdateNoteRequest struct {
	Content string `json:"content"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = vaultservice.NoteDetail

// NoteListItem is a lightweight item in a list response (aliased from the domain layer).
type NoteListItem = vaultservice.NoteListItem

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes"`
	Total int            `json:"total"`
}

// GraphResponse wraps the link graph.
type GraphResponse struct {
	Nodes []index.GraphNode `json:"nodes"`
	Edges []models.Edge     `json:"edges"`
}

// ReportResponse is the findings report payload.
type ReportResponse = vaultservice.VaultReport
