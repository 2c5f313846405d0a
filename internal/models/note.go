// Package models defines the domain types for Raido.
package models

import "time"

// Note represents one Markdown file in a scanned vault. Title is the base
// filename with the .md extension stripped and is unique within a vault.
type Note struct {
	Title     string    `json:"title"`
	Path      string    `json:"path"`
	Links     []LinkRef `json:"links,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Heading   string    `json:"heading,omitempty"` // display title from frontmatter or first H1
	Checksum  string    `json:"checksum,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LinkRef is a raw outgoing wikilink as it appears in note text, in order of
// appearance, duplicates preserved. Marker is an opaque status annotation
// (e.g. "✅" or "⏳") adjacent to the link, if any.
type LinkRef struct {
	Target string `json:"target"`
	Marker string `json:"marker,omitempty"`
}

// Edge is a resolved directed link between two note titles. Dangling means
// no note in the vault carries the target title; that is an expected
// finding, not an error.
type Edge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Marker   string `json:"marker,omitempty"`
	Dangling bool   `json:"dangling"`
}

// NoteMetadata is a lightweight representation returned by storage listings.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
