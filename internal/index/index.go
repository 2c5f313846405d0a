package index

import "github.com/starford/raido/internal/models"

// NoteIndex defines the interface for link-graph index operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type NoteIndex interface {
	UpsertNote(n NoteRow, links []models.LinkRef) error
	DeleteNote(path string) error
	GetChecksum(path string) (string, error)
	GetNote(path string) (*NoteRow, error)
	ListNotes(limit, offset int, tag, sort string) ([]NoteRow, int, error)
	Graph() ([]GraphNode, []models.Edge, error)
	Backlinks(target string) ([]string, error)
	Dangling() ([]models.Edge, error)
	Orphans(roots []string) ([]string, error)
	DuplicateTitles() ([]DuplicateTitle, error)
	Stats() (notes, edges int, err error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies NoteIndex at compile time.
var _ NoteIndex = (*DB)(nil)
