package index

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/raido/internal/models"
)

// NoteRow represents a row in the notes table.
type NoteRow struct {
	Path      string
	Title     string
	Heading   string
	Checksum  string
	Tags      []string
	UpdatedAt time.Time
}

// GraphNode is one note in the graph response.
type GraphNode struct {
	Title   string `json:"title"`
	Path    string `json:"path"`
	Heading string `json:"heading,omitempty"`
}

// DuplicateTitle reports a title carried by more than one indexed file.
type DuplicateTitle struct {
	Title string   `json:"title"`
	Paths []string `json:"paths"`
}

// UpsertNote inserts or replaces a note and its outgoing links in one
// transaction. Links replace the previous set wholesale; their text order is
// kept in the ord column.
func (db *DB) UpsertNote(n NoteRow, links []models.LinkRef) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(n.Tags)

	_, err = tx.Exec(`
		INSERT INTO notes (path, title, heading, checksum, tags, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			heading    = excluded.heading,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			updated_at = excluded.updated_at
	`, n.Path, n.Title, n.Heading, n.Checksum, string(tagsJSON), n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}

	_, _ = tx.Exec(`DELETE FROM links WHERE source_path = ?`, n.Path)
	if len(links) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO links (source_path, target, marker, ord) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for i, l := range links {
			if _, err := stmt.Exec(n.Path, l.Target, l.Marker, i); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteNote removes a note and its outgoing links.
func (db *DB) DeleteNote(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM links WHERE source_path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM notes WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a note, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM notes WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed note.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// GetNote returns a single note row by path, or nil if absent.
func (db *DB) GetNote(path string) (*NoteRow, error) {
	row := db.conn.QueryRow(`SELECT path, title, heading, checksum, tags, updated_at FROM notes WHERE path = ?`, path)
	n, err := scanNoteRow(row.Scan)
	if err != nil {
		return nil, nil //nolint:nilnil // absence is not an error here
	}
	return n, nil
}

// ListNotes returns paginated note rows with optional tag filter and sort.
// sort must be one of "path", "title", "updated_at" (default "path").
func (db *DB) ListNotes(limit, offset int, tag, sort string) ([]NoteRow, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	orderBy := "path"
	switch sort {
	case "title", "updated_at":
		orderBy = sort
	}

	where := ""
	args := []any{}
	if tag != "" {
		// Tags are stored as a JSON array of strings.
		where = `WHERE tags LIKE ?`
		args = append(args, `%"`+tag+`"%`)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM notes `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count notes: %w", err)
	}

	query := fmt.Sprintf(`SELECT path, title, heading, checksum, tags, updated_at FROM notes %s ORDER BY %s LIMIT ? OFFSET ?`, where, orderBy)
	rows, err := db.conn.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list notes: %w", err)
	}
	defer rows.Close()

	var out []NoteRow
	for rows.Next() {
		n, err := scanNoteRow(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *n)
	}
	return out, total, rows.Err()
}

// Graph returns every note and every link occurrence, marking edges whose
// target title has no note as dangling. Order is deterministic: nodes by
// path, edges by source path and text position.
func (db *DB) Graph() ([]GraphNode, []models.Edge, error) {
	nodeRows, err := db.conn.Query(`SELECT title, path, heading FROM notes ORDER BY path`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph nodes: %w", err)
	}
	defer nodeRows.Close()

	var nodes []GraphNode
	for nodeRows.Next() {
		var n GraphNode
		if err := nodeRows.Scan(&n.Title, &n.Path, &n.Heading); err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, n)
	}
	if err := nodeRows.Err(); err != nil {
		return nil, nil, err
	}

	edgeRows, err := db.conn.Query(`
		SELECT s.title, l.target, l.marker,
		       NOT EXISTS (SELECT 1 FROM notes t WHERE t.title = l.target)
		FROM links l
		JOIN notes s ON s.path = l.source_path
		ORDER BY l.source_path, l.ord
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph edges: %w", err)
	}
	defer edgeRows.Close()

	var edges []models.Edge
	for edgeRows.Next() {
		var e models.Edge
		if err := edgeRows.Scan(&e.From, &e.To, &e.Marker, &e.Dangling); err != nil {
			return nil, nil, err
		}
		edges = append(edges, e)
	}
	return nodes, edges, edgeRows.Err()
}

// Backlinks returns the paths of all notes linking to the given title.
func (db *DB) Backlinks(target string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT source_path FROM links WHERE target = ? ORDER BY source_path`, target)
	if err != nil {
		return nil, fmt.Errorf("index: backlinks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Dangling returns every link occurrence whose target title has no note,
// ordered by source path and text position.
func (db *DB) Dangling() ([]models.Edge, error) {
	rows, err := db.conn.Query(`
		SELECT s.title, l.target, l.marker
		FROM links l
		JOIN notes s ON s.path = l.source_path
		WHERE NOT EXISTS (SELECT 1 FROM notes t WHERE t.title = l.target)
		ORDER BY l.source_path, l.ord
	`)
	if err != nil {
		return nil, fmt.Errorf("index: dangling: %w", err)
	}
	defer rows.Close()

	var out []models.Edge
	for rows.Next() {
		var e models.Edge
		if err := rows.Scan(&e.From, &e.To, &e.Marker); err != nil {
			return nil, err
		}
		e.Dangling = true
		out = append(out, e)
	}
	return out, rows.Err()
}

// Orphans returns the titles of notes with no inbound link, excluding the
// given root titles, ordered by path.
func (db *DB) Orphans(roots []string) ([]string, error) {
	query := `
		SELECT n.title FROM notes n
		WHERE NOT EXISTS (SELECT 1 FROM links l WHERE l.target = n.title)
	`
	args := make([]any, 0, len(roots))
	for _, r := range roots {
		query += ` AND n.title != ?`
		args = append(args, r)
	}
	query += ` ORDER BY n.path`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: orphans: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DuplicateTitles returns titles carried by more than one file. The watcher
// keeps indexing through duplicates (rows are path-keyed), so they surface
// here as findings rather than failing the server.
func (db *DB) DuplicateTitles() ([]DuplicateTitle, error) {
	rows, err := db.conn.Query(`
		SELECT title, path FROM notes
		WHERE title IN (SELECT title FROM notes GROUP BY title HAVING COUNT(*) > 1)
		ORDER BY title, path
	`)
	if err != nil {
		return nil, fmt.Errorf("index: duplicate titles: %w", err)
	}
	defer rows.Close()

	var out []DuplicateTitle
	for rows.Next() {
		var title, path string
		if err := rows.Scan(&title, &path); err != nil {
			return nil, err
		}
		if len(out) > 0 && out[len(out)-1].Title == title {
			out[len(out)-1].Paths = append(out[len(out)-1].Paths, path)
		} else {
			out = append(out, DuplicateTitle{Title: title, Paths: []string{path}})
		}
	}
	return out, rows.Err()
}

// Stats returns the note count and the resolved (non-dangling) edge count.
func (db *DB) Stats() (notes, edges int, err error) {
	if err = db.conn.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&notes); err != nil {
		return 0, 0, fmt.Errorf("index: count notes: %w", err)
	}
	err = db.conn.QueryRow(`
		SELECT COUNT(*) FROM links l
		WHERE EXISTS (SELECT 1 FROM notes t WHERE t.title = l.target)
	`).Scan(&edges)
	if err != nil {
		return 0, 0, fmt.Errorf("index: count edges: %w", err)
	}
	return notes, edges, nil
}

func scanNoteRow(scan func(...any) error) (*NoteRow, error) {
	var n NoteRow
	var tagsJSON string
	if err := scan(&n.Path, &n.Title, &n.Heading, &n.Checksum, &tagsJSON, &n.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil {
		n.Tags = nil
	}
	return &n, nil
}
