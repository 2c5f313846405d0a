// Package vault builds an in-memory link graph from a set of Markdown files
// and derives dangling-link and orphan-note findings from it.
//
// A Vault is a value constructed once per scan: files in, findings out.
// Nothing in this package touches the file system; callers feed it
// (path, text) pairs, typically obtained from a storage.Provider.
package vault

import (
	"path"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/parser"
)

// File is one input document: a vault-relative path and its raw text.
type File struct {
	Path string
	Text string
}

// Vault holds every note from one scan, in input order, with a title lookup.
type Vault struct {
	Notes   []*models.Note
	byTitle map[string]*models.Note
}

// TitleOf derives a note title from its file path: the base name with a
// trailing ".md" stripped. Matching against wikilink targets is case-sensitive.
func TitleOf(p string) string {
	return strings.TrimSuffix(path.Base(p), ".md")
}

// Build scans files into a Vault. Each file's wikilinks are extracted in
// order of appearance with duplicates preserved. If two files resolve to the
// same title the whole scan fails with *apperr.DuplicateTitleError naming
// both paths; no partial Vault is returned.
func Build(files []File) (*Vault, error) {
	v := &Vault{byTitle: make(map[string]*models.Note, len(files))}

	for _, f := range files {
		title := TitleOf(f.Path)
		if prev, ok := v.byTitle[title]; ok {
			return nil, &apperr.DuplicateTitleError{Title: title, PathA: prev.Path, PathB: f.Path}
		}

		res, err := parser.Parse([]byte(f.Text))
		if err != nil {
			return nil, err
		}

		n := &models.Note{
			Title:   title,
			Path:    f.Path,
			Links:   res.Links,
			Tags:    res.Tags,
			Heading: res.Heading,
		}
		v.Notes = append(v.Notes, n)
		v.byTitle[title] = n
	}

	return v, nil
}

// Lookup returns the note carrying title, or nil.
func (v *Vault) Lookup(title string) *models.Note {
	return v.byTitle[title]
}
