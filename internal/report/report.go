// Package report renders scan findings for CLI and API consumers.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/starford/raido/internal/vault"
)

// DanglingLink is one wikilink whose target note does not exist.
type DanglingLink struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Report is the structured result of one vault scan. TotalEdges counts
// resolved edges only; dangling links are listed separately so the two
// figures never double-count a reference.
type Report struct {
	TotalNotes    int            `json:"total_notes"`
	TotalEdges    int            `json:"total_edges"`
	DanglingLinks []DanglingLink `json:"dangling_links"`
	OrphanNotes   []string       `json:"orphan_notes"`
}

// Build assembles a Report from a scanned vault and its resolution.
// Titles in roots are excluded from orphan detection.
func Build(v *vault.Vault, r *vault.Resolution, roots ...string) *Report {
	dangling := []DanglingLink{}
	for _, e := range r.Dangling() {
		dangling = append(dangling, DanglingLink{From: e.From, To: e.To})
	}
	orphans := r.Orphans(roots...)
	if orphans == nil {
		orphans = []string{}
	}
	return &Report{
		TotalNotes:    len(v.Notes),
		TotalEdges:    r.Resolved(),
		DanglingLinks: dangling,
		OrphanNotes:   orphans,
	}
}

// WriteJSON writes the report as indented JSON. Field order is fixed by the
// struct, so identical scans produce byte-identical output.
func (rep *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// WriteText writes a human-readable summary.
func (rep *Report) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "notes: %d\nedges: %d\n", rep.TotalNotes, rep.TotalEdges); err != nil {
		return err
	}
	if len(rep.DanglingLinks) == 0 {
		fmt.Fprintln(w, "dangling links: none")
	} else {
		fmt.Fprintf(w, "dangling links: %d\n", len(rep.DanglingLinks))
		for _, d := range rep.DanglingLinks {
			fmt.Fprintf(w, "  %s -> %s\n", d.From, d.To)
		}
	}
	if len(rep.OrphanNotes) == 0 {
		fmt.Fprintln(w, "orphan notes: none")
	} else {
		fmt.Fprintf(w, "orphan notes: %d\n", len(rep.OrphanNotes))
		for _, o := range rep.OrphanNotes {
			fmt.Fprintf(w, "  %s\n", o)
		}
	}
	return nil
}
