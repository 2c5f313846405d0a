package vault

// Resolution is the resolved edge set of one Vault. Edge order follows note
// and link discovery order, so repeated scans of the same input produce
// identical output.
type Resolution struct {
	vault *Vault
	Edges []Edge
}

// Edge is one resolved wikilink occurrence. Duplicate links in the source
// text produce duplicate edges.
type Edge struct {
	From     string
	To       string
	Marker   string
	Dangling bool
}

// Resolve turns every raw outgoing link of every note into an Edge, marking
// it dangling when no note in the vault carries the target title.
func Resolve(v *Vault) *Resolution {
	r := &Resolution{vault: v}
	for _, n := range v.Notes {
		for _, l := range n.Links {
			r.Edges = append(r.Edges, Edge{
				From:     n.Title,
				To:       l.Target,
				Marker:   l.Marker,
				Dangling: v.Lookup(l.Target) == nil,
			})
		}
	}
	return r
}

// Dangling returns the edges whose target has no note, in discovery order.
func (r *Resolution) Dangling() []Edge {
	var out []Edge
	for _, e := range r.Edges {
		if e.Dangling {
			out = append(out, e)
		}
	}
	return out
}

// Resolved returns the number of edges whose target exists in the vault.
func (r *Resolution) Resolved() int {
	n := 0
	for _, e := range r.Edges {
		if !e.Dangling {
			n++
		}
	}
	return n
}

// Orphans returns the titles of notes that no edge points to, in scan order.
// Titles listed in roots are excluded: an index note is expected to have no
// inbound links and should not be reported.
func (r *Resolution) Orphans(roots ...string) []string {
	inbound := make(map[string]struct{}, len(r.Edges))
	for _, e := range r.Edges {
		if !e.Dangling {
			inbound[e.To] = struct{}{}
		}
	}
	excluded := make(map[string]struct{}, len(roots))
	for _, t := range roots {
		excluded[t] = struct{}{}
	}

	var out []string
	for _, n := range r.vault.Notes {
		if _, ok := inbound[n.Title]; ok {
			continue
		}
		if _, ok := excluded[n.Title]; ok {
			continue
		}
		out = append(out, n.Title)
	}
	return out
}
