// Package parser extracts wikilinks, frontmatter, and tags from Markdown content.
package parser

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/raido/internal/models"
)

// statusMarkers are the opaque annotations recognised next to a wikilink,
// e.g. "[[Topic]] ✅". They are carried through verbatim, never interpreted.
const statusMarkers = "✅⏳❌🔄⭐❓"

var (
	// Non-greedy: the first ]] after [[ terminates the match, so nested
	// brackets are not supported and an unterminated [[ never matches.
	wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]([ \t]*[` + statusMarkers + `]+)?`)
	tagRe      = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
)

// Result holds the output of parsing one Markdown file.
type Result struct {
	Frontmatter map[string]any
	Body        string
	Links       []models.LinkRef
	Tags        []string
	Heading     string
}

// Parse extracts frontmatter, body, wikilinks, and tags from raw Markdown bytes.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	return &Result{
		Frontmatter: fm,
		Body:        body,
		Links:       ExtractLinks(body),
		Tags:        extractTags(body, fm),
		Heading:     deriveHeading(fm, body),
	}, nil
}

// ExtractLinks returns every wikilink target in body, in order of appearance.
// Duplicates are preserved so that downstream edge counts stay faithful to
// the text. For "[[Target|Display]]" the target is the part before the pipe.
// A status marker trailing the link ("[[X]] ✅") is kept as an opaque string.
func ExtractLinks(body string) []models.LinkRef {
	matches := wikilinkRe.FindAllStringSubmatch(body, -1)
	var out []models.LinkRef
	for _, m := range matches {
		target := m[1]
		if i := strings.Index(target, "|"); i >= 0 {
			target = target[:i]
		}
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		out = append(out, models.LinkRef{
			Target: target,
			Marker: strings.TrimSpace(m[2]),
		})
	}
	return out
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]any, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter, treat everything as body.
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML is tolerated: the file still scans as plain body.
		return nil, string(data), nil
	}

	return fm, body, nil
}

// extractTags collects #tags from body and from the frontmatter "tags" field.
// Tags are deduplicated; they are annotations, not graph input.
func extractTags(body string, fm map[string]any) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	if fm != nil {
		if raw, ok := fm["tags"].([]any); ok {
			for _, item := range raw {
				if s, ok := item.(string); ok {
					add(s)
				}
			}
		}
	}

	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}

	return out
}

// deriveHeading returns the frontmatter "title" if present, otherwise the
// first H1 heading, otherwise empty string. This is the display heading;
// graph identity always comes from the filename.
func deriveHeading(fm map[string]any, body string) string {
	if fm != nil {
		if s, ok := fm["title"].(string); ok && s != "" {
			return s
		}
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
