// Package parser extracts markdown link occurrences and titles from note content.
package parser

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var mdLinkRe = regexp.MustCompile(`\[[^\]]*\]\(([^)]+)\)`)

// Link is one markdown-style link occurrence. Start and End delimit the raw
// target's byte span within the scanned content, so the target can be
// replaced in place.
type Link struct {
	Target string
	Start  int
	End    int
}

// Links returns every [text](target) occurrence in content, in document
// order. Nothing is deduplicated: the rewriter needs each span.
func Links(content []byte) []Link {
	matches := mdLinkRe.FindAllSubmatchIndex(content, -1)
	out := make([]Link, 0, len(matches))
	for _, m := range matches {
		start, end := m[2], m[3]
		out = append(out, Link{
			Target: string(content[start:end]),
			Start:  start,
			End:    end,
		})
	}
	return out
}

// IsExternal reports whether a link target points outside the note tree:
// absolute URLs, mail links, and pure fragment references.
func IsExternal(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(target, "#")
}

// Title derives a display title from markdown content: the frontmatter
// "title" field if present, otherwise the first H1 heading, otherwise the
// first non-empty line stripped of heading markers. Returns "" when the
// content has no usable title.
func Title(content []byte) string {
	fm, body := splitFrontmatter(content)
	if fm != nil {
		if t, ok := fm["title"]; ok {
			if s, ok := t.(string); ok && s != "" {
				return s
			}
		}
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
		return strings.TrimLeft(trimmed, "# ")
	}
	return ""
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the markdown body. If no frontmatter is found, or the YAML does not
// parse, the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return fm, body
}
