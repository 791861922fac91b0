package pipeline

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/laguz/internal/parser"
)

// combinedName is the single-file digest written at the output root for
// downstream ingestion.
const combinedName = "combined.md"

// combine concatenates every markdown file in the output tree into one
// digest, each section delimited by the note's title. Runs after the link
// pass so the digest carries rewritten links. List order is lexical, so the
// digest is deterministic.
func (p *Pipeline) combine() {
	metas, err := p.output.List("")
	if err != nil {
		p.logger.Error("combine: walk output failed", slog.String("error", err.Error()))
		return
	}

	var sections []string
	for _, meta := range metas {
		if !strings.HasSuffix(meta.Path, ".md") || meta.Path == combinedName {
			continue
		}
		data, err := p.output.Read(meta.Path)
		if err != nil {
			p.logger.Error("combine: read failed",
				slog.String("path", meta.Path),
				slog.String("error", err.Error()))
			continue
		}
		title := parser.Title(data)
		if title == "" {
			title = strings.TrimSuffix(path.Base(meta.Path), ".md")
		}
		sections = append(sections, fmt.Sprintf("--- %s ---\n%s\n", title, strings.TrimSpace(string(data))))
	}
	if len(sections) == 0 {
		return
	}

	if err := p.output.Write(combinedName, []byte(strings.Join(sections, "\n"))); err != nil {
		p.logger.Error("combine: write failed", slog.String("error", err.Error()))
	}
}
