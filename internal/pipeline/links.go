package pipeline

import (
	"bytes"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/parser"
)

type linkStatus int

const (
	linkResolved linkStatus = iota
	linkExternal
	linkCanonical
	linkUnresolved
)

// rewriteLinks scans every markdown file in the output tree and rewrites
// link targets to their canonical paths. Runs only after materialize has
// completed for the same pass, so the mapping covers everything copied.
func (p *Pipeline) rewriteLinks(summary *models.PassSummary) {
	metas, err := p.output.List("")
	if err != nil {
		p.logger.Error("links: walk output failed", slog.String("error", err.Error()))
		return
	}
	for _, meta := range metas {
		if !strings.HasSuffix(meta.Path, ".md") || meta.Path == combinedName {
			continue
		}
		p.rewriteFile(meta.Path, summary)
	}
}

// rewriteFile resolves and rewrites every link in one output file. Resolved
// targets become paths relative to the file's canonical location; unresolved
// targets are left untouched and recorded for later healing.
func (p *Pipeline) rewriteFile(canonPath string, summary *models.PassSummary) {
	data, err := p.output.Read(canonPath)
	if err != nil {
		p.logger.Error("links: read failed",
			slog.String("path", canonPath),
			slog.String("error", err.Error()))
		return
	}

	// Targets resolve relative to the file's raw directory, not its
	// canonical one.
	rawDir := "."
	if raw, ok := p.store.RawFor(canonPath); ok {
		rawDir = path.Dir(raw)
	}
	canonDir := path.Dir(canonPath)

	var buf bytes.Buffer
	var unresolved []string
	prev := 0
	changed := false

	for _, l := range parser.Links(data) {
		buf.Write(data[prev:l.Start])
		prev = l.End

		rewritten, decoded, status := p.resolveTarget(l.Target, rawDir, canonDir)
		switch status {
		case linkResolved:
			if rewritten != l.Target {
				changed = true
				summary.LinksRewritten++
			}
			buf.WriteString(rewritten)
		case linkUnresolved:
			summary.LinksUnresolved++
			unresolved = append(unresolved, decoded)
			p.logger.Warn("links: unresolved target",
				slog.String("source", canonPath),
				slog.String("target", decoded))
			buf.WriteString(l.Target)
		default: // external or already canonical
			buf.WriteString(l.Target)
		}
	}
	buf.Write(data[prev:])

	if changed {
		if err := p.output.Write(canonPath, buf.Bytes()); err != nil {
			p.logger.Error("links: write failed",
				slog.String("path", canonPath),
				slog.String("error", err.Error()))
			return
		}
		p.logger.Info("links: rewrote", slog.String("path", canonPath))
	}

	if err := p.cat.ReplaceUnresolved(canonPath, unresolved); err != nil {
		p.logger.Warn("links: record unresolved failed",
			slog.String("path", canonPath),
			slog.String("error", err.Error()))
	}
}

// resolveTarget maps one raw link target to its rewritten form. Resolution
// order: exact raw path relative to the scanning file's raw directory, then
// raw base-name match, then an already-canonical check (which makes repeated
// rewrite passes no-ops).
func (p *Pipeline) resolveTarget(target, rawDir, canonDir string) (rewritten, decoded string, status linkStatus) {
	if parser.IsExternal(target) {
		return target, target, linkExternal
	}

	decoded = target
	if d, err := url.PathUnescape(target); err == nil {
		decoded = d
	}

	var frag string
	if i := strings.Index(decoded, "#"); i >= 0 {
		frag = decoded[i:]
		decoded = decoded[:i]
	}
	if decoded == "" || path.IsAbs(decoded) {
		// Absolute targets are never rewritten.
		return target, decoded, linkExternal
	}

	if canon, ok := p.store.Lookup(path.Clean(path.Join(rawDir, decoded))); ok {
		return relTo(canonDir, canon) + frag, decoded, linkResolved
	}
	if canon, ok := p.store.LookupBase(path.Base(decoded)); ok {
		return relTo(canonDir, canon) + frag, decoded, linkResolved
	}

	// A target that already names a canonical file was rewritten on an
	// earlier pass; leave it alone without warning.
	cand := path.Clean(path.Join(canonDir, decoded))
	if p.store.IsCanonical(cand) || p.output.Exists(cand) {
		return target, decoded, linkCanonical
	}

	return target, decoded, linkUnresolved
}

// relTo expresses a canonical target path relative to the directory of the
// file being rewritten.
func relTo(fromDir, to string) string {
	rel, err := filepath.Rel(filepath.FromSlash(fromDir), filepath.FromSlash(to))
	if err != nil {
		return to
	}
	return filepath.ToSlash(rel)
}
