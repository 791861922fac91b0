package pipeline

import (
	"log/slog"
	"path"
	"time"

	"github.com/starford/laguz/internal/canonical"
	"github.com/starford/laguz/internal/catalog"
	"github.com/starford/laguz/internal/models"
)

// materialize walks the input root and (re-)produces the canonical output
// tree: mirrored directories, copied files, mapping entries for every path
// visited. Unchanged files are left untouched so repeated passes never
// perturb already-correct output.
func (p *Pipeline) materialize(summary *models.PassSummary) {
	dirs, err := p.input.Dirs()
	if err != nil {
		p.logger.Error("materialize: walk dirs failed", slog.String("error", err.Error()))
		return
	}
	for _, dir := range dirs {
		canonicalDir := p.reserveDir(dir, summary)
		if err := p.output.MkdirAll(canonicalDir); err != nil {
			// Left absent this pass; the next trigger retries.
			p.logger.Error("materialize: create output dir failed",
				slog.String("dir", canonicalDir),
				slog.String("error", err.Error()))
			continue
		}
		summary.DirsVisited++
	}

	// One catalog read per pass instead of one query per file.
	prior, err := p.cat.AllChecksums()
	if err != nil {
		p.logger.Warn("materialize: load checksums failed", slog.String("error", err.Error()))
		prior = map[string]string{}
	}

	metas, err := p.input.List("")
	if err != nil {
		p.logger.Error("materialize: walk files failed", slog.String("error", err.Error()))
		return
	}
	for _, meta := range metas {
		p.materializeFile(meta, prior, summary)
	}
}

// reserveDir returns the canonical output path for a raw input directory,
// reserving it (and any unreserved ancestors) in the mapping store. Walk
// order guarantees parents are normally reserved first.
func (p *Pipeline) reserveDir(dir string, summary *models.PassSummary) string {
	want := canonical.FolderName(path.Base(dir))
	if parent := path.Dir(dir); parent != "." {
		canonicalParent, ok := p.store.Lookup(parent)
		if !ok {
			canonicalParent = p.reserveDir(parent, summary)
		}
		want = canonicalParent + "/" + want
	}

	got, collided := p.store.Reserve(dir, want)
	if collided {
		summary.Collisions++
		p.logger.Info("materialize: directory name collision resolved",
			slog.String("raw", dir),
			slog.String("canonical", got))
	}
	return got
}

// materializeFile copies one input file to its canonical location. The copy
// is skipped when the source checksum is unchanged and the output file still
// exists; failures are logged and retried on the next pass.
func (p *Pipeline) materializeFile(meta models.FileMeta, prior map[string]string, summary *models.PassSummary) {
	base := path.Base(meta.Path)

	var want string
	if dir := path.Dir(meta.Path); dir == "." {
		want = canonical.FileName(base, "")
	} else {
		canonicalDir, ok := p.store.Lookup(dir)
		if !ok {
			canonicalDir = p.reserveDir(dir, summary)
		}
		want = canonicalDir + "/" + canonical.FileName(base, path.Base(canonicalDir))
	}

	got, collided := p.store.Reserve(meta.Path, want)
	if collided {
		summary.Collisions++
		p.logger.Info("materialize: file name collision resolved",
			slog.String("raw", meta.Path),
			slog.String("canonical", got))
	}

	if prior[meta.Path] == meta.Checksum && meta.Checksum != "" && p.output.Exists(got) {
		summary.FilesSkipped++
		return
	}

	data, err := p.input.Read(meta.Path)
	if err != nil {
		p.logger.Error("materialize: read failed",
			slog.String("path", meta.Path),
			slog.String("error", err.Error()))
		summary.FilesFailed++
		return
	}
	if err := p.output.Write(got, data); err != nil {
		// Catalog stays stale so the next pass retries the copy.
		p.logger.Error("materialize: write failed",
			slog.String("path", got),
			slog.String("error", err.Error()))
		summary.FilesFailed++
		return
	}

	if err := p.cat.UpsertFile(catalog.FileRow{
		RawPath:       meta.Path,
		CanonicalPath: got,
		Checksum:      meta.Checksum,
		UpdatedAt:     time.Now(),
	}); err != nil {
		p.logger.Warn("materialize: catalog update failed",
			slog.String("path", meta.Path),
			slog.String("error", err.Error()))
	}

	summary.FilesCopied++
	p.logger.Info("materialize: copied",
		slog.String("raw", meta.Path),
		slog.String("canonical", got))
}
