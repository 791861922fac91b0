// Package pipeline implements the export normalization passes: materializing
// the canonical output tree, rewriting cross-links, and watching the input
// root for changes.
package pipeline

import (
	"log/slog"
	"sync"
	"time"

	"github.com/starford/laguz/internal/catalog"
	"github.com/starford/laguz/internal/mapping"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/storage"
)

// EventCallback is called after each completed pass, e.g. to publish the
// summary to SSE clients.
type EventCallback func(summary models.PassSummary)

// Pipeline owns the mapping store and the output tree. Passes are serialized
// through an internal mutex: at most one pass is in flight, later triggers
// wait and then run a fresh pass.
type Pipeline struct {
	inputRoot string // absolute path, for the change watcher
	input     storage.Provider
	output    storage.Provider
	store     *mapping.Store
	cat       catalog.Store
	logger    *slog.Logger
	debounce  time.Duration
	cb        EventCallback

	passMu sync.Mutex // serializes passes

	mu   sync.Mutex
	last *models.PassSummary
}

// New creates a Pipeline. cb may be nil.
func New(inputRoot string, input, output storage.Provider, store *mapping.Store, cat catalog.Store, debounce time.Duration, logger *slog.Logger, cb EventCallback) *Pipeline {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Pipeline{
		inputRoot: inputRoot,
		input:     input,
		output:    output,
		store:     store,
		cat:       cat,
		logger:    logger,
		debounce:  debounce,
		cb:        cb,
	}
}

// RunPass executes one full pass: materialize the canonical tree, rewrite
// links in the output, regenerate the combined digest, persist the mapping
// file. A pass always runs to completion; no error inside it is fatal.
func (p *Pipeline) RunPass() models.PassSummary {
	p.passMu.Lock()
	defer p.passMu.Unlock()

	summary := models.PassSummary{StartedAt: time.Now()}
	p.logger.Info("pass: started")

	p.materialize(&summary)
	p.rewriteLinks(&summary)
	p.combine()

	// The mapping file is diagnostic output; a write failure never aborts.
	if err := p.store.Persist(); err != nil {
		p.logger.Error("pass: persist mapping failed", slog.String("error", err.Error()))
	}

	summary.Duration = time.Since(summary.StartedAt)
	p.logger.Info("pass: completed",
		slog.Int("dirs", summary.DirsVisited),
		slog.Int("copied", summary.FilesCopied),
		slog.Int("skipped", summary.FilesSkipped),
		slog.Int("failed", summary.FilesFailed),
		slog.Int("links_rewritten", summary.LinksRewritten),
		slog.Int("links_unresolved", summary.LinksUnresolved),
		slog.Int("collisions", summary.Collisions),
		slog.Duration("duration", summary.Duration))

	p.mu.Lock()
	p.last = &summary
	p.mu.Unlock()

	if p.cb != nil {
		p.cb(summary)
	}
	return summary
}

// LastSummary returns the most recent pass summary, if any pass has run.
func (p *Pipeline) LastSummary() (models.PassSummary, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return models.PassSummary{}, false
	}
	return *p.last, true
}
