// Package models defines the domain types for Laguz.
package models

import "time"

// FileMeta is a lightweight description of a file under a root, as returned
// by list operations.
type FileMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MappingPair is one recorded rename: an input-root path and the canonical
// output-root path it was rewritten to.
type MappingPair struct {
	Raw       string `json:"raw"`
	Canonical string `json:"canonical"`
}

// UnresolvedLink is a markdown link whose target could not be matched against
// the mapping during a rewrite pass. Expected to self-heal on a later pass.
type UnresolvedLink struct {
	Source string `json:"source"` // canonical path of the file holding the link
	Target string `json:"target"` // decoded raw link target
}

// PassSummary describes one completed materialize-and-rewrite pass.
type PassSummary struct {
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration"`
	DirsVisited     int           `json:"dirs_visited"`
	FilesCopied     int           `json:"files_copied"`
	FilesSkipped    int           `json:"files_skipped"`
	FilesFailed     int           `json:"files_failed"`
	LinksRewritten  int           `json:"links_rewritten"`
	LinksUnresolved int           `json:"links_unresolved"`
	Collisions      int           `json:"collisions"`
}
