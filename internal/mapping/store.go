// Package mapping maintains the table of input-root paths to canonical
// output-root paths. The materializer is the only writer; the link rewriter
// and the status API read from it.
package mapping

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/starford/laguz/internal/models"
)

// separator joins the two columns of the persisted mapping file. The file is
// diagnostic output, not a strict machine format.
const separator = " -> "

// Store holds the raw-path to canonical-path table. All paths are
// slash-separated and relative to their respective roots.
type Store struct {
	file string

	mu          sync.RWMutex
	byRaw       map[string]string
	byBase      map[string]string   // raw base name -> canonical path, first observation wins
	byCanonical map[string]string   // canonical path -> raw path
	canonical   map[string]struct{} // canonical paths already taken
}

// NewStore creates an empty store that persists to file.
func NewStore(file string) *Store {
	return &Store{
		file:        file,
		byRaw:       make(map[string]string),
		byBase:      make(map[string]string),
		byCanonical: make(map[string]string),
		canonical:   make(map[string]struct{}),
	}
}

// Reserve returns the canonical path for raw. A raw path seen before keeps
// its previously assigned canonical path. A new raw path is assigned want,
// disambiguated with a numeric suffix before the extension if want is
// already taken within its output directory. The returned bool reports
// whether a collision suffix was applied.
func (s *Store) Reserve(raw, want string) (string, bool) {
	raw = filepath.ToSlash(raw)
	want = filepath.ToSlash(want)

	s.mu.Lock()
	defer s.mu.Unlock()

	if got, ok := s.byRaw[raw]; ok {
		return got, false
	}

	assigned := want
	collided := false
	if _, taken := s.canonical[assigned]; taken {
		dir, base := path.Split(want)
		ext := path.Ext(base)
		stem := strings.TrimSuffix(base, ext)
		for i := 1; ; i++ {
			assigned = dir + stem + "_" + strconv.Itoa(i) + ext
			if _, taken := s.canonical[assigned]; !taken {
				break
			}
		}
		collided = true
	}

	s.record(raw, assigned)
	return assigned, collided
}

// record stores the pair in all lookup maps. Caller holds the write lock.
func (s *Store) record(raw, canonical string) {
	s.byRaw[raw] = canonical
	s.byCanonical[canonical] = raw
	s.canonical[canonical] = struct{}{}
	base := path.Base(raw)
	if _, ok := s.byBase[base]; !ok {
		s.byBase[base] = canonical
	}
}

// Lookup returns the canonical path recorded for a raw path.
func (s *Store) Lookup(raw string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	got, ok := s.byRaw[filepath.ToSlash(raw)]
	return got, ok
}

// LookupBase returns the canonical path for a raw base name. Used as the
// fallback when a link target cannot be resolved as a full raw path.
func (s *Store) LookupBase(base string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	got, ok := s.byBase[base]
	return got, ok
}

// RawFor returns the raw path that a canonical path was assigned for. Used
// by the link rewriter to resolve targets relative to a file's raw location.
func (s *Store) RawFor(canonical string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	got, ok := s.byCanonical[filepath.ToSlash(canonical)]
	return got, ok
}

// IsCanonical reports whether p is a canonical path this store has assigned.
// Links that already point at canonical paths are left alone by the rewriter.
func (s *Store) IsCanonical(p string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.canonical[filepath.ToSlash(p)]
	return ok
}

// Len returns the number of recorded raw paths.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byRaw)
}

// Snapshot returns all recorded pairs sorted by raw path.
func (s *Store) Snapshot() []models.MappingPair {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.MappingPair, 0, len(s.byRaw))
	for raw, canonical := range s.byRaw {
		out = append(out, models.MappingPair{Raw: raw, Canonical: canonical})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Raw < out[j].Raw })
	return out
}

// Persist writes the full table to the mapping file, one "raw -> canonical"
// line per entry, sorted for stable diffs.
func (s *Store) Persist() error {
	pairs := s.Snapshot()

	var b strings.Builder
	for _, p := range pairs {
		b.WriteString(p.Raw)
		b.WriteString(separator)
		b.WriteString(p.Canonical)
		b.WriteByte('\n')
	}

	if err := os.MkdirAll(filepath.Dir(s.file), 0o755); err != nil {
		return fmt.Errorf("mapping: mkdir: %w", err)
	}
	if err := os.WriteFile(s.file, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("mapping: write %s: %w", s.file, err)
	}
	return nil
}

// Load restores the table from a prior mapping file so re-runs stay
// consistent with history. A missing file is not an error.
func (s *Store) Load() error {
	f, err := os.Open(s.file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("mapping: open %s: %w", s.file, err)
	}
	defer f.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		raw, canonical, ok := strings.Cut(line, separator)
		if !ok {
			continue
		}
		s.record(raw, canonical)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("mapping: read %s: %w", s.file, err)
	}
	return nil
}
