package mapping

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "mapping.txt"))
}

func TestReserve_NewAndRepeated(t *testing.T) {
	s := tempStore(t)

	got, collided := s.Reserve("raw/10 24 2024 - Note abc.md", "clean/Note.md")
	if got != "clean/Note.md" || collided {
		t.Fatalf("Reserve = %q, %v", got, collided)
	}

	// Same raw path keeps its assignment, no new suffix.
	again, collided := s.Reserve("raw/10 24 2024 - Note abc.md", "clean/Note.md")
	if again != got || collided {
		t.Errorf("repeat Reserve = %q, %v, want %q, false", again, collided, got)
	}
}

func TestReserve_CollisionSuffixes(t *testing.T) {
	s := tempStore(t)

	first, _ := s.Reserve("a/Foo one.md", "out/Foo.md")
	second, collided := s.Reserve("a/Foo  one.md", "out/Foo.md")
	third, _ := s.Reserve("a/Foo   one.md", "out/Foo.md")

	if first != "out/Foo.md" {
		t.Errorf("first = %q", first)
	}
	if second != "out/Foo_1.md" || !collided {
		t.Errorf("second = %q, collided = %v", second, collided)
	}
	if third != "out/Foo_2.md" {
		t.Errorf("third = %q", third)
	}
}

func TestReserve_CollisionOnlyWithinSameDirectory(t *testing.T) {
	s := tempStore(t)

	a, _ := s.Reserve("x/Foo.md", "outA/Foo.md")
	b, collided := s.Reserve("y/Foo again.md", "outB/Foo.md")
	if a != "outA/Foo.md" || b != "outB/Foo.md" || collided {
		t.Errorf("cross-directory names should not collide: %q %q %v", a, b, collided)
	}
}

func TestLookupBase_FirstObservationWins(t *testing.T) {
	s := tempStore(t)
	s.Reserve("dir/Note x.md", "out/Note.md")
	s.Reserve("other/Note x.md", "out2/Note.md")

	got, ok := s.LookupBase("Note x.md")
	if !ok || got != "out/Note.md" {
		t.Errorf("LookupBase = %q, %v", got, ok)
	}
}

func TestIsCanonical(t *testing.T) {
	s := tempStore(t)
	s.Reserve("dir/Note x.md", "out/Note.md")

	if !s.IsCanonical("out/Note.md") {
		t.Error("assigned canonical path not recognised")
	}
	if s.IsCanonical("out/Other.md") {
		t.Error("unknown path reported canonical")
	}
}

func TestPersistAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "mapping.txt")

	s := NewStore(file)
	s.Reserve("a/First one.md", "out/First.md")
	s.Reserve("a/Second two.md", "out/Second.md")
	if err := s.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read mapping file: %v", err)
	}
	if !strings.Contains(string(data), "a/First one.md -> out/First.md") {
		t.Errorf("mapping file missing entry:\n%s", data)
	}

	restored := NewStore(file)
	if err := restored.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if restored.Len() != 2 {
		t.Fatalf("Len = %d, want 2", restored.Len())
	}

	// A restored store keeps prior assignments: re-reserving a known raw
	// path returns the historical canonical path, and a fresh raw path that
	// wants a taken name gets disambiguated.
	got, _ := restored.Reserve("a/First one.md", "out/First.md")
	if got != "out/First.md" {
		t.Errorf("restored Reserve = %q", got)
	}
	fresh, collided := restored.Reserve("a/First uno.md", "out/First.md")
	if fresh != "out/First_1.md" || !collided {
		t.Errorf("fresh Reserve = %q, %v", fresh, collided)
	}
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "absent.txt"))
	if err := s.Load(); err != nil {
		t.Fatalf("Load of missing file: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestSnapshot_Sorted(t *testing.T) {
	s := tempStore(t)
	s.Reserve("b/two.md", "out/two.md")
	s.Reserve("a/one.md", "out/one.md")

	pairs := s.Snapshot()
	if len(pairs) != 2 || pairs[0].Raw != "a/one.md" || pairs[1].Raw != "b/two.md" {
		t.Errorf("Snapshot = %v", pairs)
	}
}
