package shift

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quillstudios/tome/internal/book"
	"github.com/quillstudios/tome/internal/chapter"
)

var nm = book.Naming{Prefix: "ch", Ext: "md", Pad: 2}

func makeSet(t *testing.T, dir string, names ...string) *chapter.Set {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("# "+name+"\n"), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	set, err := chapter.Scan(dir, nm)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	return set
}

func TestPlanDescendingOrder(t *testing.T) {
	dir := t.TempDir()
	set := makeSet(t, dir, "ch01-a.md", "ch02-b.md", "ch03-c.md")

	renames, warnings := Plan(set, nm, 2)
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(renames) != 2 {
		t.Fatalf("expected 2 renames, got %d", len(renames))
	}
	// Highest first: 3→4 must happen before 2→3, or 2→3 would land on
	// the still-occupied slot 3.
	if renames[0].From != "ch03-c.md" || renames[0].To != "ch04-c.md" {
		t.Errorf("first rename = %s → %s, want ch03-c.md → ch04-c.md", renames[0].From, renames[0].To)
	}
	if renames[1].From != "ch02-b.md" || renames[1].To != "ch03-b.md" {
		t.Errorf("second rename = %s → %s, want ch02-b.md → ch03-b.md", renames[1].From, renames[1].To)
	}
}

func TestPlanPureAppend(t *testing.T) {
	dir := t.TempDir()
	set := makeSet(t, dir, "ch01-a.md", "ch02-b.md")

	renames, warnings := Plan(set, nm, 3)
	if len(renames) != 0 || len(warnings) != 0 {
		t.Errorf("append should plan nothing, got %d renames, %d warnings", len(renames), len(warnings))
	}
}

func TestPlanSkipsPreexistingGap(t *testing.T) {
	dir := t.TempDir()
	// Position 2 is missing — a gap this tool did not create.
	set := makeSet(t, dir, "ch01-a.md", "ch03-c.md")

	renames, warnings := Plan(set, nm, 1)
	if len(renames) != 2 {
		t.Fatalf("expected 2 renames, got %d", len(renames))
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "position 2") {
		t.Errorf("expected a warning naming position 2, got %v", warnings)
	}
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	set := makeSet(t, dir, "ch01-a.md", "ch02-b.md", "ch03-c.md")

	renames, _ := Plan(set, nm, 2)
	if err := Apply(dir, renames); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	for _, want := range []string{"ch01-a.md", "ch03-b.md", "ch04-c.md"} {
		if _, err := os.Stat(filepath.Join(dir, want)); err != nil {
			t.Errorf("expected %s to exist: %v", want, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "ch02-b.md")); !os.IsNotExist(err) {
		t.Error("ch02-b.md should have been shifted away, slot 2 vacant")
	}

	// Slug suffixes must survive the rename untouched.
	data, _ := os.ReadFile(filepath.Join(dir, "ch04-c.md"))
	if !strings.Contains(string(data), "ch03-c.md") {
		t.Errorf("file content should be untouched by the shift, got %q", data)
	}
}
