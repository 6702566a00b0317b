package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quillstudios/tome/internal/book"
	"github.com/quillstudios/tome/internal/chapter"
)

var nm = book.Naming{Prefix: "ch", Ext: "md", Pad: 2}

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "SUMMARY.md")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func lines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(string(data), "\n")
}

func TestEntry(t *testing.T) {
	got := Entry("Middle", "ch02-mid.md")
	if got != "- [Middle](./ch02-mid.md)" {
		t.Errorf("Entry = %q", got)
	}
}

func TestInsertAfterPredecessor(t *testing.T) {
	path := writeManifest(t, "# Summary\n\n- [A](./ch01-a.md)\n- [B](./ch03-b.md)\n")

	warn, err := Insert(path, nm, 2, Entry("Mid", "ch02-mid.md"))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if warn != "" {
		t.Fatalf("unexpected warning: %s", warn)
	}

	ls := lines(t, path)
	// Entry goes immediately after the chapter at position 1.
	if ls[2] != "- [A](./ch01-a.md)" || ls[3] != "- [Mid](./ch02-mid.md)" || ls[4] != "- [B](./ch03-b.md)" {
		t.Errorf("unexpected manifest lines: %q", ls)
	}
}

func TestInsertAtPositionOne(t *testing.T) {
	// After the shift, the old first chapter is at position 2; the new
	// entry goes immediately before its line.
	path := writeManifest(t, "# Summary\n\n- [Old First](./ch02-old.md)\n")

	warn, err := Insert(path, nm, 1, Entry("Preface", "ch01-preface.md"))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if warn != "" {
		t.Fatalf("unexpected warning: %s", warn)
	}

	ls := lines(t, path)
	if ls[2] != "- [Preface](./ch01-preface.md)" || ls[3] != "- [Old First](./ch02-old.md)" {
		t.Errorf("unexpected manifest lines: %q", ls)
	}
}

func TestInsertAppend(t *testing.T) {
	path := writeManifest(t, "# Summary\n\n- [A](./ch01-a.md)\n- [B](./ch02-b.md)\n")

	warn, err := Insert(path, nm, 3, Entry("C", "ch03-c.md"))
	if err != nil || warn != "" {
		t.Fatalf("Insert failed: err=%v warn=%q", err, warn)
	}

	ls := lines(t, path)
	if ls[3] != "- [B](./ch02-b.md)" || ls[4] != "- [C](./ch03-c.md)" {
		t.Errorf("appended entry should trail the last chapter, got %q", ls)
	}
}

func TestInsertAnchorNotFound(t *testing.T) {
	body := "# Summary\n\nno chapter links here\n"
	path := writeManifest(t, body)

	warn, err := Insert(path, nm, 2, Entry("Mid", "ch02-mid.md"))
	if err != nil {
		t.Fatalf("anchor miss must not be a hard failure: %v", err)
	}
	if warn == "" {
		t.Fatal("expected a warning when no anchor line exists")
	}
	// Warning must carry enough to repair by hand: the searched token
	// and the entry to add.
	if !strings.Contains(warn, "ch01-") || !strings.Contains(warn, "- [Mid](./ch02-mid.md)") {
		t.Errorf("warning lacks repair detail: %s", warn)
	}

	data, _ := os.ReadFile(path)
	if string(data) != body {
		t.Error("manifest must be left untouched on anchor miss")
	}
}

func TestCheck(t *testing.T) {
	set := &chapter.Set{Chapters: []chapter.Chapter{
		{Position: 1, Filename: "ch01-a.md"},
		{Position: 2, Filename: "ch02-b.md"},
		{Position: 3, Filename: "ch03-c.md"},
	}}

	ordered := writeManifest(t, "- [A](./ch01-a.md)\n- [B](./ch02-b.md)\n- [C](./ch03-c.md)\n")
	if issues := Check(ordered, set, nm); len(issues) != 0 {
		t.Errorf("expected clean check, got %v", issues)
	}

	misordered := writeManifest(t, "- [B](./ch02-b.md)\n- [A](./ch01-a.md)\n- [C](./ch03-c.md)\n")
	issues := Check(misordered, set, nm)
	if len(issues) != 1 || issues[0].Severity != "error" {
		t.Errorf("expected one order error, got %v", issues)
	}

	missing := writeManifest(t, "- [A](./ch01-a.md)\n- [C](./ch03-c.md)\n")
	issues = Check(missing, set, nm)
	if len(issues) != 1 || issues[0].Severity != "warning" {
		t.Errorf("expected one coverage warning, got %v", issues)
	}
}
