// Package rewrite updates textual references to shifted chapter numbers.
// Two syntactic forms are recognized: the filename-prefix token (e.g.
// "ch06-") as a literal substring, and the prose phrase "Chapter N" with
// an unpadded whole-word number. Nothing else is touched — the rewriter
// has no semantic understanding of the text.
package rewrite

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/quillstudios/tome/internal/book"
)

// Shift rewrites references for every position from highest down to
// newPos across every file in dir with the configured extension,
// incrementing each by one. The manifest is swept like any other file.
//
// The descending order is load-bearing: a document containing both
// "Chapter 5" and "Chapter 6" must have 6 rewritten to 7 before 5 becomes
// 6, or the freshly written 6 gets incremented a second time in the same
// pass.
//
// Files whose content doesn't change are not rewritten, so untouched
// documents keep their modification times. Returns the names of files
// that were rewritten.
func Shift(dir string, nm book.Naming, newPos, highest int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", dir, err)
	}

	suffix := "." + nm.Ext
	var changed []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return changed, fmt.Errorf("cannot read %s: %w", e.Name(), err)
		}

		content := string(data)
		for i := highest; i >= newPos; i-- {
			content = shiftPosition(content, nm, i)
		}
		if content == string(data) {
			continue
		}

		perm := os.FileMode(0644)
		if info, err := e.Info(); err == nil {
			perm = info.Mode().Perm()
		}
		if err := os.WriteFile(path, []byte(content), perm); err != nil {
			return changed, fmt.Errorf("cannot rewrite %s: %w", e.Name(), err)
		}
		changed = append(changed, e.Name())
	}
	return changed, nil
}

// shiftPosition rewrites every reference to position pos in content to
// pos+1, in both recognized forms.
func shiftPosition(content string, nm book.Naming, pos int) string {
	content = strings.ReplaceAll(content, nm.Token(pos), nm.Token(pos+1))

	// Whole-word match: "Chapter 1" must not match inside "Chapter 10".
	phrase := regexp.MustCompile(fmt.Sprintf(`\bChapter(\s+)%d\b`, pos))
	content = phrase.ReplaceAllString(content, fmt.Sprintf("Chapter${1}%d", pos+1))
	return content
}

// Patterns reports the rewrite patterns for one position, for dry-run
// display.
func Patterns(nm book.Naming, pos int) (token, phrase string) {
	return fmt.Sprintf("%s → %s", nm.Token(pos), nm.Token(pos+1)),
		fmt.Sprintf("Chapter %d → Chapter %d", pos, pos+1)
}
