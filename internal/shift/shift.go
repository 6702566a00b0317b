// Package shift renames chapter files to open a slot at an insertion
// point. Renames run from the highest position down to the target so that
// every destination slot is vacant before its move; ascending order would
// overwrite the not-yet-moved neighbor.
package shift

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/quillstudios/tome/internal/book"
	"github.com/quillstudios/tome/internal/chapter"
)

// Rename is one planned file move, shifting a chapter up by one position.
type Rename struct {
	Position int // position before the shift
	From     string
	To       string
}

// Plan computes the renames needed to vacate newPos, in descending
// position order. A position missing from the set is a pre-existing gap:
// it is skipped with a warning, not repaired and not fatal.
// Returns no renames for a pure append (newPos == highest+1).
func Plan(set *chapter.Set, nm book.Naming, newPos int) ([]Rename, []string) {
	var renames []Rename
	var warnings []string
	for i := set.Highest(); i >= newPos; i-- {
		c, ok := set.At(i)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("no chapter file at position %d (expected %s…), skipping", i, nm.Token(i)))
			continue
		}
		renames = append(renames, Rename{
			Position: i,
			From:     c.Filename,
			To:       nm.Filename(i+1, c.Slug),
		})
	}
	return renames, warnings
}

// Apply performs the planned renames in dir, in the order given.
func Apply(dir string, renames []Rename) error {
	for _, r := range renames {
		from := filepath.Join(dir, r.From)
		to := filepath.Join(dir, r.To)
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("failed to shift %s → %s: %w", r.From, r.To, err)
		}
	}
	return nil
}
