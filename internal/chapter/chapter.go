package chapter

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/quillstudios/tome/internal/book"
)

// ErrEmptySequence is returned when a directory contains no numbered
// chapter files. The tool cannot bootstrap position 1 from nothing; it
// needs an existing sequence to anchor against.
var ErrEmptySequence = errors.New("no numbered chapters found")

// ErrAlreadyExists is returned when the target filename for a new chapter
// is already occupied.
var ErrAlreadyExists = errors.New("chapter file already exists")

// Chapter is one numbered document in the set.
type Chapter struct {
	Position int
	Slug     string
	Filename string
}

// Set is the ordered collection of numbered documents in one directory,
// read fresh from the filesystem at the start of every run.
type Set struct {
	Dir      string
	Chapters []Chapter // sorted by position
}

// Highest returns the highest assigned position, or 0 for an empty set.
func (s *Set) Highest() int {
	if len(s.Chapters) == 0 {
		return 0
	}
	return s.Chapters[len(s.Chapters)-1].Position
}

// At returns the chapter at a position, if one exists.
func (s *Set) At(pos int) (Chapter, bool) {
	for _, c := range s.Chapters {
		if c.Position == pos {
			return c, true
		}
	}
	return Chapter{}, false
}

// Scan lists dir and parses every filename matching the naming convention.
// Directory order is never trusted: the result is explicitly sorted by
// position. Returns ErrEmptySequence if no numbered file is found.
func Scan(dir string, nm book.Naming) (*Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read chapter directory %s: %w", dir, err)
	}

	set := &Set{Dir: dir}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		pos, slug, ok := nm.Parse(e.Name())
		if !ok {
			continue
		}
		set.Chapters = append(set.Chapters, Chapter{Position: pos, Slug: slug, Filename: e.Name()})
	}
	if len(set.Chapters) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrEmptySequence, dir)
	}

	sort.Slice(set.Chapters, func(i, j int) bool {
		return set.Chapters[i].Position < set.Chapters[j].Position
	})
	return set, nil
}

var slugSeparators = regexp.MustCompile(`[\s_]+`)
var slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
var slugDashes = regexp.MustCompile(`-{2,}`)

// NormalizeSlug lowercases a slug and collapses whitespace and underscores
// to hyphens, dropping anything else that isn't filesystem-safe.
// Returns an error if nothing usable remains.
func NormalizeSlug(s string) (string, error) {
	out := strings.ToLower(strings.TrimSpace(s))
	out = slugSeparators.ReplaceAllString(out, "-")
	out = slugInvalid.ReplaceAllString(out, "")
	out = slugDashes.ReplaceAllString(out, "-")
	out = strings.Trim(out, "-")
	if out == "" {
		return "", fmt.Errorf("slug %q contains no usable characters", s)
	}
	return out, nil
}

// DeriveTitle turns a slug into a display title: separators become spaces
// and each word's first letter is capitalized.
func DeriveTitle(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Create materializes a new chapter file at pos with a minimal templated
// body. The slot must be vacant: if shifting already ran, a collision here
// means the sequence was inconsistent to begin with.
func Create(dir string, nm book.Naming, pos int, slug, title string) (Chapter, error) {
	name := nm.Filename(pos, slug)
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return Chapter{}, fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	}

	body := fmt.Sprintf("# %s\n\n<!-- TODO -->\n", title)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		return Chapter{}, fmt.Errorf("failed to write %s: %w", name, err)
	}
	return Chapter{Position: pos, Slug: slug, Filename: name}, nil
}

// FirstHeading returns the text of the first level-one heading in a
// chapter file, or "" if none is found.
func FirstHeading(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

// CheckSequence verifies the contiguous-numbering invariant: positions
// run 1..highest with no gaps and no duplicates.
func CheckSequence(set *Set) []book.Issue {
	var issues []book.Issue
	seen := map[int]string{}
	for _, c := range set.Chapters {
		if prev, dup := seen[c.Position]; dup {
			issues = append(issues, book.Issue{
				Severity: "error",
				Message:  fmt.Sprintf("duplicate position %d: %s and %s", c.Position, prev, c.Filename),
			})
			continue
		}
		seen[c.Position] = c.Filename
	}
	for i := 1; i <= set.Highest(); i++ {
		if _, ok := seen[i]; !ok {
			issues = append(issues, book.Issue{
				Severity: "error",
				Message:  fmt.Sprintf("gap in sequence: no chapter at position %d", i),
			})
		}
	}
	return issues
}
