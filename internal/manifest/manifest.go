// Package manifest splices new chapter entries into the ordered listing
// file. The manifest is line-oriented: chapter entries are single lines of
// the shape "- [Title](./chNN-slug.md)"; everything else passes through
// untouched.
package manifest

import (
	"fmt"
	"os"
	"strings"

	"github.com/quillstudios/tome/internal/book"
	"github.com/quillstudios/tome/internal/chapter"
)

// Entry formats a manifest line for a chapter.
func Entry(title, filename string) string {
	return fmt.Sprintf("- [%s](./%s)", title, filename)
}

// Insert splices entry into the manifest at path. The anchor is the line
// referencing the chapter at pos-1 (entry goes after it), or — when
// inserting at position 1 — the line referencing the chapter now at
// position 2 (entry goes before it).
//
// A missing anchor is advisory, not fatal: the filesystem changes made by
// earlier stages are already committed, and a manifest miss is repairable
// by hand-editing one file. In that case (or if the manifest itself can't
// be read or written) Insert returns a warning and leaves the file alone.
func Insert(path string, nm book.Naming, pos int, entry string) (warning string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("manifest not updated: %v", err), nil
	}

	var token string
	before := pos == 1
	if before {
		token = nm.Token(pos + 1)
	} else {
		token = nm.Token(pos - 1)
	}

	lines := strings.Split(string(data), "\n")
	anchor := -1
	for i, line := range lines {
		if strings.Contains(line, token) {
			anchor = i
			break
		}
	}
	if anchor == -1 {
		return fmt.Sprintf("manifest not updated: no line referencing %q found in %s — add the entry by hand: %s", token, path, entry), nil
	}

	at := anchor + 1
	if before {
		at = anchor
	}
	lines = append(lines[:at], append([]string{entry}, lines[at:]...)...)

	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return fmt.Sprintf("manifest not updated: %v", err), nil
	}
	return "", nil
}

// Check verifies that the manifest references every chapter and lists
// them in position order.
func Check(path string, set *chapter.Set, nm book.Naming) []book.Issue {
	data, err := os.ReadFile(path)
	if err != nil {
		return []book.Issue{{Severity: "error", Message: fmt.Sprintf("cannot read manifest: %v", err)}}
	}
	content := string(data)

	var issues []book.Issue
	last := -1
	lastFile := ""
	for _, c := range set.Chapters {
		idx := strings.Index(content, c.Filename)
		if idx == -1 {
			issues = append(issues, book.Issue{
				Severity: "warning",
				Message:  fmt.Sprintf("manifest has no entry for %s", c.Filename),
			})
			continue
		}
		if idx < last {
			issues = append(issues, book.Issue{
				Severity: "error",
				Message:  fmt.Sprintf("manifest lists %s before %s, out of position order", c.Filename, lastFile),
			})
		}
		last = idx
		lastFile = c.Filename
	}
	return issues
}
