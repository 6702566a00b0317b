// Package insert orchestrates the chapter insertion pipeline: validate the
// request, scan the sequence, shift files, rewrite references, create the
// new document, update the manifest. The stages run strictly in that
// order; each rereads the filesystem rather than trusting earlier
// in-memory state, so an aborted run can always be inspected with a fresh
// scan.
package insert

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/quillstudios/tome/internal/book"
	"github.com/quillstudios/tome/internal/chapter"
	"github.com/quillstudios/tome/internal/manifest"
	"github.com/quillstudios/tome/internal/rewrite"
	"github.com/quillstudios/tome/internal/shift"
)

// ErrInvalidArgument is returned for malformed positions or unusable slugs.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrPositionTooHigh is returned when the requested position would leave a
// gap past the end of the sequence.
var ErrPositionTooHigh = errors.New("position too high")

// Request is a validated, normalized insertion request.
type Request struct {
	Position int
	Slug     string
	Title    string
}

// NewRequest parses and validates the raw command arguments. If title is
// empty it is derived from the slug by word capitalization. No side
// effects.
func NewRequest(posArg, slug, title string) (Request, error) {
	pos, err := strconv.Atoi(posArg)
	if err != nil || pos < 1 {
		return Request{}, fmt.Errorf("%w: position must be a positive integer, got %q", ErrInvalidArgument, posArg)
	}

	normalized, err := chapter.NormalizeSlug(slug)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	if title == "" {
		title = chapter.DeriveTitle(normalized)
	}
	return Request{Position: pos, Slug: normalized, Title: title}, nil
}

// Plan is the set of operations an insertion would perform, computed
// without mutating anything.
type Plan struct {
	Highest  int
	Renames  []shift.Rename
	NewFile  string
	Entry    string
	Warnings []string
}

// Result reports what an insertion actually did.
type Result struct {
	Chapter         chapter.Chapter
	Renames         []shift.Rename
	Rewritten       []string
	ManifestUpdated bool
	Warnings        []string
}

// validate scans the sequence and checks the request against it.
func validate(bk *book.Book, req Request) (*chapter.Set, error) {
	set, err := chapter.Scan(bk.SrcDir(), bk.Naming())
	if err != nil {
		return nil, err
	}
	if req.Position > set.Highest()+1 {
		return nil, fmt.Errorf("%w: %d exceeds the sequence (next appendable position is %d)",
			ErrPositionTooHigh, req.Position, set.Highest()+1)
	}
	return set, nil
}

// Preview computes the plan for an insertion without touching the tree.
func Preview(bk *book.Book, req Request) (*Plan, error) {
	set, err := validate(bk, req)
	if err != nil {
		return nil, err
	}
	nm := bk.Naming()
	renames, warnings := shift.Plan(set, nm, req.Position)
	newFile := nm.Filename(req.Position, req.Slug)
	return &Plan{
		Highest:  set.Highest(),
		Renames:  renames,
		NewFile:  newFile,
		Entry:    manifest.Entry(req.Title, newFile),
		Warnings: warnings,
	}, nil
}

// Run performs the insertion. Validation failures abort before any
// mutation; once shifting has begun there is no rollback — non-fatal
// conditions (pre-existing gaps, a missing manifest anchor) accumulate as
// warnings with enough detail to repair by hand.
func Run(bk *book.Book, req Request) (*Result, error) {
	set, err := validate(bk, req)
	if err != nil {
		return nil, err
	}
	nm := bk.Naming()
	res := &Result{}

	renames, warnings := shift.Plan(set, nm, req.Position)
	res.Warnings = append(res.Warnings, warnings...)
	if err := shift.Apply(bk.SrcDir(), renames); err != nil {
		return res, err
	}
	res.Renames = renames

	rewritten, err := rewrite.Shift(bk.SrcDir(), nm, req.Position, set.Highest())
	res.Rewritten = rewritten
	if err != nil {
		return res, err
	}

	ch, err := chapter.Create(bk.SrcDir(), nm, req.Position, req.Slug, req.Title)
	if err != nil {
		return res, err
	}
	res.Chapter = ch

	warn, err := manifest.Insert(bk.ManifestPath(), nm, req.Position, manifest.Entry(req.Title, ch.Filename))
	if err != nil {
		return res, err
	}
	if warn != "" {
		res.Warnings = append(res.Warnings, warn)
	} else {
		res.ManifestUpdated = true
	}
	return res, nil
}
