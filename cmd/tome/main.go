package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/quillstudios/tome/internal/book"
	"github.com/quillstudios/tome/internal/chapter"
	"github.com/quillstudios/tome/internal/insert"
	"github.com/quillstudios/tome/internal/manifest"
	"github.com/quillstudios/tome/internal/rewrite"
	"github.com/quillstudios/tome/internal/ui"
)

// Set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func buildVersion() string {
	if commit == "none" {
		return version
	}
	return fmt.Sprintf("%s (%s, %s)", version, commit, date)
}

func newRootCmd() *cobra.Command {
	var noColor bool

	rootCmd := &cobra.Command{
		Use:   "tome",
		Short: "tome — numbered chapter-set maintenance",
		Long:  "A local CLI tool that keeps a numbered Markdown book consistent: insert chapters anywhere in the sequence and tome renumbers files, rewrites references, and patches the manifest.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.Init(noColor)
		},
		// Errors are reported once, styled, from main.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.Version = buildVersion()
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(insertCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(doctorCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		ui.Error(err.Error())
		os.Exit(1)
	}
}

// loadBook locates the book root from the working directory and loads it.
func loadBook() (*book.Book, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := book.FindRoot(cwd)
	if err != nil {
		return nil, err
	}
	return book.Load(root)
}

func initCmd() *cobra.Command {
	var title string
	var force bool
	cmd := &cobra.Command{
		Use:     "init [dir]",
		Short:   "Scaffold a new book",
		Long:    "Create book.yaml, a src/ directory with the first chapter, and a SUMMARY.md manifest. Insertion needs an existing sequence to anchor against, so the scaffold always seeds chapter 1.",
		Example: "  tome init\n  tome init docs --title \"Field Guide\"",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			b, err := book.Init(dir, title, force)
			if err != nil {
				return err
			}
			ui.Success("Book initialized")
			ui.Detail("Root:    ", b.Root)
			ui.Detail("Chapters:", b.SrcDir())
			ui.Detail("Manifest:", b.ManifestPath())
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Book title for the scaffolded manifest")
	cmd.Flags().BoolVar(&force, "force", false, "Reinitialize even if book.yaml already exists")
	return cmd
}

func insertCmd() *cobra.Command {
	var dryRun, yes bool
	cmd := &cobra.Command{
		Use:   "insert <position> <slug> [title]",
		Short: "Insert a chapter at a position, shifting the rest up",
		Long: "Insert a new chapter at the given 1-based position. Every chapter at or after " +
			"that position is renamed one slot up, every textual reference to a shifted number " +
			"(chNN- links and \"Chapter N\" phrases) is rewritten, and the manifest gains an entry " +
			"at the matching spot. Position highest+1 appends without any shifting.",
		Example: "  tome insert 4 error-handling\n  tome insert 1 preface \"A Word Before\"\n  tome insert 9 appendix --dry-run",
		Args:    cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := ""
			if len(args) == 3 {
				title = args[2]
			}
			req, err := insert.NewRequest(args[0], args[1], title)
			if err != nil {
				return err
			}

			b, err := loadBook()
			if err != nil {
				return err
			}

			plan, err := insert.Preview(b, req)
			if err != nil {
				return err
			}

			if dryRun {
				printPlan(b, req, plan)
				return nil
			}

			// Only prompt when someone is there to answer; piped and CI
			// runs proceed as if confirmed.
			if len(plan.Renames) > 0 && !yes && ui.IsInteractive() {
				prompt := fmt.Sprintf("Shift %d chapter(s) to make room at position %d?", len(plan.Renames), req.Position)
				proceed, err := ui.Confirm(prompt)
				if err != nil {
					return err
				}
				if !proceed {
					ui.Info("Cancelled.")
					return nil
				}
			}

			res, err := insert.Run(b, req)
			if res != nil {
				for _, w := range res.Warnings {
					ui.Logger.Warn(w)
				}
			}
			if err != nil {
				return err
			}

			ui.Success(fmt.Sprintf("Inserted %s at position %d", ui.Bold(res.Chapter.Filename), req.Position))
			ui.Logger.Info("insert complete",
				"position", req.Position,
				"file", res.Chapter.Filename,
				"shifted", len(res.Renames),
				"rewritten", len(res.Rewritten),
				"manifest", res.ManifestUpdated)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan without changing anything")
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}

func printPlan(b *book.Book, req insert.Request, plan *insert.Plan) {
	ui.CommandBanner("INSERT", "dry run — nothing will be modified")
	for _, w := range plan.Warnings {
		ui.Logger.Warn(w)
	}
	if len(plan.Renames) == 0 {
		ui.Info(fmt.Sprintf("Pure append at position %d — no shifting needed", req.Position))
	}
	for _, r := range plan.Renames {
		ui.KeyValue("rename ", fmt.Sprintf("%s → %s", r.From, r.To))
	}
	for i := plan.Highest; i >= req.Position; i-- {
		token, phrase := rewrite.Patterns(b.Naming(), i)
		ui.KeyValue("rewrite", fmt.Sprintf("%s, %s", token, phrase))
	}
	ui.KeyValue("create ", plan.NewFile)
	ui.KeyValue("splice ", plan.Entry)
	fmt.Fprintln(os.Stderr, ui.Dim("  run again without --dry-run to apply"))
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List chapters in position order",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := loadBook()
			if err != nil {
				return err
			}
			set, err := chapter.Scan(b.SrcDir(), b.Naming())
			if err != nil {
				if errors.Is(err, chapter.ErrEmptySequence) {
					ui.EmptyState("No chapters yet. Use 'tome init' to scaffold the first one.")
					return nil
				}
				return err
			}
			var rows [][]string
			for _, c := range set.Chapters {
				heading := chapter.FirstHeading(b.Path(b.Config.Src, c.Filename))
				rows = append(rows, []string{strconv.Itoa(c.Position), c.Slug, heading, c.Filename})
			}
			ui.Table([]string{"POS", "SLUG", "TITLE", "FILE"}, rows)
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show <position>",
		Short:   "Render a chapter to the terminal",
		Example: "  tome show 3",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[0])
			if err != nil || pos < 1 {
				return fmt.Errorf("position must be a positive integer, got %q", args[0])
			}
			b, err := loadBook()
			if err != nil {
				return err
			}
			set, err := chapter.Scan(b.SrcDir(), b.Naming())
			if err != nil {
				return err
			}
			c, ok := set.At(pos)
			if !ok {
				return fmt.Errorf("no chapter at position %d (highest is %d)", pos, set.Highest())
			}
			data, err := os.ReadFile(b.Path(b.Config.Src, c.Filename))
			if err != nil {
				return err
			}
			ui.RenderMarkdown(string(data))
			return nil
		},
	}
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check sequence and manifest invariants",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := loadBook()
			if err != nil {
				return err
			}
			ui.CommandBanner("DOCTOR", "health check")

			set, err := chapter.Scan(b.SrcDir(), b.Naming())
			if err != nil {
				if errors.Is(err, chapter.ErrEmptySequence) {
					ui.Warning("no numbered chapters found — nothing to check")
					return nil
				}
				return err
			}

			issues := chapter.CheckSequence(set)
			issues = append(issues, manifest.Check(b.ManifestPath(), set, b.Naming())...)

			if len(issues) == 0 {
				ui.Success("Everything looks good")
				return nil
			}

			hasError := false
			for _, issue := range issues {
				if issue.Severity == "error" {
					hasError = true
					ui.Error(issue.Message)
				} else {
					ui.Warning(issue.Message)
				}
			}
			if hasError {
				os.Exit(1)
			}
			return nil
		},
	}
}
