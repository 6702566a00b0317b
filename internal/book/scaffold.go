package book

import (
	"fmt"
	"os"
	"path/filepath"
)

var firstChapterBody = `# Introduction

<!-- TODO -->
`

// Init scaffolds a new book at dir: book.yaml, a src directory with the
// first chapter, and a manifest listing it. The insert engine requires a
// non-empty sequence to anchor against, so init always seeds chapter 1.
func Init(dir, title string, force bool) (*Book, error) {
	cfgPath := filepath.Join(dir, ConfigFile)
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return nil, fmt.Errorf("%s already exists in %s (use --force to reinitialize)", ConfigFile, dir)
	}

	cfg := DefaultConfig()
	if title != "" {
		cfg.Title = title
	}
	b := &Book{Root: dir, Config: cfg}
	nm := b.Naming()

	if err := os.MkdirAll(b.SrcDir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", b.SrcDir(), err)
	}

	if err := b.SaveConfig(); err != nil {
		return nil, err
	}

	first := nm.Filename(1, "introduction")
	firstPath := filepath.Join(b.SrcDir(), first)
	if _, err := os.Stat(firstPath); os.IsNotExist(err) {
		if err := os.WriteFile(firstPath, []byte(firstChapterBody), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", first, err)
		}
	}

	manifestBody := fmt.Sprintf("# %s\n\n- [Introduction](./%s)\n", cfg.Title, first)
	if _, err := os.Stat(b.ManifestPath()); os.IsNotExist(err) || force {
		if err := os.WriteFile(b.ManifestPath(), []byte(manifestBody), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", cfg.Manifest, err)
		}
	}

	return b, nil
}
