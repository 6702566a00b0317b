package book

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the filename that marks a book root.
const ConfigFile = "book.yaml"

// Config holds the on-disk layout and naming convention of a book.
type Config struct {
	Title     string `yaml:"title"`
	Src       string `yaml:"src"`
	Prefix    string `yaml:"prefix"`
	Extension string `yaml:"extension"`
	Manifest  string `yaml:"manifest"`
	Pad       int    `yaml:"pad"`
}

// DefaultConfig returns a Config with the conventional layout:
// chapters named ch<NN>-<slug>.md under src/, listed in src/SUMMARY.md.
func DefaultConfig() Config {
	return Config{
		Title:     "My Book",
		Src:       "src",
		Prefix:    "ch",
		Extension: "md",
		Manifest:  "SUMMARY.md",
		Pad:       2,
	}
}

// Book represents a loaded book root.
type Book struct {
	Root   string
	Config Config
}

// Issue represents a health check finding.
type Issue struct {
	Severity string // "warning" or "error"
	Message  string
}

// Naming is the chapter filename convention: <prefix><NN>-<slug>.<ext>,
// NN zero-padded to Pad digits. Every component that parses or builds
// chapter filenames goes through it.
type Naming struct {
	Prefix string
	Ext    string
	Pad    int
}

// Filename builds the chapter filename for a position and slug.
func (n Naming) Filename(pos int, slug string) string {
	return fmt.Sprintf("%s%0*d-%s.%s", n.Prefix, n.Pad, pos, slug, n.Ext)
}

// Token is the filename-prefix form of a position as it appears inside
// links and other documents, e.g. "ch06-".
func (n Naming) Token(pos int) string {
	return fmt.Sprintf("%s%0*d-", n.Prefix, n.Pad, pos)
}

// parsePatterns caches the compiled filename pattern per convention; the
// scanner calls Parse once per directory entry.
var parsePatterns sync.Map // Naming → *regexp.Regexp

func (n Naming) pattern() *regexp.Regexp {
	if cached, ok := parsePatterns.Load(n); ok {
		return cached.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(n.Prefix) + `(\d+)-(.+)\.` + regexp.QuoteMeta(n.Ext) + `$`)
	parsePatterns.Store(n, re)
	return re
}

// Parse extracts the position and slug from a chapter filename.
// Returns ok=false for names that don't follow the convention.
func (n Naming) Parse(name string) (pos int, slug string, ok bool) {
	m := n.pattern().FindStringSubmatch(name)
	if m == nil {
		return 0, "", false
	}
	pos, err := strconv.Atoi(m[1])
	if err != nil || pos < 1 {
		return 0, "", false
	}
	return pos, m[2], true
}

// Naming returns the filename convention configured for this book.
func (b *Book) Naming() Naming {
	return Naming{Prefix: b.Config.Prefix, Ext: b.Config.Extension, Pad: b.Config.Pad}
}

// SrcDir returns the absolute path of the chapter directory.
func (b *Book) SrcDir() string {
	return filepath.Join(b.Root, b.Config.Src)
}

// ManifestPath returns the absolute path of the manifest file.
func (b *Book) ManifestPath() string {
	return filepath.Join(b.SrcDir(), b.Config.Manifest)
}

// Path resolves a path within the book root.
func (b *Book) Path(parts ...string) string {
	all := append([]string{b.Root}, parts...)
	return filepath.Join(all...)
}

// Load reads and validates a book root.
// Missing config fields are filled from defaults.
func Load(root string) (*Book, error) {
	cfgPath := filepath.Join(root, ConfigFile)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", cfgPath, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	if cfg.Pad < 1 {
		cfg.Pad = DefaultConfig().Pad
	}
	return &Book{Root: root, Config: cfg}, nil
}

// FindRoot walks up from start looking for a book.yaml.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ConfigFile)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found in %s or any parent directory — run 'tome init' first", ConfigFile, start)
		}
		dir = parent
	}
}

// SaveConfig writes the current config back to book.yaml.
func (b *Book) SaveConfig() error {
	data, err := yaml.Marshal(b.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	cfgPath := filepath.Join(b.Root, ConfigFile)
	if err := os.WriteFile(cfgPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
