package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/ghostpub/pkg/core"
)

// DefaultSystemDir holds the index and secrets file inside a vault.
const DefaultSystemDir = ".ghostpub"

// defaultIgnore lists vault paths never treated as content.
var defaultIgnore = []string{
	".git/**",
	".obsidian/**",
	".trash/**",
	"**/" + TempFilePrefix + "*",
}

// ErrOutsideVault is returned for paths escaping the vault root.
var ErrOutsideVault = errors.New("path is outside the vault")

// Config holds the configuration for the filesystem vault.
type Config struct {
	Root      string
	SystemDir string   // e.g. ".ghostpub"
	Ignore    []string // doublestar patterns, vault-relative
	Logger    *slog.Logger
}

// Vault implements core.Vault on a directory tree.
type Vault struct {
	Root   string
	config Config
	ignore []string
	cache  *cache
	logger *slog.Logger

	mu            sync.RWMutex
	watchers      int
	lastIndex     *time.Time
	lastIndexSize int
}

// NewVault creates a vault rooted at config.Root.
func NewVault(config Config) *Vault {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ignore := append([]string{config.SystemDir + "/**"}, defaultIgnore...)
	ignore = append(ignore, config.Ignore...)

	return &Vault{
		Root:   config.Root,
		config: config,
		ignore: ignore,
		cache:  newCache(config.Root, config.SystemDir),
		logger: logger,
	}
}

// SystemPath returns the absolute path of the system directory.
func (v *Vault) SystemPath() string {
	return filepath.Join(v.Root, v.config.SystemDir)
}

// Initialize creates the system directory and, in a Git working tree, makes
// sure it is listed in .gitignore.
func (v *Vault) Initialize(ctx context.Context) error {
	info, err := os.Stat(v.Root)
	if err != nil {
		return fmt.Errorf("vault path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault path is not a directory: %s", v.Root)
	}
	if err := os.MkdirAll(v.SystemPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create system directory: %w", err)
	}
	if _, err := os.Stat(filepath.Join(v.Root, ".git")); err == nil {
		if _, err := v.ensureIgnore(); err != nil {
			return fmt.Errorf("failed to ensure .gitignore: %w", err)
		}
	}
	return nil
}

func (v *Vault) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(v.Root, ".gitignore")
	ignoreEntry := v.config.SystemDir + "/"

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == ignoreEntry {
			return false, nil
		}
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}
	if _, err := f.WriteString(ignoreEntry + "\n"); err != nil {
		return false, err
	}
	return true, nil
}

// Ignored reports whether a vault-relative path matches an ignore pattern.
func (v *Vault) Ignored(rel string) bool {
	for _, pattern := range v.ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// ignoredDir reports whether everything below a directory is ignored.
func (v *Vault) ignoredDir(rel string) bool {
	return v.Ignored(rel) || v.Ignored(path.Join(rel, "child"))
}

// abs maps a vault-relative path to the filesystem, refusing to leave the root.
func (v *Vault) abs(rel string) (string, error) {
	clean := path.Clean(strings.TrimPrefix(filepath.ToSlash(rel), "/"))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%q: %w", rel, ErrOutsideVault)
	}
	full := filepath.Join(v.Root, filepath.FromSlash(clean))
	if r, err := filepath.Rel(v.Root, full); err != nil || strings.HasPrefix(r, "..") {
		return "", fmt.Errorf("%q: %w", rel, ErrOutsideVault)
	}
	return full, nil
}

// Rel converts an absolute or working-directory path into a vault-relative one.
func (v *Vault) Rel(p string) (string, error) {
	if !filepath.IsAbs(p) {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}
	rel, err := filepath.Rel(v.Root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%q: %w", p, ErrOutsideVault)
	}
	return filepath.ToSlash(rel), nil
}

func (v *Vault) ReadText(ctx context.Context, rel string) (string, error) {
	data, err := v.ReadBinary(ctx, rel)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (v *Vault) ReadBinary(_ context.Context, rel string) ([]byte, error) {
	full, err := v.abs(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	return data, nil
}

// WriteText replaces a document atomically, keeping its permissions.
func (v *Vault) WriteText(_ context.Context, rel, content string) error {
	full, err := v.abs(rel)
	if err != nil {
		return err
	}
	perm := os.FileMode(0o644)
	if info, err := os.Stat(full); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create parent of %s: %w", rel, err)
	}
	if err := WriteFileAtomic(full, []byte(content), perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	v.logger.Debug("document written", "path", rel)
	return nil
}

// Move renames a document. An existing destination is never overwritten.
func (v *Vault) Move(_ context.Context, rel, newRel string) error {
	from, err := v.abs(rel)
	if err != nil {
		return err
	}
	to, err := v.abs(newRel)
	if err != nil {
		return err
	}
	if _, err := os.Stat(to); err == nil {
		return fmt.Errorf("failed to move %s: %s: %w", rel, newRel, iofs.ErrExist)
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("failed to move %s: %w", rel, err)
	}
	v.cache.Delete(filepath.ToSlash(path.Clean(rel)))
	v.logger.Debug("document moved", "from", rel, "to", newRel)
	return nil
}

// CreateFolder creates rel and its parents. An existing folder yields an
// error matching fs.ErrExist.
func (v *Vault) CreateFolder(_ context.Context, rel string) error {
	full, err := v.abs(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", rel, err)
	}
	if err := os.Mkdir(full, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", rel, err)
	}
	return nil
}

// ResolveLink looks for name next to fromPath, then from the vault root, and
// finally anywhere in the vault by base name.
func (v *Vault) ResolveLink(_ context.Context, name, fromPath string) (string, bool) {
	for _, candidate := range core.LinkCandidates(name, fromPath) {
		full, err := v.abs(candidate)
		if err != nil || v.Ignored(candidate) {
			continue
		}
		if info, err := os.Stat(full); err == nil && !info.IsDir() {
			return candidate, true
		}
	}

	paths, err := v.walk("", func(string) bool { return true })
	if err != nil {
		v.logger.Debug("link search failed", "name", name, "error", err)
		return "", false
	}
	return core.MatchByBase(name, paths)
}

// walk lists non-ignored files under folder whose path satisfies keep.
func (v *Vault) walk(folder string, keep func(rel string) bool) ([]string, error) {
	start := v.Root
	if folder = strings.Trim(folder, "/"); folder != "" {
		full, err := v.abs(folder)
		if err != nil {
			return nil, err
		}
		start = full
	}

	var out []string
	err := filepath.WalkDir(start, func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == start {
				return iofs.SkipAll
			}
			return err
		}
		rel, err := filepath.Rel(v.Root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if v.ignoredDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if v.Ignored(rel) || !keep(rel) {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	return out, err
}

var _ core.Vault = (*Vault)(nil)
