// Package memory provides in-memory implementations of the core ports.
package memory

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/ghostpub/pkg/core"
)

// Vault is a map-backed core.Vault. Every mutation is appended to an
// operation log so tests can assert what was (or was not) written.
type Vault struct {
	mu      sync.RWMutex
	files   map[string][]byte
	folders map[string]bool
	ops     []string
}

// NewVault creates an empty vault.
func NewVault() *Vault {
	return &Vault{
		files:   make(map[string][]byte),
		folders: make(map[string]bool),
	}
}

// Put stores a text document without recording an operation.
func (v *Vault) Put(p, content string) *Vault {
	return v.PutBinary(p, []byte(content))
}

// PutBinary stores raw bytes without recording an operation.
func (v *Vault) PutBinary(p string, data []byte) *Vault {
	v.mu.Lock()
	defer v.mu.Unlock()
	p = clean(p)
	v.files[p] = append([]byte(nil), data...)
	v.markParents(p)
	return v
}

// Get returns the stored content of p.
func (v *Vault) Get(p string) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	data, ok := v.files[clean(p)]
	return string(data), ok
}

// Paths returns every stored file path, sorted.
func (v *Vault) Paths() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.pathsLocked()
}

// Ops returns the mutations performed through the core.Vault methods.
func (v *Vault) Ops() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]string(nil), v.ops...)
}

func (v *Vault) ReadText(ctx context.Context, p string) (string, error) {
	data, err := v.ReadBinary(ctx, p)
	return string(data), err
}

func (v *Vault) ReadBinary(_ context.Context, p string) ([]byte, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	data, ok := v.files[clean(p)]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", p, fs.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

func (v *Vault) WriteText(_ context.Context, p, content string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	p = clean(p)
	v.files[p] = []byte(content)
	v.markParents(p)
	v.ops = append(v.ops, "write "+p)
	return nil
}

func (v *Vault) Move(_ context.Context, p, newPath string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	p, newPath = clean(p), clean(newPath)

	data, ok := v.files[p]
	if !ok {
		return fmt.Errorf("move %s: %w", p, fs.ErrNotExist)
	}
	if _, exists := v.files[newPath]; exists {
		return fmt.Errorf("move %s: %s: %w", p, newPath, fs.ErrExist)
	}
	if dir := path.Dir(newPath); dir != "." && !v.folders[dir] {
		return fmt.Errorf("move %s: folder %s: %w", p, dir, fs.ErrNotExist)
	}
	delete(v.files, p)
	v.files[newPath] = data
	v.ops = append(v.ops, "move "+p+" -> "+newPath)
	return nil
}

func (v *Vault) CreateFolder(_ context.Context, p string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	p = clean(p)
	if v.folders[p] {
		return fmt.Errorf("create folder %s: %w", p, fs.ErrExist)
	}
	v.folders[p] = true
	v.markParents(p + "/x")
	v.ops = append(v.ops, "mkdir "+p)
	return nil
}

func (v *Vault) ResolveLink(_ context.Context, name, fromPath string) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, candidate := range core.LinkCandidates(name, fromPath) {
		if _, ok := v.files[candidate]; ok {
			return candidate, true
		}
	}
	return core.MatchByBase(name, v.pathsLocked())
}

func (v *Vault) pathsLocked() []string {
	paths := make([]string, 0, len(v.files))
	for p := range v.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (v *Vault) markParents(p string) {
	for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
		v.folders[dir] = true
	}
}

func clean(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

var _ core.Vault = (*Vault)(nil)
