package secrets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/ghostpub/pkg/adapters/fs"
	"github.com/aretw0/ghostpub/pkg/core"
)

// FileName is the secrets file kept in the vault's system directory.
const FileName = "secrets.yaml"

// File stores secrets as a flat YAML mapping. The file is written with
// owner-only permissions.
type File struct {
	Path string
	mu   sync.Mutex
}

// NewFile creates a store backed by path. The file need not exist.
func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) load() (map[string]string, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.Path, err)
	}
	return values, nil
}

func (f *File) GetSecret(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", err
	}
	return values[name], nil
}

// SetSecret stores value under name. An empty value removes the secret.
func (f *File) SetSecret(_ context.Context, name, value string) error {
	if name == "" {
		return fmt.Errorf("secret name is empty")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	if value == "" {
		delete(values, name)
	} else {
		values[name] = value
	}

	data, err := yaml.Marshal(values)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	return fs.WriteFileAtomic(f.Path, data, 0o600)
}

// Names lists the stored secret names, sorted.
func (f *File) Names() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

var _ core.SecretStore = (*File)(nil)
