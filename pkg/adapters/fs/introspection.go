package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// VaultState exposes internal state for observability.
type VaultState struct {
	Root          string     `json:"root"`
	SystemDir     string     `json:"system_dir"`
	Ignore        []string   `json:"ignore"`
	IndexSize     int        `json:"index_size"`
	Watchers      int        `json:"watchers"`
	LastIndex     *time.Time `json:"last_index,omitempty"`
	LastIndexSize int        `json:"last_index_size,omitempty"`
}

// State implements introspection.Introspectable.
func (v *Vault) State() any {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return VaultState{
		Root:          v.Root,
		SystemDir:     v.config.SystemDir,
		Ignore:        append([]string(nil), v.ignore...),
		IndexSize:     v.cache.Len(),
		Watchers:      v.watchers,
		LastIndex:     v.lastIndex,
		LastIndexSize: v.lastIndexSize,
	}
}

// ComponentType implements introspection.Component.
func (v *Vault) ComponentType() string {
	return "vault"
}

var _ introspection.Introspectable = (*Vault)(nil)
var _ introspection.Component = (*Vault)(nil)
