package ghostpub

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/ghostpub/internal/platform"
	"github.com/aretw0/ghostpub/pkg/core"
)

// --- Types ---

// Workspace is a vault opened for publishing.
type Workspace = platform.Workspace

// Settings configures a publish run.
type Settings = core.Settings

// --- Configuration ---

// Option defines a functional option for opening a Workspace.
type Option = platform.Option

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithVault injects a storage adapter instead of the filesystem vault.
func WithVault(v core.Vault) Option {
	return platform.WithVault(v)
}

// WithSecrets injects a secret store instead of the environment and secrets file.
func WithSecrets(s core.SecretStore) Option {
	return platform.WithSecrets(s)
}

// WithHTTPClient sets the client used to reach the Ghost Admin API.
func WithHTTPClient(hc *http.Client) Option {
	return platform.WithHTTPClient(hc)
}

// WithSystemDir sets the hidden directory name (default ".ghostpub").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithIgnore adds doublestar patterns of vault paths that are never content.
func WithIgnore(patterns ...string) Option {
	return platform.WithIgnore(patterns...)
}

// WithVersioning forces committing published documents to Git on or off.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithOverrides applies the non-empty fields of s over the loaded settings.
func WithOverrides(s Settings) Option {
	return platform.WithOverrides(s)
}

// --- Factory ---

// New opens the workspace rooted at root.
func New(root string, opts ...Option) (*Workspace, error) {
	opts = append([]Option{platform.WithUserAgent(UserAgent())}, opts...)
	return platform.New(root, opts...)
}

// LoadSettings resolves the settings of the vault at root from defaults,
// its settings file and the environment.
func LoadSettings(root string) (Settings, error) {
	return platform.LoadSettings(root, nil)
}

// FindVaultRoot looks upwards from startDir for a vault root indicator.
func FindVaultRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// UserAgent is sent with every Admin API request.
func UserAgent() string {
	return "ghostpub/" + strings.TrimSpace(Version)
}
