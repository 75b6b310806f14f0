package platform

import (
	"log/slog"
	"net/http"

	"github.com/aretw0/ghostpub/pkg/core"
)

// options holds the internal configuration of a Workspace.
type options struct {
	logger     *slog.Logger
	vault      core.Vault
	secrets    core.SecretStore
	httpClient *http.Client
	userAgent  string
	systemDir  string
	ignore     []string
	versioning *bool
	overrides  core.Settings
	getenv     func(string) string
}

// Option defines a functional option for configuring a Workspace.
type Option func(*options)

func defaultOptions() *options {
	return &options{}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithVault injects a storage adapter, skipping the filesystem vault.
func WithVault(v core.Vault) Option {
	return func(o *options) {
		o.vault = v
	}
}

// WithSecrets injects a secret store, skipping the env and file stores.
func WithSecrets(s core.SecretStore) Option {
	return func(o *options) {
		o.secrets = s
	}
}

// WithHTTPClient sets the client used to reach the Ghost Admin API.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent sent to the Ghost Admin API.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithSystemDir sets the hidden directory name (default ".ghostpub").
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.systemDir = name
	}
}

// WithIgnore adds doublestar patterns of vault paths that are never content.
func WithIgnore(patterns ...string) Option {
	return func(o *options) {
		o.ignore = append(o.ignore, patterns...)
	}
}

// WithVersioning forces Git recording on or off, overriding the
// commit_changes setting.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.versioning = &enabled
	}
}

// WithOverrides applies the non-empty fields of s on top of the loaded
// settings. Used for command-line flags.
func WithOverrides(s core.Settings) Option {
	return func(o *options) {
		o.overrides = s
	}
}

// WithEnv replaces os.Getenv for settings lookup.
func WithEnv(getenv func(string) string) Option {
	return func(o *options) {
		o.getenv = getenv
	}
}
