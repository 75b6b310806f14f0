// Package platform wires the vault, secret stores and publisher of a
// workspace from settings and functional options.
package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/aretw0/introspection"

	"github.com/aretw0/ghostpub/pkg/adapters/fs"
	"github.com/aretw0/ghostpub/pkg/adapters/secrets"
	"github.com/aretw0/ghostpub/pkg/core"
	"github.com/aretw0/ghostpub/pkg/frontmatter"
	"github.com/aretw0/ghostpub/pkg/ghost"
	"github.com/aretw0/ghostpub/pkg/git"
	"github.com/aretw0/ghostpub/pkg/publish"
)

// Workspace is a vault opened for publishing.
type Workspace struct {
	Root      string
	Settings  core.Settings
	Vault     core.Vault
	Secrets   core.SecretStore
	Publisher *publish.Publisher

	// SecretFile is the writable secrets file, nil when secrets are injected.
	SecretFile *secrets.File

	fsVault *fs.Vault
	logger  *slog.Logger
}

// New opens the workspace rooted at root.
//
//	ws, err := platform.New(root, platform.WithLogger(logger))
//	res, err := ws.Publish(ctx, "writing/post.md")
func New(root string, opts ...Option) (*Workspace, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	settings, err := LoadSettings(abs, o.getenv)
	if err != nil {
		return nil, core.ConfigurationError(err, "failed to load settings")
	}
	settings = merge(settings, o.overrides)
	if o.versioning != nil {
		settings.CommitChanges = *o.versioning
	}
	if err := settings.Validate(); err != nil {
		return nil, core.ConfigurationError(err, "invalid settings")
	}

	ws := &Workspace{Root: abs, Settings: settings, logger: logger}

	systemDir := o.systemDir
	if systemDir == "" {
		systemDir = fs.DefaultSystemDir
	}

	if o.vault != nil {
		ws.Vault = o.vault
	} else {
		v := fs.NewVault(fs.Config{Root: abs, SystemDir: systemDir, Ignore: o.ignore, Logger: logger})
		if err := v.Initialize(context.Background()); err != nil {
			return nil, err
		}
		ws.fsVault = v
		ws.Vault = v
	}

	if o.secrets != nil {
		ws.Secrets = o.secrets
	} else {
		ws.SecretFile = secrets.NewFile(filepath.Join(abs, systemDir, secrets.FileName))
		ws.Secrets = secrets.Chain{secrets.Env{Lookup: lookup(o.getenv)}, ws.SecretFile}
	}

	publishOpts := []publish.Option{
		publish.WithLogger(logger),
		publish.WithRemote(func(baseURL string) publish.Remote {
			return ghost.NewClient(baseURL, ghost.WithHTTPClient(o.httpClient), ghost.WithUserAgent(o.userAgent))
		}),
	}
	if settings.CommitChanges {
		if git.IsInstalled() {
			publishOpts = append(publishOpts, publish.WithRecorder(git.NewRecorder(git.NewClient(abs, logger))))
		} else {
			logger.Warn("commit_changes is set but git is not installed")
		}
	}
	ws.Publisher = publish.New(ws.Vault, ws.Secrets, publishOpts...)

	return ws, nil
}

func lookup(getenv func(string) string) func(string) (string, bool) {
	if getenv == nil {
		return os.LookupEnv
	}
	return func(key string) (string, bool) {
		v := getenv(key)
		return v, v != ""
	}
}

// Rel maps a command-line path to a vault-relative one. Paths that exist
// relative to the working directory win over vault-relative readings.
func (w *Workspace) Rel(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if w.fsVault == nil {
		return path.Clean(filepath.ToSlash(p)), nil
	}
	if !filepath.IsAbs(p) {
		if abs, err := filepath.Abs(p); err == nil {
			if _, err := os.Stat(abs); err == nil {
				p = abs
			}
		}
	}
	return w.fsVault.Rel(p)
}

// Publish runs the publish pipeline on one document.
func (w *Workspace) Publish(ctx context.Context, p string) (*publish.Result, error) {
	rel, err := w.Rel(p)
	if err != nil {
		return nil, core.ResolutionError(err, "document is outside the vault")
	}
	return w.Publisher.Publish(ctx, w.Settings, rel)
}

// Status reads the publish record of one document.
func (w *Workspace) Status(ctx context.Context, p string) (core.Entry, error) {
	rel, err := w.Rel(p)
	if err != nil {
		return core.Entry{}, err
	}
	content, err := w.Vault.ReadText(ctx, rel)
	if err != nil {
		return core.Entry{}, err
	}
	doc := frontmatter.Parse(rel, content)
	record := frontmatter.Record(doc.Frontmatter)
	if record.Title == "" {
		record.Title = doc.Name()
	}
	return core.Entry{Path: rel, Record: record}, nil
}

// List indexes the writing folder.
func (w *Workspace) List(ctx context.Context) ([]core.Entry, error) {
	indexer, ok := w.Vault.(core.Indexer)
	if !ok {
		return nil, fmt.Errorf("vault does not support listing")
	}
	return indexer.Index(ctx, w.Settings.WritingFolder)
}

// Watcher returns the vault's change feed, if it has one.
func (w *Workspace) Watcher() (core.Watchable, bool) {
	watcher, ok := w.Vault.(core.Watchable)
	return watcher, ok
}

// Probe checks that the configured site answers.
func (w *Workspace) Probe(ctx context.Context) (*ghost.Site, error) {
	return w.Publisher.Probe(ctx, w.Settings)
}

// Components lists the introspectable parts of the workspace.
func (w *Workspace) Components() []introspection.Introspectable {
	out := []introspection.Introspectable{w.Publisher}
	if v, ok := w.Vault.(introspection.Introspectable); ok {
		out = append(out, v)
	}
	return out
}
