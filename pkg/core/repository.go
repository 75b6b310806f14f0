package core

import "context"

// Vault is the storage contract the pipeline needs from its host.
// Paths are vault-relative and slash-separated.
type Vault interface {
	// ReadText returns the content of a text document.
	ReadText(ctx context.Context, path string) (string, error)

	// ReadBinary returns the raw bytes of an asset.
	ReadBinary(ctx context.Context, path string) ([]byte, error)

	// WriteText replaces the content of a document.
	WriteText(ctx context.Context, path, content string) error

	// Move relocates a document. The destination folder must exist.
	Move(ctx context.Context, path, newPath string) error

	// CreateFolder creates a folder. Implementations may report an existing
	// folder with an error matching fs.ErrExist; callers ignore it.
	CreateFolder(ctx context.Context, path string) error

	// ResolveLink maps a wiki-style link name to a document path, scoped
	// relative to fromPath. It returns false when nothing matches.
	ResolveLink(ctx context.Context, name, fromPath string) (string, bool)
}

// SecretStore fetches named secrets. A missing secret yields an empty string
// and no error; errors are reserved for backend failures.
type SecretStore interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Indexer is implemented by vaults able to list documents with their publish state.
type Indexer interface {
	Index(ctx context.Context, folder string) ([]Entry, error)
}

// Watchable is implemented by vaults that can observe folders for document changes.
type Watchable interface {
	Watch(ctx context.Context, folders ...string) (<-chan ChangeEvent, error)
}
