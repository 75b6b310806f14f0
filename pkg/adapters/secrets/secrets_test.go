package secrets_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/ghostpub/pkg/adapters/memory"
	"github.com/aretw0/ghostpub/pkg/adapters/secrets"
	"github.com/aretw0/ghostpub/pkg/core"
)

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"ghost-admin-api-key": "GHOSTPUB_SECRET_GHOST_ADMIN_API_KEY",
		"blog.key":            "GHOSTPUB_SECRET_BLOG_KEY",
		" Key1 ":              "GHOSTPUB_SECRET_KEY1",
	}
	for name, want := range tests {
		assert.Equal(t, want, secrets.EnvKey(name), name)
	}
}

func TestEnv_GetSecret(t *testing.T) {
	t.Setenv("GHOSTPUB_SECRET_GHOST_ADMIN_API_KEY", " id:abcd\n")

	value, err := secrets.Env{}.GetSecret(context.Background(), "ghost-admin-api-key")
	require.NoError(t, err)
	assert.Equal(t, "id:abcd", value)

	value, err = secrets.Env{}.GetSecret(context.Background(), "other")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestFile_SetAndGet(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), ".ghostpub", secrets.FileName)
	store := secrets.NewFile(path)

	value, err := store.GetSecret(ctx, "ghost-admin-api-key")
	require.NoError(t, err)
	assert.Empty(t, value, "missing file is an empty store")

	require.NoError(t, store.SetSecret(ctx, "ghost-admin-api-key", "id:abcd"))
	require.NoError(t, store.SetSecret(ctx, "other", "x"))

	value, err = secrets.NewFile(path).GetSecret(ctx, "ghost-admin-api-key")
	require.NoError(t, err)
	assert.Equal(t, "id:abcd", value)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	names, err := store.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost-admin-api-key", "other"}, names)

	require.NoError(t, store.SetSecret(ctx, "other", ""))
	names, err = store.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost-admin-api-key"}, names)

	assert.Error(t, store.SetSecret(ctx, "", "x"))
}

func TestFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), secrets.FileName)
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0o600))

	_, err := secrets.NewFile(path).GetSecret(context.Background(), "k")
	assert.Error(t, err)
}

type failingStore struct{ err error }

func (f failingStore) GetSecret(context.Context, string) (string, error) { return "", f.err }

func TestChain(t *testing.T) {
	ctx := context.Background()
	chain := secrets.Chain{
		memory.Secrets{"a": "from-first"},
		memory.Secrets{"a": "shadowed", "b": "from-second"},
	}

	value, err := chain.GetSecret(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "from-first", value)

	value, err = chain.GetSecret(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "from-second", value)

	value, err = chain.GetSecret(ctx, "c")
	require.NoError(t, err)
	assert.Empty(t, value)

	boom := errors.New("keychain locked")
	_, err = secrets.Chain{memory.Secrets{}, failingStore{boom}}.GetSecret(ctx, "a")
	assert.ErrorIs(t, err, boom)

	var _ core.SecretStore = chain
}
