package secrets

import (
	"context"

	"github.com/aretw0/ghostpub/pkg/core"
)

// Chain asks each store in turn and returns the first non-empty secret.
// A backend failure stops the lookup.
type Chain []core.SecretStore

func (c Chain) GetSecret(ctx context.Context, name string) (string, error) {
	for _, store := range c {
		value, err := store.GetSecret(ctx, name)
		if err != nil {
			return "", err
		}
		if value != "" {
			return value, nil
		}
	}
	return "", nil
}

var _ core.SecretStore = Chain(nil)
