package memory

import (
	"context"

	"github.com/aretw0/ghostpub/pkg/core"
)

// Secrets is a fixed map of named secrets.
type Secrets map[string]string

func (s Secrets) GetSecret(_ context.Context, name string) (string, error) {
	return s[name], nil
}

var _ core.SecretStore = Secrets(nil)
