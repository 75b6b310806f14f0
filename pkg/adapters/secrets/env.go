// Package secrets provides core.SecretStore backends.
package secrets

import (
	"context"
	"os"
	"strings"

	"github.com/aretw0/ghostpub/pkg/core"
)

// EnvPrefix is prepended to secret names to form environment variable names.
const EnvPrefix = "GHOSTPUB_SECRET_"

// Env reads secrets from environment variables: "ghost-admin-api-key" is
// looked up as GHOSTPUB_SECRET_GHOST_ADMIN_API_KEY.
type Env struct {
	// Lookup defaults to os.LookupEnv.
	Lookup func(key string) (string, bool)
}

// EnvKey returns the variable name holding the secret called name.
func EnvKey(name string) string {
	var sb strings.Builder
	sb.WriteString(EnvPrefix)
	for _, r := range strings.ToUpper(strings.TrimSpace(name)) {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

func (e Env) GetSecret(_ context.Context, name string) (string, error) {
	lookup := e.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	value, _ := lookup(EnvKey(name))
	return strings.TrimSpace(value), nil
}

var _ core.SecretStore = Env{}
