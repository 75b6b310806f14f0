package ghost

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token parameters required by the Admin API.
const (
	TokenAudience = "/admin/"
	TokenValidity = 5 * time.Minute
)

// ErrMalformedCredential is returned when an Admin API key is not "id:secret".
var ErrMalformedCredential = errors.New("admin API key must have the form id:secret")

// MintToken signs a short-lived Admin API token from an "id:secret" key,
// where secret is hex encoded. Tokens are valid for TokenValidity from now.
func MintToken(credential string, now time.Time) (string, error) {
	parts := strings.Split(strings.TrimSpace(credential), ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", ErrMalformedCredential
	}

	secret, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("%w: secret is not hex encoded: %v", ErrMalformedCredential, err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(TokenValidity).Unix(),
		"aud": TokenAudience,
	})
	token.Header["kid"] = parts[0]

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
