package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/ghostpub/pkg/core"
)

// ConfigFile is the settings file looked up at the vault root.
const ConfigFile = ".ghostpub.yaml"

// Environment variables overriding the settings file.
const (
	EnvBlogURL         = "GHOSTPUB_BLOG_URL"
	EnvAPIKeyName      = "GHOSTPUB_API_KEY_NAME"
	EnvWritingFolder   = "GHOSTPUB_WRITING_FOLDER"
	EnvPublishedFolder = "GHOSTPUB_PUBLISHED_FOLDER"
	EnvCommitChanges   = "GHOSTPUB_COMMIT_CHANGES"
)

// LoadSettings resolves settings from defaults, then the vault's settings
// file, then the environment. A nil getenv means os.Getenv.
func LoadSettings(root string, getenv func(string) string) (core.Settings, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	settings := core.DefaultSettings()

	path := filepath.Join(root, ConfigFile)
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return settings, fmt.Errorf("failed to read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return settings, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	for env, field := range map[string]*string{
		EnvBlogURL:         &settings.BlogURL,
		EnvAPIKeyName:      &settings.APIKeyName,
		EnvWritingFolder:   &settings.WritingFolder,
		EnvPublishedFolder: &settings.PublishedFolder,
	} {
		if v := strings.TrimSpace(getenv(env)); v != "" {
			*field = v
		}
	}
	if v := strings.TrimSpace(getenv(EnvCommitChanges)); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return settings, fmt.Errorf("invalid %s: %w", EnvCommitChanges, err)
		}
		settings.CommitChanges = enabled
	}

	return settings, nil
}

// merge applies the non-empty string fields of overlay onto base.
func merge(base, overlay core.Settings) core.Settings {
	if overlay.BlogURL != "" {
		base.BlogURL = overlay.BlogURL
	}
	if overlay.APIKeyName != "" {
		base.APIKeyName = overlay.APIKeyName
	}
	if overlay.WritingFolder != "" {
		base.WritingFolder = overlay.WritingFolder
	}
	if overlay.PublishedFolder != "" {
		base.PublishedFolder = overlay.PublishedFolder
	}
	return base
}
