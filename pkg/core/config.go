package core

import (
	"net/url"
	"path"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Default settings values.
const (
	DefaultAPIKeyName      = "ghost-admin-api-key"
	DefaultWritingFolder   = "writing"
	DefaultPublishedFolder = "published"
)

// Settings is the configuration a publish run is invoked with.
type Settings struct {
	// BlogURL is the public URL of the Ghost site, e.g. https://myblog.com.
	BlogURL string `yaml:"blog_url" json:"blog_url"`
	// APIKeyName names the secret holding the Admin API key ("id:secret").
	APIKeyName string `yaml:"api_key_name" json:"api_key_name"`
	// WritingFolder is the root folder of drafts and published posts.
	WritingFolder string `yaml:"writing_folder" json:"writing_folder"`
	// PublishedFolder is the subfolder of WritingFolder receiving published posts.
	PublishedFolder string `yaml:"published_folder" json:"published_folder"`
	// CommitChanges records the local rewrite in Git after a successful publish.
	CommitChanges bool `yaml:"commit_changes" json:"commit_changes"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		APIKeyName:      DefaultAPIKeyName,
		WritingFolder:   DefaultWritingFolder,
		PublishedFolder: DefaultPublishedFolder,
	}
}

// PublishedPath returns the vault-relative folder published documents live in.
func (s Settings) PublishedPath() string {
	folder := strings.Trim(s.PublishedFolder, "/")
	if folder == "" {
		folder = DefaultPublishedFolder
	}
	writing := strings.Trim(s.WritingFolder, "/")
	if writing == "" {
		return folder
	}
	return path.Join(writing, folder)
}

// BaseURL returns BlogURL without trailing slashes.
func (s Settings) BaseURL() string {
	return strings.TrimRight(strings.TrimSpace(s.BlogURL), "/")
}

// Validate checks the shape of the configured values. An empty BlogURL is
// accepted here and reported when a publish needs it.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.BlogURL, validation.By(func(value any) error {
			raw := strings.TrimSpace(value.(string))
			if raw == "" {
				return nil
			}
			u, err := url.Parse(raw)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return validation.NewError("settings.blog_url", "must be an http(s) URL")
			}
			return nil
		})),
		validation.Field(&s.WritingFolder, validation.By(folderRule)),
		validation.Field(&s.PublishedFolder, validation.By(folderRule)),
	)
}

func folderRule(value any) error {
	folder := strings.Trim(value.(string), "/")
	if folder == "" {
		return nil
	}
	if clean := path.Clean(folder); clean == ".." || strings.HasPrefix(clean, "../") {
		return validation.NewError("settings.folder", "must stay inside the vault")
	}
	return nil
}
