// Package core holds the domain types and ports of the publishing pipeline.
package core

import (
	"path"
	"strings"
	"time"
)

// Frontmatter keys that make up the Publish Record.
const (
	FieldTitle         = "title"
	FieldPostID        = "ghostPostId"
	FieldPublishedURL  = "publishedUrl"
	FieldPublishedDate = "publishedDate"
	FieldTags          = "ghostTags"
	FieldExcerpt       = "ghostExcerpt"
)

// PublishedDateLayout is the format written to publishedDate.
const PublishedDateLayout = "2006-01-02"

// Document is a unit of content identified by a vault-relative path.
type Document struct {
	Path string
	// Frontmatter is the raw metadata block, without delimiters.
	Frontmatter string
	Body        string
	// HasFrontmatter reports whether the source content carried a block at all.
	HasFrontmatter bool
}

// Name returns the file name without its .md extension.
func (d Document) Name() string {
	return strings.TrimSuffix(path.Base(d.Path), ".md")
}

// PublishRecord is the subset of frontmatter the publisher reads and writes.
type PublishRecord struct {
	Title         string   `json:"title,omitempty"`
	PostID        string   `json:"ghostPostId,omitempty"`
	PublishedURL  string   `json:"publishedUrl,omitempty"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	Tags          []string `json:"ghostTags,omitempty"`
	Excerpt       string   `json:"ghostExcerpt,omitempty"`
}

// Published reports whether the record points at a remote post.
func (r PublishRecord) Published() bool {
	return r.PostID != ""
}

// Entry is a listing row for a document inside the writing folder.
type Entry struct {
	Path         string        `json:"path"`
	Record       PublishRecord `json:"record"`
	LastModified time.Time     `json:"lastModified"`
}

// ChangeEventType represents the type of change observed on a document.
type ChangeEventType string

const (
	ChangeWrite  ChangeEventType = "WRITE"
	ChangeCreate ChangeEventType = "CREATE"
	ChangeRemove ChangeEventType = "REMOVE"
)

// ChangeEvent is emitted by watchers when a document changes on disk.
type ChangeEvent struct {
	Type      ChangeEventType
	Path      string
	Timestamp int64 // Unix timestamp
}

func (e ChangeEvent) String() string {
	return string(e.Type) + " " + e.Path
}
