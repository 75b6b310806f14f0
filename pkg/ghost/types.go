// Package ghost talks to the Ghost Admin API: it mints admin tokens, reads and
// writes posts and uploads images.
package ghost

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Operation names carried by APIError.
const (
	OpSite        = "site"
	OpGetPost     = "get post"
	OpCreatePost  = "create post"
	OpUpdatePost  = "update post"
	OpUploadImage = "upload image"
)

// StatusPublished is the only post status this client writes.
const StatusPublished = "published"

// ErrPostNotFound matches an APIError for a post lookup that returned 404.
var ErrPostNotFound = errors.New("post not found")

// APIError is returned for any non-2xx response.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.Status, e.Body)
}

// Is lets errors.Is(err, ErrPostNotFound) match a 404 on a post lookup.
func (e *APIError) Is(target error) bool {
	return target == ErrPostNotFound && e.Op == OpGetPost && e.Status == http.StatusNotFound
}

// Site is the public metadata returned by the site endpoint.
type Site struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Version     string `json:"version"`
}

// Tag references a post tag by name.
type Tag struct {
	Name string `json:"name"`
}

// Post is the remote representation of a post.
type Post struct {
	ID            string `json:"id"`
	UUID          string `json:"uuid,omitempty"`
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	Status        string `json:"status"`
	Lexical       string `json:"lexical,omitempty"`
	URL           string `json:"url"`
	CustomExcerpt string `json:"custom_excerpt,omitempty"`
	Tags          []Tag  `json:"tags,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
	PublishedAt   string `json:"published_at,omitempty"`
}

// PostInput is the payload sent on create and update.
type PostInput struct {
	Title         string `json:"title"`
	Slug          string `json:"slug,omitempty"`
	Status        string `json:"status"`
	Lexical       string `json:"lexical"`
	Tags          []Tag  `json:"tags,omitempty"`
	CustomExcerpt string `json:"custom_excerpt,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// Image is an uploaded image as reported by the upload endpoint.
type Image struct {
	URL string `json:"url"`
	Ref string `json:"ref,omitempty"`
}

// Upload describes one image file to send.
type Upload struct {
	Name        string
	Ref         string
	ContentType string
	Data        []byte
}

type postsEnvelope struct {
	Posts []Post `json:"posts"`
}

type postInputEnvelope struct {
	Posts []PostInput `json:"posts"`
}

type imagesEnvelope struct {
	Images []Image `json:"images"`
}

type siteEnvelope struct {
	Site Site `json:"site"`
}

// lexical document holding a single markdown card.
type lexicalDocument struct {
	Root lexicalRoot `json:"root"`
}

type lexicalRoot struct {
	Children  []lexicalCard `json:"children"`
	Direction *string       `json:"direction"`
	Format    string        `json:"format"`
	Indent    int           `json:"indent"`
	Type      string        `json:"type"`
	Version   int           `json:"version"`
}

type lexicalCard struct {
	Type     string `json:"type"`
	Version  int    `json:"version"`
	Markdown string `json:"markdown"`
}

// MarkdownLexical wraps raw Markdown into the lexical envelope as one markdown card.
func MarkdownLexical(markdown string) (string, error) {
	doc := lexicalDocument{
		Root: lexicalRoot{
			Children: []lexicalCard{{Type: "markdown", Version: 1, Markdown: markdown}},
			Type:     "root",
			Version:  1,
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
