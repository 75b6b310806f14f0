package ghost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

const (
	adminPath = "/ghost/api/admin/"

	// DefaultAcceptVersion is the Admin API version requested by the client.
	DefaultAcceptVersion = "v5.0"
)

// Client is a thin HTTP client for the Ghost Admin API.
type Client struct {
	baseURL       string
	http          *http.Client
	acceptVersion string
	userAgent     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithAcceptVersion overrides the Accept-Version header.
func WithAcceptVersion(version string) ClientOption {
	return func(c *Client) {
		c.acceptVersion = version
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the site at baseURL (e.g. https://myblog.com).
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		http:          &http.Client{Timeout: 60 * time.Second},
		acceptVersion: DefaultAcceptVersion,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the site URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Site fetches the unauthenticated site metadata.
func (c *Client) Site(ctx context.Context) (*Site, error) {
	var out siteEnvelope
	if err := c.doJSON(ctx, OpSite, http.MethodGet, "site/", "", nil, &out); err != nil {
		return nil, err
	}
	return &out.Site, nil
}

// GetPost fetches a post by ID. A 404 yields an error matching ErrPostNotFound.
func (c *Client) GetPost(ctx context.Context, token, id string) (*Post, error) {
	var out postsEnvelope
	if err := c.doJSON(ctx, OpGetPost, http.MethodGet, postPath(id), token, nil, &out); err != nil {
		return nil, err
	}
	return firstPost(OpGetPost, out)
}

// CreatePost creates a post from input.
func (c *Client) CreatePost(ctx context.Context, token string, input PostInput) (*Post, error) {
	var out postsEnvelope
	payload := postInputEnvelope{Posts: []PostInput{input}}
	if err := c.doJSON(ctx, OpCreatePost, http.MethodPost, "posts/", token, payload, &out); err != nil {
		return nil, err
	}
	return firstPost(OpCreatePost, out)
}

// UpdatePost replaces the post id with input. input.UpdatedAt must carry the
// post's last known modification time.
func (c *Client) UpdatePost(ctx context.Context, token, id string, input PostInput) (*Post, error) {
	var out postsEnvelope
	payload := postInputEnvelope{Posts: []PostInput{input}}
	if err := c.doJSON(ctx, OpUpdatePost, http.MethodPut, postPath(id), token, payload, &out); err != nil {
		return nil, err
	}
	return firstPost(OpUpdatePost, out)
}

// UploadImage sends one image as multipart form data and returns its remote URL.
func (c *Client) UploadImage(ctx context.Context, token string, up Upload) (*Image, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(up.Name)))
	header.Set("Content-Type", up.ContentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(up.Data); err != nil {
		return nil, fmt.Errorf("failed to write file part: %w", err)
	}
	if err := w.WriteField("ref", up.Ref); err != nil {
		return nil, fmt.Errorf("failed to write ref field: %w", err)
	}
	if err := w.WriteField("purpose", "image"); err != nil {
		return nil, fmt.Errorf("failed to write purpose field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	data, err := c.do(ctx, OpUploadImage, http.MethodPost, "images/upload/", token, &buf, w.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var out imagesEnvelope
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%s: invalid response: %w", OpUploadImage, err)
	}
	if len(out.Images) == 0 || out.Images[0].URL == "" {
		return nil, fmt.Errorf("%s: response contains no image", OpUploadImage)
	}
	return &out.Images[0], nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path, token string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	data, err := c.do(ctx, op, method, path, token, body, contentType)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: invalid response: %w", op, err)
	}
	return nil
}

// do sends one request and returns the response body of a 2xx reply.
func (c *Client) do(ctx context.Context, op, method, path, token string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+adminPath+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Ghost "+token)
	}
	if c.acceptVersion != "" {
		req.Header.Set("Accept-Version", c.acceptVersion)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}

func postPath(id string) string {
	return "posts/" + url.PathEscape(id) + "/"
}

func firstPost(op string, env postsEnvelope) (*Post, error) {
	if len(env.Posts) == 0 {
		return nil, fmt.Errorf("%s: response contains no post", op)
	}
	return &env.Posts[0], nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
