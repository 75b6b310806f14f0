// Package publish turns a vault document into a Ghost post: it uploads local
// images, resolves wiki links, submits the post and records the result back
// into the document.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/ghostpub/pkg/core"
	"github.com/aretw0/ghostpub/pkg/frontmatter"
	"github.com/aretw0/ghostpub/pkg/ghost"
	"github.com/aretw0/ghostpub/pkg/slug"
)

// Remote is the subset of the Ghost Admin API the publisher drives.
type Remote interface {
	Uploader
	Site(ctx context.Context) (*ghost.Site, error)
	GetPost(ctx context.Context, token, id string) (*ghost.Post, error)
	CreatePost(ctx context.Context, token string, input ghost.PostInput) (*ghost.Post, error)
	UpdatePost(ctx context.Context, token, id string, input ghost.PostInput) (*ghost.Post, error)
}

// RemoteFactory builds a Remote for a blog base URL.
type RemoteFactory func(baseURL string) Remote

// Recorder is notified after a successful publish, e.g. to version the
// rewritten document. Its failures are logged and never fail the publish.
type Recorder interface {
	Record(ctx context.Context, res *Result) error
}

// Result describes a finished publish run.
type Result struct {
	RunID string
	// SourcePath is where the document was when the run started.
	SourcePath string
	// Path is where the document ended up.
	Path    string
	PostID  string
	URL     string
	Created bool
	// Stage is StageRelocated on success and StageFailed otherwise.
	Stage Stage
	// Reached is the last stage that completed.
	Reached  Stage
	Recorded bool
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRemote sets how the remote client is built.
func WithRemote(factory RemoteFactory) Option {
	return func(p *Publisher) {
		if factory != nil {
			p.newRemote = factory
		}
	}
}

// WithRecorder sets a hook run after each successful publish.
func WithRecorder(r Recorder) Option {
	return func(p *Publisher) {
		p.recorder = r
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

// Publisher runs the publish pipeline against a vault and a secret store.
type Publisher struct {
	vault     core.Vault
	secrets   core.SecretStore
	newRemote RemoteFactory
	recorder  Recorder
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.RWMutex
	stats runStats
}

// New creates a Publisher.
func New(vault core.Vault, secrets core.SecretStore, opts ...Option) *Publisher {
	p := &Publisher{
		vault:   vault,
		secrets: secrets,
		newRemote: func(baseURL string) Remote {
			return ghost.NewClient(baseURL)
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// run carries the state handed from one stage to the next.
type run struct {
	id       string
	settings core.Settings
	path     string
	log      *slog.Logger

	doc    core.Document
	record core.PublishRecord

	remote Remote
	token  string

	input ghost.PostInput

	post    *ghost.Post
	created bool

	finalPath string
}

type stage struct {
	name Stage
	fn   func(ctx context.Context, r *run) error
}

func (p *Publisher) pipeline() []stage {
	return []stage{
		{StageContentExtracted, p.extract},
		{StageAuthenticated, p.authenticate},
		{StageContentTransformed, p.transform},
		{StageSubmitted, p.submit},
		{StageLocalStateUpdated, p.updateLocal},
		{StageRelocated, p.relocate},
	}
}

// Publish publishes the document at docPath. The first failing stage aborts
// the run; remote effects of earlier stages are not undone. The returned
// error is classified into the core error taxonomy.
func (p *Publisher) Publish(ctx context.Context, settings core.Settings, docPath string) (*Result, error) {
	r := &run{
		id:       uuid.NewString(),
		settings: settings,
		path:     docPath,
	}
	r.log = p.logger.With("run", r.id, "path", docPath)
	p.begin(r)

	res := &Result{RunID: r.id, SourcePath: docPath, Stage: StageIdle, Reached: StageIdle}
	for _, st := range p.pipeline() {
		if err := st.fn(ctx, r); err != nil {
			err = core.Classify(err)
			res.Stage = StageFailed
			r.log.Error("publish failed",
				"stage", st.name.String(),
				"kind", string(core.KindOf(err)),
				"error", err)
			p.end(res, err)
			return res, err
		}
		res.Reached = st.name
		r.log.Debug("stage completed", "stage", st.name.String())
	}

	res.Stage = StageRelocated
	res.Path = r.finalPath
	res.PostID = r.post.ID
	res.URL = r.post.URL
	res.Created = r.created

	if p.recorder != nil {
		if err := p.recorder.Record(ctx, res); err != nil {
			r.log.Warn("failed to record publish", "error", err)
		} else {
			res.Recorded = true
		}
	}

	r.log.Info("published", "post", res.PostID, "url", res.URL, "created", res.Created, "final_path", res.Path)
	p.end(res, nil)
	return res, nil
}

func (p *Publisher) extract(ctx context.Context, r *run) error {
	if strings.TrimSpace(r.path) == "" {
		return core.ResolutionError(core.ErrNoActiveDocument, "nothing to publish")
	}
	if !core.IsMarkdown(r.path) {
		return core.ResolutionError(core.ErrNotMarkdown, "cannot publish %s", r.path)
	}

	content, err := p.vault.ReadText(ctx, r.path)
	if err != nil {
		return core.ResolutionError(err, "failed to read %s", r.path)
	}

	r.doc = frontmatter.Parse(r.path, content)
	r.record = frontmatter.Record(r.doc.Frontmatter)
	if r.record.Title == "" {
		r.record.Title = r.doc.Name()
	}
	return nil
}

func (p *Publisher) authenticate(ctx context.Context, r *run) error {
	baseURL := r.settings.BaseURL()
	if baseURL == "" {
		return core.ConfigurationError(core.ErrBlogURLMissing, "set blog_url before publishing")
	}
	keyName := strings.TrimSpace(r.settings.APIKeyName)
	if keyName == "" {
		return core.ConfigurationError(core.ErrAPIKeyNameMissing, "set api_key_name before publishing")
	}

	credential, err := p.secrets.GetSecret(ctx, keyName)
	if err != nil {
		return fmt.Errorf("failed to read secret %q: %w", keyName, err)
	}
	if credential == "" {
		return core.ConfigurationError(core.ErrCredentialMissing, "secret %q not found or empty", keyName)
	}

	token, err := ghost.MintToken(credential, p.now())
	if err != nil {
		return core.ConfigurationError(err, "secret %q is not a valid admin API key", keyName)
	}

	r.token = token
	r.remote = p.newRemote(baseURL)
	return nil
}

func (p *Publisher) transform(ctx context.Context, r *run) error {
	body, err := NewAssetUploader(p.vault, r.remote).Upload(ctx, r.doc.Body, r.token, r.path)
	if err != nil {
		return err
	}
	body, err = NewLinkResolver(p.vault).Resolve(ctx, body, r.path)
	if err != nil {
		return err
	}

	lexical, err := ghost.MarkdownLexical(body)
	if err != nil {
		return fmt.Errorf("failed to encode post content: %w", err)
	}

	var tags []ghost.Tag
	for _, name := range r.record.Tags {
		tags = append(tags, ghost.Tag{Name: name})
	}

	r.input = ghost.PostInput{
		Title:         r.record.Title,
		Slug:          slug.Make(r.record.Title),
		Status:        ghost.StatusPublished,
		Lexical:       lexical,
		Tags:          tags,
		CustomExcerpt: r.record.Excerpt,
	}
	return nil
}

func (p *Publisher) submit(ctx context.Context, r *run) error {
	if !r.record.Published() {
		post, err := r.remote.CreatePost(ctx, r.token, r.input)
		if err != nil {
			return core.RemoteError(err, "failed to create post")
		}
		r.post, r.created = post, true
		return checkPost(post)
	}

	id := r.record.PostID
	existing, err := r.remote.GetPost(ctx, r.token, id)
	if errors.Is(err, ghost.ErrPostNotFound) {
		return core.RemoteError(err, "post %s not found", id)
	}
	if err != nil {
		return core.RemoteError(err, "failed to fetch post %s", id)
	}

	input := r.input
	input.UpdatedAt = existing.UpdatedAt
	if input.UpdatedAt == "" {
		input.UpdatedAt = p.now().UTC().Format(ghostTimeLayout)
	}
	post, err := r.remote.UpdatePost(ctx, r.token, id, input)
	if err != nil {
		return core.RemoteError(err, "failed to update post %s", id)
	}
	r.post = post
	return checkPost(post)
}

// ghostTimeLayout is the timestamp format Ghost uses for updated_at.
const ghostTimeLayout = "2006-01-02T15:04:05.000Z07:00"

func checkPost(post *ghost.Post) error {
	if post == nil || post.ID == "" {
		return core.RemoteError(core.ErrUnexpectedResponse, "post response carries no id")
	}
	return nil
}

func (p *Publisher) updateLocal(ctx context.Context, r *run) error {
	block := r.doc.Frontmatter
	fresh := strings.TrimSpace(block) == ""
	if fresh {
		block = frontmatter.SetField("", core.FieldTitle, r.record.Title)
	}
	block = frontmatter.SetField(block, core.FieldPostID, r.post.ID)
	block = frontmatter.SetField(block, core.FieldPublishedURL, r.post.URL)
	if r.created || fresh {
		block = frontmatter.SetField(block, core.FieldPublishedDate, p.now().Format(core.PublishedDateLayout))
	}

	if err := p.vault.WriteText(ctx, r.path, frontmatter.Join(block, r.doc.Body)); err != nil {
		return fmt.Errorf("failed to write %s: %w", r.path, err)
	}
	return nil
}

func (p *Publisher) relocate(ctx context.Context, r *run) error {
	folder := r.settings.PublishedPath()
	if core.IsUnder(r.path, folder) {
		r.finalPath = r.path
		return nil
	}

	if err := p.vault.CreateFolder(ctx, folder); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("failed to create %s: %w", folder, err)
	}

	target := path.Join(folder, path.Base(r.path))
	if err := p.vault.Move(ctx, r.path, target); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", r.path, target, err)
	}
	r.finalPath = target
	return nil
}

// Probe checks that the configured blog answers the site endpoint.
func (p *Publisher) Probe(ctx context.Context, settings core.Settings) (*ghost.Site, error) {
	baseURL := settings.BaseURL()
	if baseURL == "" {
		return nil, core.ConfigurationError(core.ErrBlogURLMissing, "set blog_url before probing")
	}
	site, err := p.newRemote(baseURL).Site(ctx)
	if err != nil {
		return nil, core.RemoteError(err, "site probe of %s failed", baseURL)
	}
	return site, nil
}
