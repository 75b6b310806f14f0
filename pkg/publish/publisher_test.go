package publish_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/ghostpub/pkg/adapters/memory"
	"github.com/aretw0/ghostpub/pkg/core"
	"github.com/aretw0/ghostpub/pkg/frontmatter"
	"github.com/aretw0/ghostpub/pkg/ghost"
	"github.com/aretw0/ghostpub/pkg/publish"
)

const testCredential = "key-id:a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90"

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	vault     *memory.Vault
	ghost     *fakeGhost
	settings  core.Settings
	publisher *publish.Publisher
}

func newFixture(t *testing.T, opts ...publish.Option) *fixture {
	t.Helper()
	g := newFakeGhost(t)
	v := memory.NewVault().
		Put("writing/Other.md", "---\ntitle: Other\npublishedUrl: https://blog.test/other/\n---\nother").
		PutBinary("writing/img/cat.png", []byte("PNG"))

	settings := core.DefaultSettings()
	settings.BlogURL = g.URL() + "/"

	base := []publish.Option{
		publish.WithRemote(g.factory()),
		publish.WithClock(func() time.Time { return fixedNow }),
	}
	return &fixture{
		vault:     v,
		ghost:     g,
		settings:  settings,
		publisher: publish.New(v, memory.Secrets{core.DefaultAPIKeyName: testCredential}, append(base, opts...)...),
	}
}

func lexicalMarkdown(t *testing.T, lexical string) string {
	t.Helper()
	var doc struct {
		Root struct {
			Children []struct {
				Markdown string `json:"markdown"`
			} `json:"children"`
		} `json:"root"`
	}
	require.NoError(t, json.Unmarshal([]byte(lexical), &doc))
	require.Len(t, doc.Root.Children, 1)
	return doc.Root.Children[0].Markdown
}

func TestPublish_Create(t *testing.T) {
	f := newFixture(t)
	original := "---\ntitle: Hello World\nghostTags: go, ghost, go\nghostExcerpt: \"Short\"\n---\n" +
		"See [[Other|the other one]].\n\n![A cat](img/cat.png)\n"
	f.vault.Put("writing/Hello.md", original)

	res, err := f.publisher.Publish(context.Background(), f.settings, "writing/Hello.md")
	require.NoError(t, err)

	assert.Equal(t, publish.StageRelocated, res.Stage)
	assert.Equal(t, publish.StageRelocated, res.Reached)
	assert.True(t, res.Created)
	assert.Equal(t, "post-1", res.PostID)
	assert.Equal(t, "writing/published/Hello.md", res.Path)
	assert.Equal(t, "writing/Hello.md", res.SourcePath)

	assert.Equal(t, []string{"POST images/upload/", "POST posts/"}, f.ghost.Requests())

	input := f.ghost.LastInput()
	assert.Equal(t, "Hello World", input.Title)
	assert.Equal(t, "hello-world", input.Slug)
	assert.Equal(t, ghost.StatusPublished, input.Status)
	assert.Equal(t, "Short", input.CustomExcerpt)
	assert.Equal(t, []ghost.Tag{{Name: "go"}, {Name: "ghost"}}, input.Tags)
	assert.Empty(t, input.UpdatedAt)

	markdown := lexicalMarkdown(t, input.Lexical)
	assert.Contains(t, markdown, "See [the other one](https://blog.test/other/).")
	assert.Contains(t, markdown, "![A cat]("+f.ghost.URL()+"/content/images/cat.png)")

	_, stillThere := f.vault.Get("writing/Hello.md")
	assert.False(t, stillThere)

	content, ok := f.vault.Get("writing/published/Hello.md")
	require.True(t, ok)
	block, body := frontmatter.Split(content)
	record := frontmatter.Record(block)
	assert.Equal(t, "post-1", record.PostID)
	assert.Equal(t, f.ghost.URL()+"/hello-world/", record.PublishedURL)
	assert.Equal(t, "2024-06-01", record.PublishedDate)
	assert.Contains(t, block, "ghostTags: go, ghost, go", "unrelated lines keep their bytes")

	// the local body keeps its original links and images
	assert.Equal(t, "See [[Other|the other one]].\n\n![A cat](img/cat.png)", body)

	assert.Equal(t, []string{
		"write writing/Hello.md",
		"mkdir writing/published",
		"move writing/Hello.md -> writing/published/Hello.md",
	}, f.vault.Ops())
}

func TestPublish_Update(t *testing.T) {
	f := newFixture(t)
	f.ghost.seed(ghost.Post{ID: "abc", Title: "Old", URL: "https://blog.test/old/", UpdatedAt: testUpdatedAt})
	original := "---\ntitle: New Title\nghostPostId: abc\npublishedUrl: https://blog.test/old/\npublishedDate: 2023-01-02\n---\nbody"
	f.vault.Put("writing/published/post.md", original)

	res, err := f.publisher.Publish(context.Background(), f.settings, "writing/published/post.md")
	require.NoError(t, err)

	assert.False(t, res.Created)
	assert.Equal(t, "abc", res.PostID)
	assert.Equal(t, []string{"GET posts/abc/", "PUT posts/abc/"}, f.ghost.Requests())

	input := f.ghost.LastInput()
	assert.Equal(t, testUpdatedAt, input.UpdatedAt)
	assert.Equal(t, "new-title", input.Slug)

	content, ok := f.vault.Get("writing/published/post.md")
	require.True(t, ok)
	record := frontmatter.Record(frontmatter.Parse("", content).Frontmatter)
	assert.Equal(t, "2023-01-02", record.PublishedDate, "update leaves publishedDate alone")
	assert.Equal(t, "abc", record.PostID)

	// already under the published folder: no folder creation, no move
	assert.Equal(t, []string{"write writing/published/post.md"}, f.vault.Ops())
}

func TestPublish_UpdateMissingRemotePost(t *testing.T) {
	f := newFixture(t)
	f.vault.Put("writing/post.md", "---\ntitle: T\nghostPostId: gone\n---\nbody")

	res, err := f.publisher.Publish(context.Background(), f.settings, "writing/post.md")
	require.Error(t, err)

	assert.Equal(t, publish.StageFailed, res.Stage)
	assert.Equal(t, publish.StageContentTransformed, res.Reached)
	assert.True(t, errors.Is(err, ghost.ErrPostNotFound))
	assert.Equal(t, core.KindRemote, core.KindOf(err))

	var apiErr *ghost.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	assert.Equal(t, []string{"GET posts/gone/"}, f.ghost.Requests(), "no PUT after a 404")
	assert.Empty(t, f.vault.Ops())
}

func TestPublish_UpdateWithoutRemoteTimestamp(t *testing.T) {
	f := newFixture(t)
	f.ghost.seed(ghost.Post{ID: "abc", UpdatedAt: ""})
	f.vault.Put("writing/post.md", "---\ntitle: T\nghostPostId: abc\n---\nbody")

	_, err := f.publisher.Publish(context.Background(), f.settings, "writing/post.md")
	require.NoError(t, err, "an empty remote updated_at falls back to now")
	assert.Equal(t, "2024-06-01T12:00:00.000Z", f.ghost.LastInput().UpdatedAt)
}

func TestPublish_NoFrontmatter(t *testing.T) {
	f := newFixture(t)
	f.vault.Put("writing/My Notes.md", "\n  Just a body.\n")

	res, err := f.publisher.Publish(context.Background(), f.settings, "writing/My Notes.md")
	require.NoError(t, err)
	assert.Equal(t, "My Notes", f.ghost.LastInput().Title)
	assert.Equal(t, "my-notes", f.ghost.LastInput().Slug)

	content, ok := f.vault.Get(res.Path)
	require.True(t, ok)
	expected := fmt.Sprintf("---\ntitle: My Notes\nghostPostId: post-1\npublishedUrl: %s/my-notes/\npublishedDate: 2024-06-01\n---\nJust a body.\n", f.ghost.URL())
	assert.Equal(t, expected, content)
}

func TestPublish_EmptyFrontmatter(t *testing.T) {
	f := newFixture(t)
	f.vault.Put("writing/Empty Block.md", "---\n---\nbody")

	res, err := f.publisher.Publish(context.Background(), f.settings, "writing/Empty Block.md")
	require.NoError(t, err)

	content, ok := f.vault.Get(res.Path)
	require.True(t, ok)
	expected := fmt.Sprintf("---\ntitle: Empty Block\nghostPostId: post-1\npublishedUrl: %s/empty-block/\npublishedDate: 2024-06-01\n---\nbody\n", f.ghost.URL())
	assert.Equal(t, expected, content)
}

func TestPublish_MissingImageSendsNothing(t *testing.T) {
	f := newFixture(t)
	f.vault.Put("writing/post.md", "---\ntitle: T\n---\n![x](img/cat.png) ![y](img/nope.png)")

	res, err := f.publisher.Publish(context.Background(), f.settings, "writing/post.md")
	require.Error(t, err)
	assert.Equal(t, publish.StageAuthenticated, res.Reached)
	assert.True(t, errors.Is(err, core.ErrImageNotFound))
	assert.Empty(t, f.ghost.Requests())
	assert.Empty(t, f.vault.Ops())
}

func TestPublish_UnpublishedLinkAborts(t *testing.T) {
	f := newFixture(t)
	f.vault.Put("writing/Draft.md", "---\ntitle: Draft\n---\n")
	f.vault.Put("writing/post.md", "---\ntitle: T\n---\n![x](img/cat.png) [[Draft]]")

	_, err := f.publisher.Publish(context.Background(), f.settings, "writing/post.md")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrLinkNotPublished))
	assert.Equal(t, core.KindResolution, core.KindOf(err))
	// images are processed first, so the upload already happened
	assert.Equal(t, []string{"POST images/upload/"}, f.ghost.Requests())
	assert.Empty(t, f.vault.Ops())
}

func TestPublish_UploadFailure(t *testing.T) {
	f := newFixture(t)
	f.ghost.failUploads = http.StatusUnsupportedMediaType
	f.vault.Put("writing/post.md", "---\ntitle: T\n---\n![x](img/cat.png)")

	_, err := f.publisher.Publish(context.Background(), f.settings, "writing/post.md")
	require.Error(t, err)
	assert.Equal(t, core.KindRemote, core.KindOf(err))

	var apiErr *ghost.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnsupportedMediaType, apiErr.Status)
	assert.Equal(t, "upload rejected", apiErr.Body)
}

func TestPublish_Preconditions(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		mutate   func(*core.Settings)
		secrets  memory.Secrets
		wantErr  error
		wantKind core.Kind
	}{
		{name: "no document", path: "", wantErr: core.ErrNoActiveDocument, wantKind: core.KindResolution},
		{name: "not markdown", path: "writing/img/cat.png", wantErr: core.ErrNotMarkdown, wantKind: core.KindResolution},
		{name: "missing file", path: "writing/absent.md", wantKind: core.KindResolution},
		{name: "no blog url", path: "writing/post.md", mutate: func(s *core.Settings) { s.BlogURL = " " }, wantErr: core.ErrBlogURLMissing, wantKind: core.KindConfiguration},
		{name: "no key name", path: "writing/post.md", mutate: func(s *core.Settings) { s.APIKeyName = "" }, wantErr: core.ErrAPIKeyNameMissing, wantKind: core.KindConfiguration},
		{name: "no credential", path: "writing/post.md", secrets: memory.Secrets{}, wantErr: core.ErrCredentialMissing, wantKind: core.KindConfiguration},
		{name: "malformed credential", path: "writing/post.md", secrets: memory.Secrets{core.DefaultAPIKeyName: "no-colon"}, wantErr: ghost.ErrMalformedCredential, wantKind: core.KindConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newFakeGhost(t)
			v := memory.NewVault().
				Put("writing/post.md", "---\ntitle: T\n---\nbody").
				PutBinary("writing/img/cat.png", []byte("PNG"))
			secrets := tt.secrets
			if secrets == nil {
				secrets = memory.Secrets{core.DefaultAPIKeyName: testCredential}
			}
			settings := core.DefaultSettings()
			settings.BlogURL = g.URL()
			if tt.mutate != nil {
				tt.mutate(&settings)
			}

			p := publish.New(v, secrets, publish.WithRemote(g.factory()))
			res, err := p.Publish(context.Background(), settings, tt.path)
			require.Error(t, err)
			assert.Equal(t, publish.StageFailed, res.Stage)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
			assert.Equal(t, tt.wantKind, core.KindOf(err))
			assert.NotEmpty(t, core.Summary(err))
			assert.Empty(t, g.Requests())
			assert.Empty(t, v.Ops())
		})
	}
}

type stubRecorder struct {
	results []*publish.Result
	err     error
}

func (r *stubRecorder) Record(_ context.Context, res *publish.Result) error {
	r.results = append(r.results, res)
	return r.err
}

func TestPublish_Recorder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		rec := &stubRecorder{}
		f := newFixture(t, publish.WithRecorder(rec))
		f.vault.Put("writing/post.md", "---\ntitle: T\n---\nbody")

		res, err := f.publisher.Publish(context.Background(), f.settings, "writing/post.md")
		require.NoError(t, err)
		assert.True(t, res.Recorded)
		require.Len(t, rec.results, 1)
		assert.Equal(t, "writing/published/post.md", rec.results[0].Path)
	})

	t.Run("failure does not fail the publish", func(t *testing.T) {
		rec := &stubRecorder{err: errors.New("git unavailable")}
		f := newFixture(t, publish.WithRecorder(rec))
		f.vault.Put("writing/post.md", "---\ntitle: T\n---\nbody")

		res, err := f.publisher.Publish(context.Background(), f.settings, "writing/post.md")
		require.NoError(t, err)
		assert.False(t, res.Recorded)
	})

	t.Run("not called on failure", func(t *testing.T) {
		rec := &stubRecorder{}
		f := newFixture(t, publish.WithRecorder(rec))

		_, err := f.publisher.Publish(context.Background(), f.settings, "writing/absent.md")
		require.Error(t, err)
		assert.Empty(t, rec.results)
	})
}

func TestPublish_State(t *testing.T) {
	f := newFixture(t)
	f.vault.Put("writing/post.md", "---\ntitle: T\n---\nbody")

	_, err := f.publisher.Publish(context.Background(), f.settings, "writing/post.md")
	require.NoError(t, err)
	_, err = f.publisher.Publish(context.Background(), f.settings, "writing/absent.md")
	require.Error(t, err)

	state, ok := f.publisher.State().(publish.PublisherState)
	require.True(t, ok)
	assert.Equal(t, 2, state.Runs)
	assert.Equal(t, 1, state.Failures)
	require.NotNil(t, state.LastRun)
	assert.Equal(t, publish.StageFailed, state.LastRun.Stage)
	assert.Equal(t, core.KindResolution, state.LastRun.ErrorKind)
	assert.Equal(t, "publisher", f.publisher.ComponentType())

	data, err := json.Marshal(state)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"stage":"failed"`))
}

func TestProbe(t *testing.T) {
	f := newFixture(t)

	site, err := f.publisher.Probe(context.Background(), f.settings)
	require.NoError(t, err)
	assert.Equal(t, "Test Blog", site.Title)
	assert.Equal(t, []string{"GET site/"}, f.ghost.Requests())

	_, err = f.publisher.Probe(context.Background(), core.Settings{})
	assert.Equal(t, core.KindConfiguration, core.KindOf(err))
}
