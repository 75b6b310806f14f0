package publish_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/ghostpub/pkg/ghost"
	"github.com/aretw0/ghostpub/pkg/publish"
)

const testUpdatedAt = "2024-05-01T10:00:00.000Z"

// fakeGhost is a minimal Admin API backed by a map of posts.
type fakeGhost struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	requests []string
	posts    map[string]ghost.Post
	inputs   []ghost.PostInput
	uploads  []string
	nextID   int

	// failUploads makes the upload endpoint answer with this status.
	failUploads int
}

func newFakeGhost(t *testing.T) *fakeGhost {
	t.Helper()
	g := &fakeGhost{t: t, posts: make(map[string]ghost.Post)}
	g.srv = httptest.NewServer(http.HandlerFunc(g.handle))
	t.Cleanup(g.srv.Close)
	return g
}

func (g *fakeGhost) URL() string {
	return g.srv.URL
}

func (g *fakeGhost) factory() publish.RemoteFactory {
	return func(baseURL string) publish.Remote {
		return ghost.NewClient(baseURL, ghost.WithHTTPClient(g.srv.Client()))
	}
}

func (g *fakeGhost) seed(p ghost.Post) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.posts[p.ID] = p
}

func (g *fakeGhost) Requests() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.requests...)
}

func (g *fakeGhost) LastInput() ghost.PostInput {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.inputs) == 0 {
		g.t.Fatal("no post payload received")
	}
	return g.inputs[len(g.inputs)-1]
}

func (g *fakeGhost) handle(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/ghost/api/admin/")
	g.requests = append(g.requests, r.Method+" "+path)

	if path != "site/" && !strings.HasPrefix(r.Header.Get("Authorization"), "Ghost ") {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	switch {
	case path == "site/" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"site": ghost.Site{Title: "Test Blog", URL: g.srv.URL, Version: "5.80"}})

	case path == "images/upload/" && r.Method == http.MethodPost:
		if g.failUploads != 0 {
			http.Error(w, "upload rejected", g.failUploads)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		g.uploads = append(g.uploads, r.FormValue("ref"))
		writeJSON(w, http.StatusCreated, map[string]any{"images": []ghost.Image{{
			URL: g.srv.URL + "/content/images/" + header.Filename,
			Ref: r.FormValue("ref"),
		}}})

	case path == "posts/" && r.Method == http.MethodPost:
		input, ok := g.decode(w, r)
		if !ok {
			return
		}
		g.nextID++
		post := ghost.Post{
			ID:        fmt.Sprintf("post-%d", g.nextID),
			Title:     input.Title,
			Slug:      input.Slug,
			Status:    input.Status,
			URL:       g.srv.URL + "/" + input.Slug + "/",
			UpdatedAt: testUpdatedAt,
		}
		g.posts[post.ID] = post
		writeJSON(w, http.StatusCreated, map[string]any{"posts": []ghost.Post{post}})

	case strings.HasPrefix(path, "posts/"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "posts/"), "/")
		post, exists := g.posts[id]
		if !exists {
			writeJSON(w, http.StatusNotFound, map[string]any{"errors": []map[string]string{{"message": "Post not found."}}})
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"posts": []ghost.Post{post}})
		case http.MethodPut:
			input, ok := g.decode(w, r)
			if !ok {
				return
			}
			if post.UpdatedAt != "" && input.UpdatedAt != post.UpdatedAt {
				http.Error(w, "Saving failed! Someone else is editing this post.", http.StatusConflict)
				return
			}
			post.Title = input.Title
			post.Slug = input.Slug
			post.UpdatedAt = "2024-06-01T12:00:00.000Z"
			g.posts[id] = post
			writeJSON(w, http.StatusOK, map[string]any{"posts": []ghost.Post{post}})
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}

	default:
		http.NotFound(w, r)
	}
}

func (g *fakeGhost) decode(w http.ResponseWriter, r *http.Request) (ghost.PostInput, bool) {
	var env struct {
		Posts []ghost.PostInput `json:"posts"`
	}
	data, _ := io.ReadAll(r.Body)
	if err := json.Unmarshal(data, &env); err != nil || len(env.Posts) != 1 {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return ghost.PostInput{}, false
	}
	g.inputs = append(g.inputs, env.Posts[0])
	return env.Posts[0], true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
