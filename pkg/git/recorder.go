package git

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aretw0/ghostpub/pkg/publish"
)

// Recorder commits the rewritten (and possibly relocated) document after a
// publish. It implements publish.Recorder.
type Recorder struct {
	client *Client
}

// NewRecorder creates a Recorder committing through client.
func NewRecorder(client *Client) *Recorder {
	return &Recorder{client: client}
}

// Record stages the document at its new path, drops the old path from the
// index when it moved, and commits both. Nothing is committed when the
// document is unchanged.
func (r *Recorder) Record(ctx context.Context, res *publish.Result) error {
	if !r.client.IsRepo(ctx) {
		return fmt.Errorf("%s is not a git work tree", r.client.WorkDir)
	}

	unlock, err := r.client.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	paths := []string{res.Path}
	if res.SourcePath != "" && res.SourcePath != res.Path && r.client.Tracked(ctx, res.SourcePath) {
		if err := r.client.Forget(ctx, res.SourcePath); err != nil {
			return err
		}
		paths = append(paths, res.SourcePath)
	}
	if err := r.client.Add(ctx, res.Path); err != nil {
		return err
	}

	changed, err := r.client.HasStagedChanges(ctx, paths...)
	if err != nil {
		return err
	}
	if !changed {
		r.client.Logger.Debug("nothing to commit", "path", res.Path)
		return nil
	}

	if err := r.client.Commit(ctx, CommitMessage(res), paths...); err != nil {
		return err
	}
	r.client.Logger.Info("publish recorded", "path", res.Path, "post", res.PostID)
	return nil
}

// CommitMessage describes a publish result as a docs(publish) commit.
func CommitMessage(res *publish.Result) string {
	name := strings.TrimSuffix(path.Base(res.Path), path.Ext(res.Path))
	verb := "update"
	if res.Created {
		verb = "publish"
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Post: %s\n", res.PostID)
	if res.URL != "" {
		fmt.Fprintf(&body, "URL: %s\n", res.URL)
	}
	if res.SourcePath != res.Path {
		fmt.Fprintf(&body, "Moved: %s -> %s\n", res.SourcePath, res.Path)
	}
	return FormatCommitMessage(CommitTypeDocs, "publish", verb+" "+name, body.String())
}

var _ publish.Recorder = (*Recorder)(nil)
