package fs

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/aretw0/ghostpub/pkg/core"
	"github.com/aretw0/ghostpub/pkg/frontmatter"
)

// Index lists the Markdown documents under folder with their publish record.
//
// Strategy:
//  1. Load the persisted index from the system directory.
//  2. Walk folder, skipping ignored paths.
//  3. Reuse the cached record when the file mtime is unchanged, parse otherwise.
//  4. Prune vanished entries under folder and save the index back.
func (v *Vault) Index(ctx context.Context, folder string) ([]core.Entry, error) {
	if err := v.cache.Load(); err != nil {
		v.logger.Warn("index unreadable, rebuilding", "path", v.cache.Path, "error", err)
	}

	paths, err := v.walk(folder, core.IsMarkdown)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(paths))
	entries := make([]core.Entry, 0, len(paths))
	hits := 0
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(filepath.Join(v.Root, filepath.FromSlash(rel)))
		if err != nil {
			continue
		}
		mtime := info.ModTime()
		seen[rel] = true

		if cached, hit := v.cache.Get(rel, mtime); hit {
			hits++
			entries = append(entries, core.Entry{Path: rel, Record: cached.Record, LastModified: mtime})
			continue
		}

		content, err := v.ReadText(ctx, rel)
		if err != nil {
			v.logger.Debug("skipping unreadable document", "path", rel, "error", err)
			continue
		}
		doc := frontmatter.Parse(rel, content)
		record := frontmatter.Record(doc.Frontmatter)
		if record.Title == "" {
			record.Title = doc.Name()
		}
		v.cache.Set(rel, &indexEntry{Record: record, LastModified: mtime})
		entries = append(entries, core.Entry{Path: rel, Record: record, LastModified: mtime})
	}

	v.cache.Prune(folder, seen)
	if err := v.cache.Save(); err != nil {
		v.logger.Warn("failed to save index", "path", v.cache.Path, "error", err)
	}
	v.recordIndex(len(entries))
	v.logger.Debug("index built", "folder", folder, "documents", len(entries), "cache_hits", hits)

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

func (v *Vault) recordIndex(size int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	now := time.Now()
	v.lastIndex = &now
	v.lastIndexSize = size
}

var _ core.Indexer = (*Vault)(nil)
