package publish

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/aretw0/ghostpub/pkg/core"
	"github.com/aretw0/ghostpub/pkg/ghost"
)

var (
	// ![alt](path) and ![alt](<path with spaces> "title")
	markdownImagePattern = regexp.MustCompile(`!\[([^\]]*)\]\((<[^>]+>|[^)\s]+)(?:\s+"[^"]*")?\)`)
	// ![[path|size]]
	wikiEmbedPattern = regexp.MustCompile(`!\[\[([^\[\]|]+)(?:\|[^\[\]]*)?\]\]`)
)

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// MimeType maps a file name to the content type sent on upload.
func MimeType(name string) string {
	if t, ok := mimeTypes[strings.ToLower(path.Ext(name))]; ok {
		return t
	}
	return "application/octet-stream"
}

// imageRef is one image token found in a body.
type imageRef struct {
	start, end int
	alt        string
	target     string
}

// scanImages merges the Markdown image pass and the wiki embed pass into a
// single list ordered by position. Remote images and note transclusions are
// left alone.
func scanImages(body string) []imageRef {
	var refs []imageRef

	for _, m := range markdownImagePattern.FindAllStringSubmatchIndex(body, -1) {
		target := strings.TrimSuffix(strings.TrimPrefix(body[m[4]:m[5]], "<"), ">")
		if isRemote(target) {
			continue
		}
		if unescaped, err := url.PathUnescape(target); err == nil {
			target = unescaped
		}
		refs = append(refs, imageRef{start: m[0], end: m[1], alt: body[m[2]:m[3]], target: target})
	}

	for _, m := range wikiEmbedPattern.FindAllStringSubmatchIndex(body, -1) {
		target := strings.TrimSpace(body[m[2]:m[3]])
		if ext := path.Ext(target); ext == "" || strings.EqualFold(ext, ".md") {
			continue
		}
		refs = append(refs, imageRef{start: m[0], end: m[1], target: target})
	}

	sort.SliceStable(refs, func(i, j int) bool { return refs[i].start < refs[j].start })
	return refs
}

func isRemote(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "data:")
}

// Uploader is the part of the remote client the AssetUploader needs.
type Uploader interface {
	UploadImage(ctx context.Context, token string, up ghost.Upload) (*ghost.Image, error)
}

// AssetUploader uploads local images referenced by a body and points the
// references at their remote copies.
type AssetUploader struct {
	vault  core.Vault
	remote Uploader
}

// NewAssetUploader creates an uploader reading from vault and sending to remote.
func NewAssetUploader(vault core.Vault, remote Uploader) *AssetUploader {
	return &AssetUploader{vault: vault, remote: remote}
}

type pendingUpload struct {
	ref    imageRef
	upload ghost.Upload
}

// Upload rewrites every local image in body. Every image is located and read
// before the first upload, so a missing file fails without remote traffic.
// Each token is uploaded once, even when two tokens name the same file.
func (u *AssetUploader) Upload(ctx context.Context, body, token, sourcePath string) (string, error) {
	refs := scanImages(body)
	if len(refs) == 0 {
		return body, nil
	}

	pending := make([]pendingUpload, 0, len(refs))
	for _, ref := range refs {
		resolved, ok := u.vault.ResolveLink(ctx, ref.target, sourcePath)
		if !ok {
			return "", core.ResolutionError(core.ErrImageNotFound, "image %s in %s", ref.target, sourcePath)
		}
		data, err := u.vault.ReadBinary(ctx, resolved)
		if err != nil {
			return "", core.ResolutionError(err, "failed to read image %s", resolved)
		}
		pending = append(pending, pendingUpload{
			ref: ref,
			upload: ghost.Upload{
				Name:        path.Base(resolved),
				Ref:         resolved,
				ContentType: MimeType(resolved),
				Data:        data,
			},
		})
	}

	reps := make([]replacement, 0, len(pending))
	for _, p := range pending {
		img, err := u.remote.UploadImage(ctx, token, p.upload)
		if err != nil {
			return "", core.RemoteError(err, "failed to upload image %s", p.upload.Ref)
		}
		reps = append(reps, replacement{
			start: p.ref.start,
			end:   p.ref.end,
			text:  fmt.Sprintf("![%s](%s)", p.ref.alt, img.URL),
		})
	}
	return applyReplacements(body, reps), nil
}
