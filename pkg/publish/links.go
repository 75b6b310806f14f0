package publish

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/ghostpub/pkg/core"
	"github.com/aretw0/ghostpub/pkg/frontmatter"
	"github.com/aretw0/ghostpub/pkg/slug"
)

// wikiLinkPattern matches [[target#anchor|display]]. Embeds (a leading '!')
// are filtered after matching.
var wikiLinkPattern = regexp.MustCompile(`\[\[([^\[\]|#]+)(?:#([^\[\]|]*))?(?:\|([^\[\]]*))?\]\]`)

// wikiLink is one cross-reference token found in a body.
type wikiLink struct {
	start, end int
	target     string
	anchor     string
	display    string
}

func (l wikiLink) label() string {
	if l.display != "" {
		return l.display
	}
	return l.target
}

// scanWikiLinks returns link tokens in order of appearance, skipping embeds.
func scanWikiLinks(body string) []wikiLink {
	var links []wikiLink
	for _, m := range wikiLinkPattern.FindAllStringSubmatchIndex(body, -1) {
		if m[0] > 0 && body[m[0]-1] == '!' {
			continue
		}
		l := wikiLink{
			start:  m[0],
			end:    m[1],
			target: strings.TrimSpace(body[m[2]:m[3]]),
		}
		if m[4] >= 0 {
			l.anchor = strings.TrimSpace(body[m[4]:m[5]])
		}
		if m[6] >= 0 {
			l.display = strings.TrimSpace(body[m[6]:m[7]])
		}
		links = append(links, l)
	}
	return links
}

// LinkResolver rewrites wiki links into Markdown links pointing at the
// published URL of the target document.
type LinkResolver struct {
	vault core.Vault
}

// NewLinkResolver creates a resolver backed by vault.
func NewLinkResolver(vault core.Vault) *LinkResolver {
	return &LinkResolver{vault: vault}
}

// Resolve rewrites every link in body. All links are resolved before the
// body is touched; the first unresolvable one aborts with a resolution error.
func (r *LinkResolver) Resolve(ctx context.Context, body, sourcePath string) (string, error) {
	links := scanWikiLinks(body)
	if len(links) == 0 {
		return body, nil
	}

	reps := make([]replacement, 0, len(links))
	for _, l := range links {
		url, err := r.url(ctx, l, sourcePath)
		if err != nil {
			return "", err
		}
		reps = append(reps, replacement{
			start: l.start,
			end:   l.end,
			text:  fmt.Sprintf("[%s](%s)", l.label(), url),
		})
	}
	return applyReplacements(body, reps), nil
}

func (r *LinkResolver) url(ctx context.Context, l wikiLink, sourcePath string) (string, error) {
	target, ok := r.vault.ResolveLink(ctx, l.target, sourcePath)
	if !ok {
		return "", core.ResolutionError(core.ErrLinkUnresolved, "link [[%s]] in %s", l.target, sourcePath)
	}

	content, err := r.vault.ReadText(ctx, target)
	if err != nil {
		return "", core.ResolutionError(err, "failed to read linked document %s", target)
	}
	if !frontmatter.HasBlock(content) {
		return "", core.ResolutionError(core.ErrLinkNotPublished, "linked document %s has no frontmatter", target)
	}

	block, _ := frontmatter.Split(content)
	published, ok := frontmatter.ParseField(block, core.FieldPublishedURL)
	if !ok || published == "" {
		return "", core.ResolutionError(core.ErrLinkNotPublished, "linked document %s has no %s", target, core.FieldPublishedURL)
	}

	if l.anchor != "" {
		published += "#" + slug.Make(l.anchor)
	}
	return published, nil
}
