package frontmatter

import (
	"strings"

	"github.com/aretw0/ghostpub/pkg/core"
)

// Parse splits content into a core.Document at path.
func Parse(path, content string) core.Document {
	block, body := Split(content)
	return core.Document{
		Path:           path,
		Frontmatter:    block,
		Body:           body,
		HasFrontmatter: HasBlock(content),
	}
}

// Record reads the Publish Record fields out of a block.
func Record(block string) core.PublishRecord {
	get := func(name string) string {
		v, _ := ParseField(block, name)
		return v
	}
	return core.PublishRecord{
		Title:         get(core.FieldTitle),
		PostID:        get(core.FieldPostID),
		PublishedURL:  get(core.FieldPublishedURL),
		PublishedDate: get(core.FieldPublishedDate),
		Tags:          SplitTags(get(core.FieldTags)),
		Excerpt:       get(core.FieldExcerpt),
	}
}

// SplitTags parses a comma-separated tag list, dropping blanks and repeats.
func SplitTags(value string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, raw := range strings.Split(value, ",") {
		tag := strings.TrimSpace(raw)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}
