// Package frontmatter splits Markdown documents into their metadata block and
// body, and reads or rewrites individual `key: value` lines of that block.
//
// The codec is line-oriented: fields it does not touch keep their exact bytes
// and order.
package frontmatter

import (
	"regexp"
	"strings"
)

// Delimiter separates the frontmatter block from the body.
const Delimiter = "---"

// Split applies the document rule: with at least two delimiters, the text
// before the first is discarded, the text between the first two is the block
// and the remainder, rejoined on the delimiter, is the body. Otherwise the
// whole content is body. Both parts are trimmed.
func Split(content string) (block, body string) {
	parts := strings.Split(content, Delimiter)
	if len(parts) < 3 {
		return "", strings.TrimSpace(content)
	}
	block = strings.TrimSpace(parts[1])
	body = strings.TrimSpace(strings.Join(parts[2:], Delimiter))
	return block, body
}

// HasBlock reports whether content carries a frontmatter block under the Split rule.
func HasBlock(content string) bool {
	return strings.Count(content, Delimiter) >= 2
}

// ParseField returns the value of the first line starting with "name:".
// Surrounding whitespace and quote characters are stripped.
func ParseField(block, name string) (string, bool) {
	m := fieldPattern(name, `[ \t]*(.*)$`).FindStringSubmatch(block)
	if m == nil {
		return "", false
	}
	return strings.Trim(strings.TrimSpace(m[1]), `"'`), true
}

// SetField replaces the first "name:" line with "name: value", or appends
// that line when the field is absent. Other lines are left untouched and
// the block's line ending is kept.
func SetField(block, name, value string) string {
	line := name + ": " + value

	re := fieldPattern(name, `[^\r\n]*`)
	if loc := re.FindStringIndex(block); loc != nil {
		return block[:loc[0]] + line + block[loc[1]:]
	}

	eol := "\n"
	if strings.Contains(block, "\r\n") {
		eol = "\r\n"
	}
	if block != "" && !strings.HasSuffix(block, "\n") {
		block += eol
	}
	return block + line + eol
}

// Join renders a block and a body back into document content.
func Join(block, body string) string {
	var sb strings.Builder
	sb.WriteString(Delimiter)
	sb.WriteString("\n")
	if block = strings.TrimRight(block, "\r\n"); block != "" {
		sb.WriteString(block)
		sb.WriteString("\n")
	}
	sb.WriteString(Delimiter)
	sb.WriteString("\n")
	if body != "" {
		sb.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func fieldPattern(name, tail string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(name) + `:` + tail)
}
