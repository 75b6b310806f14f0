package core

import (
	"path"
	"sort"
	"strings"
)

// IsMarkdown reports whether p names a Markdown document.
func IsMarkdown(p string) bool {
	return strings.EqualFold(path.Ext(p), ".md")
}

// IsUnder reports whether p lies inside folder (both vault-relative).
func IsUnder(p, folder string) bool {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return true
	}
	return strings.HasPrefix(strings.TrimPrefix(p, "/"), folder+"/")
}

// LinkCandidates lists the vault paths a link name may refer to when written
// in fromPath, most specific first: next to the source, then from the root.
// Names without an extension also try the .md form.
func LinkCandidates(name, fromPath string) []string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "/")
	if name == "" {
		return nil
	}

	forms := []string{name}
	if !hasFileExt(name) {
		forms = []string{name + ".md", name}
	}

	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		p = path.Clean(p)
		if strings.HasPrefix(p, "../") || p == ".." || seen[p] {
			return
		}
		seen[p] = true
		out = append(out, p)
	}

	if dir := path.Dir(fromPath); dir != "." && dir != "/" {
		for _, f := range forms {
			add(path.Join(dir, f))
		}
	}
	for _, f := range forms {
		add(f)
	}
	return out
}

// MatchByBase picks, among paths, the one whose base name matches the link
// name. Shorter paths win, ties are broken lexically.
func MatchByBase(name string, paths []string) (string, bool) {
	base := path.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == "/" {
		return "", false
	}
	want := map[string]bool{base: true}
	if !hasFileExt(base) {
		want[base+".md"] = true
	}

	var hits []string
	for _, p := range paths {
		if want[path.Base(p)] {
			hits = append(hits, p)
		}
	}
	if len(hits) == 0 {
		return "", false
	}
	sort.Slice(hits, func(i, j int) bool {
		if len(hits[i]) != len(hits[j]) {
			return len(hits[i]) < len(hits[j])
		}
		return hits[i] < hits[j]
	})
	return hits[0], true
}

// hasFileExt treats "Dr. Who" or "v1.2 notes" as extension-less note names.
func hasFileExt(name string) bool {
	ext := path.Ext(name)
	if len(ext) < 2 {
		return false
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
