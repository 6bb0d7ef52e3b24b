package pidgin

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/agentwire/agentwire/core"
	"github.com/agentwire/agentwire/template"
)

// Tag patterns for agent output. The split pattern isolates complete <file>
// and <a> tags; everything between them is plain text.
var (
	splitRegexp = regexp.MustCompile(`<file\s+src\s*=\s*"[^"]*"\s*/>|<a\s+href\s*=\s*"[^"]*"\s*>[^<]*</a>`)
	fileRegexp  = regexp.MustCompile(`^<file\s+src\s*=\s*"([^"]*)"\s*/>$`)
	linkRegexp  = regexp.MustCompile(`^<a\s+href\s*=\s*"([^"]*)"\s*>\s*([^<]*?)\s*</a>$`)
)

// FromPidginString resolves pidgin markup in agent output back to parts:
// <file src="..."> tags are resolved against the file registry, <a href>
// link tags reduce to their title text, and consecutive text parts are merged
// with newlines. Unresolvable references are collected across the whole
// string and joined into one ValidationError.
func FromPidginString(text string, files *FileRegistry) (core.Content, error) {
	var parts []core.Part
	var errs []string

	last := 0
	for _, m := range splitRegexp.FindAllStringIndex(text, -1) {
		if gap := text[last:m[0]]; gap != "" {
			parts = append(parts, core.TextPart{Text: gap})
		}
		last = m[1]

		tag := text[m[0]:m[1]]
		if fm := fileRegexp.FindStringSubmatch(tag); fm != nil {
			part, ok := files.Get(fm[1])
			if !ok {
				errs = append(errs, fmt.Sprintf("File not found: %s", fm[1]))
				continue
			}
			parts = append(parts, part)
			continue
		}
		if lm := linkRegexp.FindStringSubmatch(tag); lm != nil {
			parts = append(parts, core.TextPart{Text: strings.TrimSpace(lm[2])})
		}
	}
	if tail := text[last:]; tail != "" {
		parts = append(parts, core.TextPart{Text: tail})
	}

	if len(errs) > 0 {
		return core.Content{}, &template.ValidationError{Messages: errs}
	}
	return core.Content{Role: "user", Parts: mergeTextParts(parts, "\n")}, nil
}

// mergeTextParts merges consecutive text parts into a single text part.
// Non-text parts are left as-is.
func mergeTextParts(parts []core.Part, separator string) []core.Part {
	var merged []core.Part
	for _, part := range parts {
		tp, ok := part.(core.TextPart)
		if !ok {
			merged = append(merged, part)
			continue
		}
		if len(merged) > 0 {
			if prev, ok := merged[len(merged)-1].(core.TextPart); ok {
				merged[len(merged)-1] = core.TextPart{Text: prev.Text + separator + tp.Text}
				continue
			}
		}
		merged = append(merged, tp)
	}
	return merged
}
