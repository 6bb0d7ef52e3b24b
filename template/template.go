// Package template implements the placeholder grammar embedded in objective
// text ({{kind:path|title|instance}}) and the substitution traversal shared by
// the segment resolver and the pidgin encoder. The traversal is parameterized
// by an Emitter so each encoder decides what a placeholder turns into; the
// walking order and strict sequencing live here, once.
package template

import (
	"context"
	"regexp"
	"strings"

	"github.com/agentwire/agentwire/core"
)

// Grammar: {{kind:path}}, {{kind:path|title}}, {{kind:path|title|instance}}.
// Kind is a bare word; path and the optional fields may not contain pipes or
// braces.
var placeholderRegexp = regexp.MustCompile(
	`\{\{\s*([A-Za-z][A-Za-z0-9_-]*)\s*:\s*([^|{}]*?)\s*(?:\|\s*([^|{}]*?)\s*)?(?:\|\s*([^|{}]*?)\s*)?\}\}`)

// Emitter decides what substitution produces. Literal transforms the text
// spans between placeholders (identity for the resolver, entity escaping for
// the pidgin encoder); Placeholder returns the replacement text for one
// marker and may record side effects (segments, registry entries, errors) on
// its receiver.
//
// Placeholder is invoked strictly sequentially, in encounter order. Emitters
// must not assume concurrency safety and the traversal guarantees never to
// resolve two placeholders at once; segment and route ordering depend on it.
type Emitter interface {
	Literal(span string) string
	Placeholder(ctx context.Context, p Placeholder) (string, error)
}

// Scan returns the placeholders of a text in encounter order without
// substituting anything. Used for nested reference scans.
func Scan(text string) []Placeholder {
	if !strings.Contains(text, "{{") { // fast path: no template markers
		return nil
	}
	matches := placeholderRegexp.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]Placeholder, 0, len(matches))
	for _, m := range matches {
		out = append(out, placeholderAt(text, m))
	}
	return out
}

// SubstituteContent rewrites every text part of the content through the
// emitter, leaving non-text parts untouched. Parts are visited in order and
// placeholders within a part in encounter order. The returned content is a
// fresh value; the input is never mutated.
//
// An error is only returned when the emitter itself fails (typically context
// cancellation); placeholder-level problems are the emitter's to collect.
func SubstituteContent(ctx context.Context, c core.Content, em Emitter) (core.Content, error) {
	out := core.Content{Role: c.Role, Parts: make([]core.Part, 0, len(c.Parts))}
	for _, part := range c.Parts {
		tp, ok := part.(core.TextPart)
		if !ok {
			out.Parts = append(out.Parts, part)
			continue
		}
		text, err := substituteText(ctx, tp.Text, em)
		if err != nil {
			return core.Content{}, err
		}
		out.Parts = append(out.Parts, core.TextPart{Text: text})
	}
	return out, nil
}

func substituteText(ctx context.Context, text string, em Emitter) (string, error) {
	if !strings.Contains(text, "{{") { // fast path: no template markers
		return em.Literal(text), nil
	}

	var b strings.Builder
	last := 0
	for _, m := range placeholderRegexp.FindAllStringSubmatchIndex(text, -1) {
		b.WriteString(em.Literal(text[last:m[0]]))
		repl, err := em.Placeholder(ctx, placeholderAt(text, m))
		if err != nil {
			return "", err
		}
		b.WriteString(repl)
		last = m[1]
	}
	b.WriteString(em.Literal(text[last:]))
	return b.String(), nil
}

// placeholderAt extracts a Placeholder from submatch indices, applying the
// title default.
func placeholderAt(text string, m []int) Placeholder {
	group := func(i int) string {
		if m[2*i] < 0 {
			return ""
		}
		return text[m[2*i]:m[2*i+1]]
	}
	p := Placeholder{
		Kind:     group(1),
		Path:     group(2),
		Title:    group(3),
		Instance: group(4),
	}
	p.Title = titleOrDefault(p.Title, p.Path)
	return p
}
