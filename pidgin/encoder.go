// Package pidgin implements the flattened textual encoding of conversational
// content consumed by a text-only agent. It is the single source of truth for
// the pidgin vocabulary — the XML-like tags (<asset>, <input>, <file>,
// <content>, <a>) — in both directions: encoding objectives or wire segments
// into pidgin text, and resolving pidgin tags in agent output back into parts.
package pidgin

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/agentwire/agentwire/asset"
	"github.com/agentwire/agentwire/core"
	"github.com/agentwire/agentwire/logging"
	"github.com/agentwire/agentwire/segment"
	"github.com/agentwire/agentwire/template"
)

// MaxInlineCharacterLength is the threshold above which text parts are
// written to the file registry and referenced as <content src="..."> instead
// of traveling inline only.
const MaxInlineCharacterLength = 1000

// Options configures an Encoder.
type Options struct {
	// Files is the content-addressed attachment registry. Shared across
	// encode calls on purpose: its keys are content fingerprints, not
	// call-scoped state. Defaults to a fresh registry.
	Files *FileRegistry

	// ToolText maps custom tool paths to canonical default text.
	ToolText map[string]string

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Encoder flattens content into pidgin text. It owns the file registry and
// allocates a fresh route registry per encode call; the most recent call's
// routes remain queryable via OriginalRoute.
type Encoder struct {
	assets   asset.Loader
	files    *FileRegistry
	toolText map[string]string
	logger   logging.Logger

	mu         sync.Mutex
	lastRoutes *routeRegistry
}

// NewEncoder creates an encoder over the given asset loader.
func NewEncoder(loader asset.Loader, optFns ...func(o *Options)) *Encoder {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Files == nil {
		opts.Files = NewFileRegistry()
	}
	return &Encoder{assets: loader, files: opts.Files, toolText: opts.ToolText, logger: opts.Logger}
}

// Files exposes the encoder's attachment registry (the agent loop resolves
// references against it, see FromPidginString).
func (e *Encoder) Files() *FileRegistry { return e.files }

// Result is the outcome of flattening an objective to pidgin text.
type Result struct {
	Text          string
	UseNotebookLM bool
}

// ToPidgin substitutes the objective's placeholders and flattens the result
// into pidgin text. Literal text is HTML-entity-escaped before embedding so
// it can never be mistaken for vocabulary tags. All placeholder-level errors
// are collected over the full pass and joined into one ValidationError;
// unlike the segment resolver, a route placeholder without an instance id is
// an error here (nothing downstream re-validates the local path).
func (e *Encoder) ToPidgin(ctx context.Context, content core.Content, params map[string]any, textAsFiles bool) (Result, error) {
	start := time.Now()

	sess := &encodeSession{
		encoder:     e,
		params:      params,
		routes:      newRouteRegistry(),
		textAsFiles: textAsFiles,
	}
	substituted, err := template.SubstituteContent(ctx, content, sess)
	if err != nil {
		return Result{}, err
	}
	text := sess.content(substituted, textAsFiles)

	// Publish this call's routes for reverse lookup.
	e.mu.Lock()
	e.lastRoutes = sess.routes
	e.mu.Unlock()

	if len(sess.errors) > 0 {
		verr := &template.ValidationError{Messages: sess.errors}
		e.logger.Warn("pidgin encoding failed", "errors", len(sess.errors), "duration", time.Since(start))
		return Result{}, verr
	}

	e.logger.Debug("pidgin encoding completed", "chars", len(text), "duration", time.Since(start))
	return Result{Text: text, UseNotebookLM: sess.useNotebookLM}, nil
}

// ContentToPidginString renders one content item to pidgin text, one line per
// part, lines joined by newline. Text parts above MaxInlineCharacterLength
// are registered in the file registry and wrapped in <content> tags — both
// the reference and the full literal text are present — unless textAsFiles is
// false, in which case text always inlines regardless of length. Binary,
// stored and file parts become <file> tags; NotebookLM parts bypass the
// registry and pass through as raw links.
func (e *Encoder) ContentToPidginString(c core.Content, textAsFiles bool) string {
	sess := &encodeSession{encoder: e, textAsFiles: textAsFiles}
	return sess.content(c, textAsFiles)
}

// OriginalRoute resolves a /route-N tag from the most recent encode call back
// to the caller-supplied route instance id.
func (e *Encoder) OriginalRoute(tag string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastRoutes == nil {
		return "", false
	}
	return e.lastRoutes.Lookup(tag)
}

// encodeSession carries the per-call state of one encode pass and acts as the
// traversal emitter.
type encodeSession struct {
	encoder       *Encoder
	params        map[string]any
	routes        *routeRegistry
	textAsFiles   bool
	errors        []string
	useNotebookLM bool
}

// Literal entity-escapes the text spans between placeholders.
func (s *encodeSession) Literal(span string) string { return html.EscapeString(span) }

// Placeholder rewrites one marker into its pidgin text.
func (s *encodeSession) Placeholder(ctx context.Context, p template.Placeholder) (string, error) {
	switch p.Kind {
	case template.KindAsset:
		return s.assetPlaceholder(ctx, p), nil
	case template.KindInput:
		return s.inputPlaceholder(p), nil
	case template.KindTool:
		return s.toolPlaceholder(p), nil
	default:
		return "", nil
	}
}

func (s *encodeSession) assetPlaceholder(ctx context.Context, p template.Placeholder) string {
	contents, err := s.encoder.assets.Load(ctx, p.Path)
	if err != nil {
		s.errors = append(s.errors, err.Error())
		return ""
	}
	if len(contents) == 0 {
		s.errors = append(s.errors, "Invalid asset format")
		return ""
	}
	last := contents[len(contents)-1]
	if len(last.Parts) == 0 {
		s.errors = append(s.errors, "Invalid asset format")
		return ""
	}
	return fmt.Sprintf("<asset title=\"%s\">\n%s\n</asset>", p.Title, s.content(last, s.textAsFiles))
}

func (s *encodeSession) inputPlaceholder(p template.Placeholder) string {
	value, ok := s.params[template.NormalizeParamID(p.Path)]
	if !ok || value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return html.EscapeString(v)
	case bool:
		if !v {
			return ""
		}
		s.errors = append(s.errors, fmt.Sprintf("Unknown param value type: %v", v))
		return html.EscapeString(p.Title)
	case core.Content:
		return s.inputContent(p.Title, v)
	case []core.Content:
		if len(v) == 0 {
			return ""
		}
		return s.inputContent(p.Title, v[len(v)-1])
	default:
		s.errors = append(s.errors, fmt.Sprintf("Unknown param value type: %v", v))
		return html.EscapeString(p.Title)
	}
}

func (s *encodeSession) inputContent(title string, c core.Content) string {
	return fmt.Sprintf("<input source-agent=\"%s\">\n%s\n</input>", title, s.content(c, s.textAsFiles))
}

func (s *encodeSession) toolPlaceholder(p template.Placeholder) string {
	switch p.Path {
	case template.RouteToolPath:
		if p.Instance == "" {
			s.errors = append(s.errors, "Malformed route, missing instance param")
			return ""
		}
		tag := s.routes.Add(p.Instance)
		return fmt.Sprintf("<a href=\"%s\">%s</a>", tag, html.EscapeString(p.Title))
	case template.MemoryToolPath:
		return "Use Memory"
	case template.NotebookLMToolPath:
		s.useNotebookLM = true
		return "Use NotebookLM"
	default:
		if text, ok := s.encoder.toolText[p.Path]; ok {
			return html.EscapeString(text)
		}
		return fmt.Sprintf("Use tool: %s", p.Path)
	}
}

// content flattens one content item, one line per part.
func (s *encodeSession) content(c core.Content, textAsFiles bool) string {
	var lines []string
	for _, part := range c.Parts {
		if tp, ok := part.(core.TextPart); ok {
			if tp.Text == "" {
				continue
			}
			if textAsFiles && len(tp.Text) > MaxInlineCharacterLength {
				ref := s.encoder.files.Register(tp.Text, tp)
				lines = append(lines, fmt.Sprintf("<content src=\"%s\">\n%s</content>", ref, tp.Text))
				continue
			}
			lines = append(lines, tp.Text)
			continue
		}
		if line := s.dataPart(part); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// dataPart renders one non-text part: NotebookLM references pass through as
// raw link text, everything else registers (or reuses) a file reference.
func (s *encodeSession) dataPart(part core.Part) string {
	if core.IsNotebookLMPart(part) {
		s.useNotebookLM = true
		switch v := part.(type) {
		case core.StoredDataPart:
			return v.Handle
		case core.FileDataPart:
			return v.FileURI
		}
	}
	fingerprint, ok := Fingerprint(part)
	if !ok {
		return "" // control markers contribute nothing
	}
	ref := s.encoder.files.Register(fingerprint, part)
	return fmt.Sprintf("<file src=\"%s\" />", ref)
}

// SegmentsResult is the outcome of converting wire segments to pidgin text
// (the server side of the remote path).
type SegmentsResult struct {
	Text          string
	UseMemory     bool
	UseNotebookLM bool
	CustomTools   []ToolRef
}

// ToolRef records a custom tool reference for server-side loading.
type ToolRef struct {
	URL   string
	Title string
}

// EncodeSegments converts structured wire segments to pidgin text: registers
// attachment parts in the file registry and emits all vocabulary tags. The
// useNotebookLM argument is the runtime flag sent alongside the segments; the
// result flag is that value or'ed with whatever the segments themselves
// reveal. Errors are collected across the whole list and joined.
func (e *Encoder) EncodeSegments(segments []segment.Segment, useNotebookLM bool) (SegmentsResult, error) {
	sess := &encodeSession{
		encoder:       e,
		routes:        newRouteRegistry(),
		textAsFiles:   true,
		useNotebookLM: useNotebookLM,
	}

	var values []string
	var useMemory bool
	var customTools []ToolRef

	for _, seg := range segments {
		switch v := seg.(type) {
		case segment.Text:
			if v.Text != "" {
				values = append(values, v.Text)
			}
		case segment.Asset:
			if len(v.Content.Parts) == 0 {
				sess.errors = append(sess.errors, "Invalid asset format")
				continue
			}
			values = append(values, fmt.Sprintf("<asset title=\"%s\">\n%s\n</asset>", v.Title, sess.content(v.Content, true)))
		case segment.Input:
			if len(v.Content.Parts) == 0 {
				continue
			}
			values = append(values, fmt.Sprintf("<input source-agent=\"%s\">\n%s\n</input>", v.Title, sess.content(v.Content, true)))
		case segment.Tool:
			switch v.Path {
			case template.RouteToolPath:
				if v.Instance == "" {
					sess.errors = append(sess.errors, "Malformed route, missing instance param")
					continue
				}
				tag := sess.routes.Add(v.Instance)
				values = append(values, fmt.Sprintf("<a href=\"%s\">%s</a>", tag, v.Title))
			case template.MemoryToolPath:
				useMemory = true
				values = append(values, "Use Memory")
			case template.NotebookLMToolPath:
				sess.useNotebookLM = true
				values = append(values, "Use NotebookLM")
			default:
				// Custom tool: recorded for server-side loading, no text.
				customTools = append(customTools, ToolRef{URL: v.Path, Title: v.Title})
			}
		default:
			sess.errors = append(sess.errors, fmt.Sprintf("Unknown segment type: %T", seg))
		}
	}

	e.mu.Lock()
	e.lastRoutes = sess.routes
	e.mu.Unlock()

	if len(sess.errors) > 0 {
		return SegmentsResult{}, &template.ValidationError{Messages: sess.errors}
	}
	return SegmentsResult{
		Text:          strings.Join(values, ""),
		UseMemory:     useMemory,
		UseNotebookLM: sess.useNotebookLM,
		CustomTools:   customTools,
	}, nil
}
