package segment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agentwire/agentwire/asset"
	"github.com/agentwire/agentwire/core"
	"github.com/agentwire/agentwire/logging"
	"github.com/agentwire/agentwire/template"
)

// Options configures a Resolver.
type Options struct {
	// ToolText maps custom tool paths to canonical default text. A custom
	// tool with an entry here is inlined as text instead of emitting a tool
	// segment.
	ToolText map[string]string

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Resolver substitutes the placeholders of an objective into an ordered
// Segment list plus feature flags. It holds no per-call state; a single
// resolver is safe for concurrent Resolve calls.
type Resolver struct {
	assets   asset.Loader
	toolText map[string]string
	logger   logging.Logger
}

// NewResolver creates a resolver over the given asset loader.
func NewResolver(loader asset.Loader, optFns ...func(o *Options)) *Resolver {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Resolver{assets: loader, toolText: opts.ToolText, logger: opts.Logger}
}

// Resolve runs the substitution pass over the objective and returns the
// resolution, or a ValidationError joining every placeholder-level problem
// once the full pass has completed. No placeholder error short-circuits the
// pass; later placeholders are always processed.
//
// Segment order is a two-phase contract: segments pushed while substituting,
// in encounter order, followed by the trailing text / attachment segments of
// the substituted parts, in part order.
func (r *Resolver) Resolve(ctx context.Context, objective core.Content, params map[string]any) (Resolution, error) {
	start := time.Now()

	sess := &resolveSession{resolver: r, params: params}
	substituted, err := template.SubstituteContent(ctx, objective, sess)
	if err != nil {
		return Resolution{}, err
	}

	// Trailing pass: whatever survived substitution still has to travel.
	for _, part := range substituted.Parts {
		if tp, ok := part.(core.TextPart); ok {
			if tp.Text != "" {
				sess.segments = append(sess.segments, Text{Text: tp.Text})
			}
			continue
		}
		sess.segments = append(sess.segments, Input{
			Title:   "attachment",
			Content: core.Content{Role: objective.Role, Parts: []core.Part{part}},
		})
	}

	if len(sess.errors) > 0 {
		verr := &template.ValidationError{Messages: sess.errors}
		r.logger.Warn("objective resolution failed", "errors", len(sess.errors), "duration", time.Since(start))
		return Resolution{}, verr
	}

	r.logger.Debug("objective resolved", "segments", len(sess.segments), "duration", time.Since(start))
	return Resolution{Segments: sess.segments, UseNotebookLM: sess.useNotebookLM}, nil
}

// resolveSession carries the per-call state of one Resolve pass and acts as
// the traversal emitter.
type resolveSession struct {
	resolver      *Resolver
	params        map[string]any
	segments      []Segment
	errors        []string
	useNotebookLM bool
}

// Literal passes text spans through untouched; the resolver keeps text
// readable and lets the server own any re-encoding.
func (s *resolveSession) Literal(span string) string { return span }

// Placeholder dispatches one marker. Replacement text is what the marker
// becomes inside the surrounding text part; most markers substitute empty and
// push a segment instead.
func (s *resolveSession) Placeholder(ctx context.Context, p template.Placeholder) (string, error) {
	switch p.Kind {
	case template.KindAsset:
		return s.assetPlaceholder(ctx, p), nil
	case template.KindInput:
		return s.inputPlaceholder(p), nil
	case template.KindTool:
		return s.toolPlaceholder(p), nil
	default:
		// Unrecognized placeholder kinds vanish.
		return "", nil
	}
}

func (s *resolveSession) assetPlaceholder(ctx context.Context, p template.Placeholder) string {
	contents, err := s.resolver.assets.Load(ctx, p.Path)
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
	if contentReferencesNotebookLM(last) {
		s.useNotebookLM = true
	}
	s.segments = append(s.segments, Asset{Title: p.Title, Content: last})
	return ""
}

func (s *resolveSession) inputPlaceholder(p template.Placeholder) string {
	value, ok := s.params[template.NormalizeParamID(p.Path)]
	if !ok || value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		// Strings inline in place of the placeholder; no segment.
		return v
	case bool:
		if !v {
			return ""
		}
		s.errors = append(s.errors, fmt.Sprintf("Unknown param value type: %v", v))
		return p.Title
	case core.Content:
		s.pushInput(p.Title, v)
		return ""
	case []core.Content:
		if len(v) == 0 {
			return ""
		}
		// Only the last item of a multi-turn value travels.
		s.pushInput(p.Title, v[len(v)-1])
		return ""
	default:
		s.errors = append(s.errors, fmt.Sprintf("Unknown param value type: %v", v))
		return p.Title
	}
}

func (s *resolveSession) pushInput(title string, c core.Content) {
	if contentReferencesNotebookLM(c) {
		s.useNotebookLM = true
	}
	s.segments = append(s.segments, Input{Title: title, Content: c})
}

func (s *resolveSession) toolPlaceholder(p template.Placeholder) string {
	switch p.Path {
	case template.RouteToolPath:
		if p.Instance == "" {
			// Dropped silently: the server re-validates routes when it
			// converts segments to pidgin, so failing here would
			// double-report. The local pidgin encoder has no validator
			// behind it and fails instead.
			return ""
		}
		s.segments = append(s.segments, Tool{Path: p.Path, Title: p.Title, Instance: p.Instance})
		return ""
	case template.MemoryToolPath:
		s.segments = append(s.segments, Tool{Path: p.Path})
		return ""
	case template.NotebookLMToolPath:
		s.useNotebookLM = true
		s.segments = append(s.segments, Tool{Path: p.Path})
		return ""
	default:
		if text, ok := s.resolver.toolText[p.Path]; ok {
			return text
		}
		s.segments = append(s.segments, Tool{Path: p.Path, Title: p.Title})
		return ""
	}
}

// contentReferencesNotebookLM reports whether a content item carries a
// NotebookLM part, or mentions one in its text sub-parts (a notebook URL or
// an asset placeholder under the notebooklm/ namespace).
func contentReferencesNotebookLM(c core.Content) bool {
	for _, part := range c.Parts {
		if core.IsNotebookLMPart(part) {
			return true
		}
		tp, ok := part.(core.TextPart)
		if !ok {
			continue
		}
		if strings.Contains(tp.Text, core.NotebookLMURLPrefix) {
			return true
		}
		for _, ph := range template.Scan(tp.Text) {
			if ph.Kind == template.KindAsset && strings.HasPrefix(ph.Path, "notebooklm/") {
				return true
			}
		}
	}
	return false
}
