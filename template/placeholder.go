package template

import "strings"

// Placeholder kinds understood by the encoders. Any other kind still parses
// so the traversal can drop it (unrecognized placeholders substitute empty).
const (
	// KindAsset references a stored asset by path.
	KindAsset = "asset"
	// KindInput references a named parameter.
	KindInput = "in"
	// KindTool references a tool by path.
	KindTool = "tool"
)

// Well-known tool paths. Anything else under KindTool is a custom tool.
const (
	// RouteToolPath is the control-flow routing tool; its placeholder carries
	// a route instance id.
	RouteToolPath = "control-flow/routing"
	// MemoryToolPath enables agent memory.
	MemoryToolPath = "function-group/use-memory"
	// NotebookLMToolPath enables NotebookLM grounding.
	NotebookLMToolPath = "function-group/notebooklm"
)

// Placeholder is one parsed in-text marker: {{kind:path|title|instance}}.
// Title and Instance are optional in the grammar; a missing title defaults to
// the last path segment.
type Placeholder struct {
	Kind     string
	Path     string
	Title    string
	Instance string
}

// NormalizeParamID converts a placeholder path into the canonical parameter
// map key: trimmed, lowercased, whitespace runs collapsed to single dashes.
func NormalizeParamID(path string) string {
	fields := strings.Fields(strings.ToLower(path))
	return strings.Join(fields, "-")
}

// titleOrDefault returns title if set, otherwise the last slash-separated
// path segment.
func titleOrDefault(title, path string) string {
	if title != "" {
		return title
	}
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
