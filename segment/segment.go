// Package segment implements the structured wire encoding of an objective: the
// typed Segment units sent to a remote agent in place of flattened text, and
// the Resolver that substitutes template placeholders into an ordered segment
// list. The remote server performs pidgin conversion and attachment
// registration for this path; the resolver only resolves and orders.
package segment

import (
	"encoding/json"
	"fmt"

	"github.com/agentwire/agentwire/core"
)

// Segment is one typed wire unit. Concrete segment types implement the
// unexported isSegment marker enabling a closed set. Ordering within a
// resolution is significant and reproduced exactly on the wire.
type Segment interface{ isSegment() }

// Text carries literal text left over after substitution.
type Text struct {
	Text string
}

// isSegment implements the Segment interface for Text.
func (Text) isSegment() {}

// Asset carries one loaded asset content item.
type Asset struct {
	Title   string
	Content core.Content
}

// isSegment implements the Segment interface for Asset.
func (Asset) isSegment() {}

// Input carries one resolved parameter content item (or a leftover
// attachment, titled "attachment").
type Input struct {
	Title   string
	Content core.Content
}

// isSegment implements the Segment interface for Input.
func (Input) isSegment() {}

// Tool references a tool by path; route tools additionally carry the route
// instance id.
type Tool struct {
	Path     string
	Title    string
	Instance string
}

// isSegment implements the Segment interface for Tool.
func (Tool) isSegment() {}

// Resolution is the resolver output handed to the remote transport: the
// ordered segments plus the feature flags derived during substitution.
type Resolution struct {
	Segments      []Segment
	UseNotebookLM bool
}

// Wire shapes: {"type":"text","text"}, {"type":"asset","title","content"},
// {"type":"input","title","content"}, {"type":"tool","path","title?",
// "instance?"}.

type textJSON struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type contentJSON struct {
	Type    string       `json:"type"`
	Title   string       `json:"title"`
	Content core.Content `json:"content"`
}

type toolJSON struct {
	Type     string `json:"type"`
	Path     string `json:"path"`
	Title    string `json:"title,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// MarshalJSON encodes the segment as {"type":"text",...}.
func (s Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(textJSON{Type: "text", Text: s.Text})
}

// MarshalJSON encodes the segment as {"type":"asset",...}.
func (s Asset) MarshalJSON() ([]byte, error) {
	return json.Marshal(contentJSON{Type: "asset", Title: s.Title, Content: s.Content})
}

// MarshalJSON encodes the segment as {"type":"input",...}.
func (s Input) MarshalJSON() ([]byte, error) {
	return json.Marshal(contentJSON{Type: "input", Title: s.Title, Content: s.Content})
}

// MarshalJSON encodes the segment as {"type":"tool",...}.
func (s Tool) MarshalJSON() ([]byte, error) {
	return json.Marshal(toolJSON{Type: "tool", Path: s.Path, Title: s.Title, Instance: s.Instance})
}

// UnmarshalSegment decodes a single wire segment by its type discriminator.
func UnmarshalSegment(raw json.RawMessage) (Segment, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("decode segment: %w", err)
	}

	switch probe.Type {
	case "text":
		var s textJSON
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode text segment: %w", err)
		}
		return Text{Text: s.Text}, nil
	case "asset":
		var s contentJSON
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode asset segment: %w", err)
		}
		return Asset{Title: s.Title, Content: s.Content}, nil
	case "input":
		var s contentJSON
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode input segment: %w", err)
		}
		return Input{Title: s.Title, Content: s.Content}, nil
	case "tool":
		var s toolJSON
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode tool segment: %w", err)
		}
		return Tool{Path: s.Path, Title: s.Title, Instance: s.Instance}, nil
	default:
		return nil, fmt.Errorf("unknown segment type: %q", probe.Type)
	}
}

// UnmarshalSegments decodes a wire segment list preserving order.
func UnmarshalSegments(raw []json.RawMessage) ([]Segment, error) {
	out := make([]Segment, 0, len(raw))
	for _, r := range raw {
		s, err := UnmarshalSegment(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
