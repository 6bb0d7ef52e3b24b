package core

import (
	"encoding/json"
	"strings"
)

// Content holds role + ordered parts: one conversational turn.
type Content struct {
	Role  string `json:"role,omitempty"` // Conversation role (user, assistant, tool,...)
	Parts []Part `json:"parts"`          // Ordered heterogeneous parts
}

// NewUserContent wraps parts in a user-role content value.
func NewUserContent(parts ...Part) Content {
	return Content{Role: "user", Parts: parts}
}

// NewUserText is a convenience wrapper for a single user text part.
func NewUserText(text string) Content {
	return NewUserContent(TextPart{Text: text})
}

// UnmarshalJSON decodes content with polymorphic parts (see UnmarshalPart).
func (c *Content) UnmarshalJSON(data []byte) error {
	var wire struct {
		Role  string            `json:"role"`
		Parts []json.RawMessage `json:"parts"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	c.Role = wire.Role
	c.Parts = make([]Part, 0, len(wire.Parts))
	for _, raw := range wire.Parts {
		p, err := UnmarshalPart(raw)
		if err != nil {
			return err
		}
		c.Parts = append(c.Parts, p)
	}
	return nil
}

// Text concatenates the text parts of the content, preserving order. Non-text
// parts contribute nothing.
func (c Content) Text() string {
	var b strings.Builder
	for _, p := range c.Parts {
		if tp, ok := p.(TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}
