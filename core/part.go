package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NotebookLM markers. Parts carrying these bypass file registration on the
// pidgin path and travel as raw links (see the pidgin package).
const (
	// NotebookLMMimeType flags an asset as a NotebookLM resource.
	NotebookLMMimeType = "application/vnd.google.notebooklm"
	// NotebookLMURLPrefix identifies stored handles / file URIs that point at
	// a NotebookLM notebook.
	NotebookLMURLPrefix = "https://notebooklm.google.com/notebook/"
)

// Part represents a polymorphic unit of conversational content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content unit.
type TextPart struct {
	Text string // Plain UTF-8 text
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// InlineDataPart carries binary data inline, base64 encoded.
type InlineDataPart struct {
	MimeType string
	Data     string // Base64 encoded payload
}

// isPart implements the Part interface for InlineDataPart.
func (InlineDataPart) isPart() {}

// StoredDataPart references previously stored data by a stable opaque handle.
type StoredDataPart struct {
	Handle   string
	MimeType string
}

// isPart implements the Part interface for StoredDataPart.
func (StoredDataPart) isPart() {}

// FileDataPart references a remote file by URI.
type FileDataPart struct {
	FileURI  string
	MimeType string
}

// isPart implements the Part interface for FileDataPart.
func (FileDataPart) isPart() {}

// ToolMarkerPart is a control marker inserted by tooling; it carries no user
// visible data and is skipped by the encoders.
type ToolMarkerPart struct {
	Name string
}

// isPart implements the Part interface for ToolMarkerPart.
func (ToolMarkerPart) isPart() {}

// Wire shapes. Each part serializes as a single-key object so decoders can
// dispatch on key presence: {"text"}, {"inlineData"}, {"storedData"},
// {"fileData"}, {"toolMarker"}.

type inlineDataJSON struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data"`
}

type storedDataJSON struct {
	Handle   string `json:"handle"`
	MimeType string `json:"mimeType,omitempty"`
}

type fileDataJSON struct {
	FileURI  string `json:"fileUri"`
	MimeType string `json:"mimeType,omitempty"`
}

// MarshalJSON encodes the part as {"text": ...}.
func (p TextPart) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Text string `json:"text"`
	}{p.Text})
}

// MarshalJSON encodes the part as {"inlineData": {...}}.
func (p InlineDataPart) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		InlineData inlineDataJSON `json:"inlineData"`
	}{inlineDataJSON{MimeType: p.MimeType, Data: p.Data}})
}

// MarshalJSON encodes the part as {"storedData": {...}}.
func (p StoredDataPart) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		StoredData storedDataJSON `json:"storedData"`
	}{storedDataJSON{Handle: p.Handle, MimeType: p.MimeType}})
}

// MarshalJSON encodes the part as {"fileData": {...}}.
func (p FileDataPart) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		FileData fileDataJSON `json:"fileData"`
	}{fileDataJSON{FileURI: p.FileURI, MimeType: p.MimeType}})
}

// MarshalJSON encodes the part as {"toolMarker": name}.
func (p ToolMarkerPart) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ToolMarker string `json:"toolMarker"`
	}{p.Name})
}

// UnmarshalPart decodes a single wire part, dispatching on which key is
// present. Unknown shapes are an error so protocol drift surfaces early.
func UnmarshalPart(raw json.RawMessage) (Part, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("decode part: %w", err)
	}

	switch {
	case probe["text"] != nil:
		var s string
		if err := json.Unmarshal(probe["text"], &s); err != nil {
			return nil, fmt.Errorf("decode text part: %w", err)
		}
		return TextPart{Text: s}, nil
	case probe["inlineData"] != nil:
		var d inlineDataJSON
		if err := json.Unmarshal(probe["inlineData"], &d); err != nil {
			return nil, fmt.Errorf("decode inlineData part: %w", err)
		}
		return InlineDataPart{MimeType: d.MimeType, Data: d.Data}, nil
	case probe["storedData"] != nil:
		var d storedDataJSON
		if err := json.Unmarshal(probe["storedData"], &d); err != nil {
			return nil, fmt.Errorf("decode storedData part: %w", err)
		}
		return StoredDataPart{Handle: d.Handle, MimeType: d.MimeType}, nil
	case probe["fileData"] != nil:
		var d fileDataJSON
		if err := json.Unmarshal(probe["fileData"], &d); err != nil {
			return nil, fmt.Errorf("decode fileData part: %w", err)
		}
		return FileDataPart{FileURI: d.FileURI, MimeType: d.MimeType}, nil
	case probe["toolMarker"] != nil:
		var s string
		if err := json.Unmarshal(probe["toolMarker"], &s); err != nil {
			return nil, fmt.Errorf("decode toolMarker part: %w", err)
		}
		return ToolMarkerPart{Name: s}, nil
	default:
		return nil, fmt.Errorf("unrecognized part shape: %s", string(raw))
	}
}

// IsNotebookLMPart reports whether a part references a NotebookLM resource,
// either by mime type or by a notebook URL handle/URI.
func IsNotebookLMPart(p Part) bool {
	switch v := p.(type) {
	case StoredDataPart:
		return v.MimeType == NotebookLMMimeType || strings.HasPrefix(v.Handle, NotebookLMURLPrefix)
	case FileDataPart:
		return v.MimeType == NotebookLMMimeType || strings.HasPrefix(v.FileURI, NotebookLMURLPrefix)
	case InlineDataPart:
		return v.MimeType == NotebookLMMimeType
	default:
		return false
	}
}
