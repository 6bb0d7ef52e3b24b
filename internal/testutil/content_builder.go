// Package testutil provides fluent builders and small servers for tests.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/agentwire/agentwire/core"
)

// ContentBuilder provides a fluent helper for constructing content in tests.
// Example:
//
//	c := NewContentBuilder().Text("hello {{in:name}}").Stored("/h1", "image/png").Build()
//
// Chain only the parts you need; role defaults to "user".
type ContentBuilder struct {
	role  string
	parts []core.Part
}

// NewContentBuilder creates a builder with default role "user".
func NewContentBuilder() *ContentBuilder { return &ContentBuilder{role: "user"} }

// Role sets the conversation role (chainable).
func (b *ContentBuilder) Role(r string) *ContentBuilder { b.role = r; return b }

// Text appends a text part (chainable).
func (b *ContentBuilder) Text(t string) *ContentBuilder {
	b.parts = append(b.parts, core.TextPart{Text: t})
	return b
}

// Stored appends a stored-data part (chainable).
func (b *ContentBuilder) Stored(handle, mimeType string) *ContentBuilder {
	b.parts = append(b.parts, core.StoredDataPart{Handle: handle, MimeType: mimeType})
	return b
}

// File appends a file-URI part (chainable).
func (b *ContentBuilder) File(uri, mimeType string) *ContentBuilder {
	b.parts = append(b.parts, core.FileDataPart{FileURI: uri, MimeType: mimeType})
	return b
}

// Inline appends an inline-data part (chainable).
func (b *ContentBuilder) Inline(mimeType, data string) *ContentBuilder {
	b.parts = append(b.parts, core.InlineDataPart{MimeType: mimeType, Data: data})
	return b
}

// Marker appends a tool control marker part (chainable).
func (b *ContentBuilder) Marker(name string) *ContentBuilder {
	b.parts = append(b.parts, core.ToolMarkerPart{Name: name})
	return b
}

// Build returns the assembled content.
func (b *ContentBuilder) Build() core.Content {
	return core.Content{Role: b.role, Parts: b.parts}
}

// SSEEvent is one scripted server-sent event for NewSSEServer.
type SSEEvent struct {
	Type string
	Data string
}

// NewSSEServer starts a test server that replies to any request with the
// scripted event stream. Each event is flushed individually so client-side
// decoding observes real streaming. The caller owns Close.
func NewSSEServer(events ...SSEEvent) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		for _, ev := range events {
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, ev.Data)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}))
}
