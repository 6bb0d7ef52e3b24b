package template

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/agentwire/agentwire/core"
)

// recordingEmitter upper-cases literals and replaces placeholders with
// [kind:path] so tests can observe ordering and span boundaries.
type recordingEmitter struct {
	seen []Placeholder
}

func (e *recordingEmitter) Literal(span string) string { return strings.ToUpper(span) }

func (e *recordingEmitter) Placeholder(_ context.Context, p Placeholder) (string, error) {
	e.seen = append(e.seen, p)
	return fmt.Sprintf("[%s:%s]", p.Kind, p.Path), nil
}

func TestScan_GrammarFields(t *testing.T) {
	phs := Scan(`a {{asset:docs/report}} b {{in:name|Name}} c {{tool:control-flow/routing|Go|cool-route}}`)
	if len(phs) != 3 {
		t.Fatalf("expected 3 placeholders, got %d", len(phs))
	}

	if phs[0].Kind != KindAsset || phs[0].Path != "docs/report" {
		t.Errorf("asset placeholder mismatch: %+v", phs[0])
	}
	if phs[0].Title != "report" {
		t.Errorf("title should default to last path segment, got %q", phs[0].Title)
	}

	if phs[1].Kind != KindInput || phs[1].Path != "name" || phs[1].Title != "Name" {
		t.Errorf("input placeholder mismatch: %+v", phs[1])
	}

	if phs[2].Kind != KindTool || phs[2].Title != "Go" || phs[2].Instance != "cool-route" {
		t.Errorf("tool placeholder mismatch: %+v", phs[2])
	}
}

func TestScan_NoMarkers(t *testing.T) {
	if phs := Scan("plain text without markers"); phs != nil {
		t.Fatalf("expected nil, got %v", phs)
	}
}

func TestSubstituteContent_OrderAndSpans(t *testing.T) {
	em := &recordingEmitter{}
	c := core.Content{Role: "user", Parts: []core.Part{
		core.TextPart{Text: "a {{in:x}} b"},
		core.StoredDataPart{Handle: "/h1"},
		core.TextPart{Text: "{{asset:y}} c"},
	}}

	out, err := SubstituteContent(context.Background(), c, em)
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}

	if got := out.Parts[0].(core.TextPart).Text; got != "A [in:x] B" {
		t.Errorf("first part: %q", got)
	}
	if _, ok := out.Parts[1].(core.StoredDataPart); !ok {
		t.Error("non-text part should pass through")
	}
	if got := out.Parts[2].(core.TextPart).Text; got != "[asset:y] C" {
		t.Errorf("third part: %q", got)
	}

	// Encounter order across parts.
	if len(em.seen) != 2 || em.seen[0].Path != "x" || em.seen[1].Path != "y" {
		t.Errorf("placeholder order: %+v", em.seen)
	}

	// Input untouched.
	if c.Parts[0].(core.TextPart).Text != "a {{in:x}} b" {
		t.Error("input content mutated")
	}
}

func TestSubstituteContent_UnknownKindStillParses(t *testing.T) {
	em := &recordingEmitter{}
	c := core.NewUserText("x {{weird:thing}} y")
	if _, err := SubstituteContent(context.Background(), c, em); err != nil {
		t.Fatalf("substitute: %v", err)
	}
	if len(em.seen) != 1 || em.seen[0].Kind != "weird" {
		t.Fatalf("unrecognized kinds must reach the emitter: %+v", em.seen)
	}
}

func TestNormalizeParamID(t *testing.T) {
	cases := map[string]string{
		"name":        "name",
		"  My Name  ": "my-name",
		"Mixed CASE":  "mixed-case",
	}
	for in, want := range cases {
		if got := NormalizeParamID(in); got != want {
			t.Errorf("NormalizeParamID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidationError_JoinsWithComma(t *testing.T) {
	err := &ValidationError{Messages: []string{"first", "second"}}
	if err.Error() != "first,second" {
		t.Fatalf("got %q", err.Error())
	}
}
