package core

import (
	"encoding/json"
	"testing"
)

func TestUnmarshalPart_Dispatch(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Part
	}{
		{"text", `{"text":"hello"}`, TextPart{Text: "hello"}},
		{"inlineData", `{"inlineData":{"mimeType":"image/png","data":"aGk="}}`, InlineDataPart{MimeType: "image/png", Data: "aGk="}},
		{"storedData", `{"storedData":{"handle":"/h1","mimeType":"audio/mp3"}}`, StoredDataPart{Handle: "/h1", MimeType: "audio/mp3"}},
		{"fileData", `{"fileData":{"fileUri":"https://x/y","mimeType":"application/pdf"}}`, FileDataPart{FileURI: "https://x/y", MimeType: "application/pdf"}},
		{"toolMarker", `{"toolMarker":"start"}`, ToolMarkerPart{Name: "start"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := UnmarshalPart(json.RawMessage(tc.raw))
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestUnmarshalPart_UnknownShape(t *testing.T) {
	if _, err := UnmarshalPart(json.RawMessage(`{"video":{"uri":"x"}}`)); err == nil {
		t.Fatal("expected error for unknown part shape")
	}
}

func TestContent_JSONRoundTrip(t *testing.T) {
	in := Content{Role: "user", Parts: []Part{
		TextPart{Text: "look at this"},
		StoredDataPart{Handle: "/h1", MimeType: "image/png"},
	}}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out Content
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Role != "user" || len(out.Parts) != 2 {
		t.Fatalf("unexpected content: %#v", out)
	}
	if out.Parts[0] != in.Parts[0] || out.Parts[1] != in.Parts[1] {
		t.Fatalf("parts not preserved: %#v", out.Parts)
	}
}

func TestIsNotebookLMPart(t *testing.T) {
	if !IsNotebookLMPart(StoredDataPart{Handle: NotebookLMURLPrefix + "abc"}) {
		t.Error("notebook URL handle should be NotebookLM")
	}
	if !IsNotebookLMPart(FileDataPart{FileURI: "https://x/y", MimeType: NotebookLMMimeType}) {
		t.Error("NotebookLM mime type should be NotebookLM")
	}
	if IsNotebookLMPart(StoredDataPart{Handle: "/h1", MimeType: "image/png"}) {
		t.Error("plain stored part should not be NotebookLM")
	}
	if IsNotebookLMPart(TextPart{Text: NotebookLMURLPrefix}) {
		t.Error("text parts are never NotebookLM parts")
	}
}

func TestRunEvent_Terminal(t *testing.T) {
	finish := NewRunEvent(EventFinish, nil)
	if !finish.IsTerminal() {
		t.Error("finish should be terminal")
	}
	if finish.ErrorMessage() != "" {
		t.Error("finish has no error message")
	}

	errEv := NewRunEvent(EventError, []byte(`{"message":"boom"}`))
	if !errEv.IsTerminal() {
		t.Error("error should be terminal")
	}
	if got := errEv.ErrorMessage(); got != "boom" {
		t.Errorf("expected 'boom', got %q", got)
	}

	delta := NewRunEvent("delta", []byte(`{"text":"hi"}`))
	if delta.IsTerminal() {
		t.Error("delta should not be terminal")
	}
	if delta.ID == "" || finish.ID == delta.ID {
		t.Error("events should carry unique ids")
	}
}
