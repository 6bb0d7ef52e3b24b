package agentwire

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentwire/agentwire/asset"
	"github.com/agentwire/agentwire/core"
	"github.com/agentwire/agentwire/internal/testutil"
	"github.com/agentwire/agentwire/template"
)

func TestStartRemoteRun_HappyPath(t *testing.T) {
	srv := testutil.NewSSEServer(
		testutil.SSEEvent{Type: "delta", Data: `{"text":"hi"}`},
		testutil.SSEEvent{Type: "finish", Data: `{}`},
	)
	defer srv.Close()

	w := New(func(o *Options) {
		o.Endpoint = srv.URL
		o.Kind = "subtask"
	})

	handle, err := w.StartRemoteRun(context.Background(),
		core.NewUserText("Hello {{in:name}}"), map[string]any{"name": "World"})
	require.NoError(t, err)
	assert.Equal(t, "subtask", handle.Kind())

	var events []core.RunEvent
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range handle.Events() {
			events = append(events, ev)
		}
	}()

	require.NoError(t, handle.Connect(context.Background()))
	<-done
	require.Len(t, events, 2)
	assert.Equal(t, core.EventFinish, events[1].Type)
}

func TestStartRemoteRun_EncodingFailureStartsNothing(t *testing.T) {
	w := New() // empty asset store

	handle, err := w.StartRemoteRun(context.Background(),
		core.NewUserText("{{asset:missing}}"), nil)
	require.Error(t, err)
	assert.Nil(t, handle, "no handle on encoding failure")

	var verr *template.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestEncodeLocal(t *testing.T) {
	store := asset.NewInMemoryStore()
	store.Save("docs/report", core.NewUserText("findings"))

	w := New(func(o *Options) {
		o.Assets = store
	})

	res, err := w.EncodeLocal(context.Background(),
		core.NewUserText("see {{asset:docs/report}} for {{in:who}}"),
		map[string]any{"who": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "see <asset title=\"report\">\nfindings\n</asset> for Ada", res.Text)
}

func TestNew_SharedToolText(t *testing.T) {
	w := New(func(o *Options) {
		o.ToolText = map[string]string{"tools/weather": "Check the weather."}
	})

	res, err := w.EncodeLocal(context.Background(),
		core.NewUserText("{{tool:tools/weather}}"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Check the weather.", res.Text)

	resolution, err := w.Resolver().Resolve(context.Background(),
		core.NewUserText("{{tool:tools/weather}}"), nil)
	require.NoError(t, err)
	require.Len(t, resolution.Segments, 1)
}
