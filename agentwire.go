// Package agentwire provides a high-level façade over the wire-encoding layer
// for LLM-driven agent turns. A multimodal objective (text plus images, audio,
// documents, tool references) with embedded template placeholders is encoded
// either into typed wire segments streamed to a remote agent, or into pidgin —
// a flattened textual encoding consumed by a text-only agent loop. Most
// applications interact with this package by:
//  1. Creating an AgentWire via New() with their asset loader and endpoint
//  2. Calling StartRemoteRun to resolve an objective and obtain a run handle,
//     then Connect-ing the handle and draining its event channel
//  3. Or calling EncodeLocal to obtain the pidgin rendition for an in-process
//     text-only agent
//
// The façade delegates to segment.Resolver, pidgin.Encoder and remote.RunHandle
// while keeping setup ergonomics concise. All defaults are safe for local
// development and testing; production deployments supply their own asset
// loader, an authenticated HTTP client and a structured logger.
package agentwire

import (
	"context"
	"net/http"

	"github.com/agentwire/agentwire/asset"
	"github.com/agentwire/agentwire/core"
	"github.com/agentwire/agentwire/logging"
	"github.com/agentwire/agentwire/pidgin"
	"github.com/agentwire/agentwire/remote"
	"github.com/agentwire/agentwire/segment"
)

// Options configures the AgentWire instance.
type Options struct {
	// Assets resolves asset placeholders (defaults to an empty in-memory
	// store if not provided).
	Assets asset.Loader

	// ToolText maps custom tool paths to canonical default text shared by
	// both encoding paths.
	ToolText map[string]string

	// Endpoint is the remote agent's streaming run URL.
	Endpoint string

	// Kind tags remote runs on the wire (defaults to "main").
	Kind string

	// HTTPClient performs streaming requests (defaults to
	// http.DefaultClient).
	HTTPClient *http.Client

	// Header is merged into every streaming request.
	Header http.Header

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// AgentWire is the high-level façade aggregating the resolver, the pidgin
// encoder and the remote transport configuration.
type AgentWire struct {
	opts     Options
	resolver *segment.Resolver
	encoder  *pidgin.Encoder
}

// New creates a new AgentWire instance with optional overrides.
func New(optFns ...func(o *Options)) *AgentWire {
	opts := Options{
		Assets:     asset.NewInMemoryStore(),
		Kind:       "main",
		HTTPClient: http.DefaultClient,
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	resolver := segment.NewResolver(opts.Assets, func(o *segment.Options) {
		o.ToolText = opts.ToolText
		o.Logger = opts.Logger
	})
	encoder := pidgin.NewEncoder(opts.Assets, func(o *pidgin.Options) {
		o.ToolText = opts.ToolText
		o.Logger = opts.Logger
	})

	return &AgentWire{opts: opts, resolver: resolver, encoder: encoder}
}

// Resolver exposes the segment resolver.
func (w *AgentWire) Resolver() *segment.Resolver { return w.resolver }

// Encoder exposes the pidgin encoder (and through it the file registry).
func (w *AgentWire) Encoder() *pidgin.Encoder { return w.encoder }

// StartRemoteRun resolves the objective into segments and returns a run
// handle for the configured endpoint. Encoding failure prevents the run from
// starting: no handle is created and no connection is opened. The caller
// Connects the handle and drains its Events channel.
func (w *AgentWire) StartRemoteRun(ctx context.Context, objective core.Content, params map[string]any) (*remote.RunHandle, error) {
	resolution, err := w.resolver.Resolve(ctx, objective, params)
	if err != nil {
		return nil, err
	}

	handle := remote.NewRun(w.opts.Endpoint, resolution, func(o *remote.Options) {
		o.Kind = w.opts.Kind
		o.HTTPClient = w.opts.HTTPClient
		o.Header = w.opts.Header
		o.Logger = w.opts.Logger
	})
	return handle, nil
}

// EncodeLocal flattens the objective to pidgin text for an in-process
// text-only agent. Long text parts are registered as files.
func (w *AgentWire) EncodeLocal(ctx context.Context, objective core.Content, params map[string]any) (pidgin.Result, error) {
	return w.encoder.ToPidgin(ctx, objective, params, true)
}
