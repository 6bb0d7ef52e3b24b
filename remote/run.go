// Package remote implements the streaming transport that delivers resolved
// segments to a remote agent and decodes the resulting Server-Sent Event
// stream, with cooperative cancellation. One run handle owns exactly one
// streaming connection and is discarded after completion or abort.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/agentwire/agentwire/core"
	"github.com/agentwire/agentwire/logging"
	"github.com/agentwire/agentwire/segment"
)

// Flags is the feature flag block sent alongside the segments.
type Flags struct {
	UseNotebookLM bool `json:"useNotebookLM"`
}

// Request is the outbound body of a remote run: the server, not this layer,
// performs pidgin conversion and attachment registration for the remote path.
type Request struct {
	Kind     string            `json:"kind"`
	Segments []segment.Segment `json:"segments"`
	Flags    Flags             `json:"flags"`
}

// TransportError is a terminal network / stream / server failure. Distinct
// from encoding validation failures (which prevent a run from starting) and
// from abort (which is a clean terminal state, never an error).
type TransportError struct {
	Op      string // connect, stream, run
	Message string
	Err     error
}

// Error formats the failure with its operation.
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport %s: %s", e.Op, e.Message)
}

// Unwrap exposes the underlying cause.
func (e *TransportError) Unwrap() error { return e.Err }

// ErrAlreadyConnected is returned by Connect when the handle's single
// connection has already been opened.
var ErrAlreadyConnected = fmt.Errorf("run already connected")

// Options configures a run handle.
type Options struct {
	// Kind tags the run on the wire (defaults to "main").
	Kind string

	// HTTPClient performs the streaming request (defaults to
	// http.DefaultClient). Credential-aware hosts supply a client whose
	// transport injects authentication.
	HTTPClient *http.Client

	// Header is merged into the request (e.g. Authorization, Origin).
	Header http.Header

	// EventBufferSize sets the event channel buffer. The protocol has no
	// backpressure signal; a consumer that cannot keep pace blocks the
	// decoder once the buffer fills.
	EventBufferSize int

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// RunHandle is one remote agent run: a single streaming connection delivering
// decoded events to the Events channel. Connect settles exactly once — on the
// terminal finish or error event, on a transport failure, or on abort.
type RunHandle struct {
	runID      string
	kind       string
	endpoint   string
	resolution segment.Resolution

	client *http.Client
	header http.Header
	logger logging.Logger

	events    chan core.RunEvent
	ctx       context.Context
	cancel    context.CancelFunc
	aborted   atomic.Bool
	connected atomic.Bool
}

// NewRun creates a handle for one remote run over the resolver's output. The
// connection is not opened until Connect.
func NewRun(endpoint string, resolution segment.Resolution, optFns ...func(o *Options)) *RunHandle {
	opts := Options{
		Kind:            "main",
		HTTPClient:      http.DefaultClient,
		EventBufferSize: 64,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &RunHandle{
		runID:      core.NewID(),
		kind:       opts.Kind,
		endpoint:   endpoint,
		resolution: resolution,
		client:     opts.HTTPClient,
		header:     opts.Header,
		logger:     opts.Logger,
		events:     make(chan core.RunEvent, opts.EventBufferSize),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// RunID returns the unique identifier of this run.
func (h *RunHandle) RunID() string { return h.runID }

// Kind returns the wire kind of this run.
func (h *RunHandle) Kind() string { return h.kind }

// Events returns the decoded event stream. The channel is closed when
// Connect settles.
func (h *RunHandle) Events() <-chan core.RunEvent { return h.events }

// Done exposes the cancellation signal: closed once Abort is called (or the
// handle torn down).
func (h *RunHandle) Done() <-chan struct{} { return h.ctx.Done() }

// Aborted reports whether Abort has been called.
func (h *RunHandle) Aborted() bool { return h.aborted.Load() }

// Abort requests cancellation of the run. Idempotent; the aborted flag flips
// synchronously and the cancellation signal propagates into any in-flight
// network operation. Abort only stops further processing: events already
// buffered by the network layer may still reach the consumer before
// teardown completes.
func (h *RunHandle) Abort() {
	if h.aborted.CompareAndSwap(false, true) {
		h.cancel()
	}
}

// Connect opens the streaming request, decodes the SSE response into the
// events channel, and returns once the stream terminates: nil after the
// terminal finish event or an abort, a TransportError otherwise. A second
// call returns ErrAlreadyConnected.
func (h *RunHandle) Connect(ctx context.Context) error {
	if !h.connected.CompareAndSwap(false, true) {
		return ErrAlreadyConnected
	}
	start := time.Now()
	err := h.stream(ctx)
	if err != nil {
		h.logger.Error("run stream failed", "run_id", h.runID, "duration", time.Since(start), "error", err)
	} else {
		h.logger.Info("run stream ended", "run_id", h.runID, "aborted", h.Aborted(), "duration", time.Since(start))
	}
	return err
}

func (h *RunHandle) stream(ctx context.Context) error {
	defer close(h.events)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	// Abort cancels the in-flight request.
	stop := context.AfterFunc(h.ctx, cancel)
	defer stop()

	body, err := json.Marshal(Request{
		Kind:     h.kind,
		Segments: h.resolution.Segments,
		Flags:    Flags{UseNotebookLM: h.resolution.UseNotebookLM},
	})
	if err != nil {
		return &TransportError{Op: "connect", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Op: "connect", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	for k, vs := range h.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if h.Aborted() {
			return nil
		}
		return &TransportError{Op: "connect", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &TransportError{
			Op:      "connect",
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(msg)),
		}
	}

	decoder := ssestream.NewDecoder(resp)
	defer func() { _ = decoder.Close() }()

	for decoder.Next() {
		raw := decoder.Event()
		if raw.Type == "" && len(raw.Data) == 0 {
			continue // keep-alive
		}
		event := core.NewRunEvent(raw.Type, raw.Data)

		select {
		case h.events <- event:
		case <-ctx.Done():
			if h.Aborted() {
				return nil
			}
			return &TransportError{Op: "stream", Err: ctx.Err()}
		}

		switch event.Type {
		case core.EventFinish:
			return nil
		case core.EventError:
			msg := event.ErrorMessage()
			if msg == "" {
				msg = "remote agent failed"
			}
			return &TransportError{Op: "run", Message: msg}
		}
	}

	// Stream ended without a terminal event: clean only when aborted.
	if h.Aborted() {
		return nil
	}
	if err := decoder.Err(); err != nil {
		return &TransportError{Op: "stream", Err: err}
	}
	return &TransportError{Op: "stream", Message: "stream ended without terminal event"}
}
