// Package capture turns filtered raw input events into sample streams.
//
// A Controller is a two state machine. While Idle, input is ignored. Start
// switches to Recording and every accepted reading is appended to the
// in-progress stroke. Stop finalizes the stroke, hands it to the caller and
// to the stop handler, and switches back to Idle.
package capture

import (
	"io"
	"log/slog"
	"sync"

	"github.com/roman-kulish/vibesign/internal/stroke"
)

const (
	StateIdle State = iota
	StateRecording
)

// State is the recording state of a Controller.
type State uint8

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	default:
		return "unknown"
	}
}

// WithLogger sets the logger for the controller
func WithLogger(logger *slog.Logger) func(c *Controller) {
	return func(c *Controller) {
		c.logger = logger.With(slog.String("component", "capture"))
	}
}

// WithPencilOnly sets whether only pencil input is accepted. Default is true.
func WithPencilOnly(pencilOnly bool) func(c *Controller) {
	return func(c *Controller) {
		c.pencilOnly = pencilOnly
	}
}

// WithStopHandler sets the function receiving the finalized stream of every
// recording. It is invoked exactly once per Stop, synchronously.
func WithStopHandler(fn func(stroke.Stream)) func(c *Controller) {
	return func(c *Controller) {
		c.onStop = fn
	}
}

// WithRedrawHandler sets the function asked to redraw the canvas with the
// in-progress stroke, after accepted input and after Clear.
func WithRedrawHandler(fn func(stroke.Stream)) func(c *Controller) {
	return func(c *Controller) {
		c.onRedraw = fn
	}
}

// Controller is the capture state machine. Its methods are safe to call from
// multiple goroutines, but input events are expected to come from a single
// source in arrival order.
type Controller struct {
	mu         sync.Mutex
	state      State
	pencilOnly bool
	samples    *stroke.Builder

	onStop   func(stroke.Stream)
	onRedraw func(stroke.Stream)
	logger   *slog.Logger
}

// NewController creates an idle controller accepting pencil input only,
// with a discard logger.
func NewController(options ...func(c *Controller)) *Controller {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger

	c := Controller{
		pencilOnly: true,
		samples:    stroke.NewBuilder(256),
		logger:     logger,
	}

	for _, option := range options {
		option(&c)
	}

	return &c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsRecording reports whether the controller is in the Recording state.
func (c *Controller) IsRecording() bool {
	return c.State() == StateRecording
}

// PencilOnly reports whether non-pencil input is dropped.
func (c *Controller) PencilOnly() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pencilOnly
}

// SetPencilOnly changes the device filter. It applies to subsequent events.
func (c *Controller) SetPencilOnly(pencilOnly bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pencilOnly = pencilOnly
}

// Start begins a new recording, discarding any in-progress samples. Calling
// Start while already recording restarts the recording.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.samples.Reset()
	c.state = StateRecording

	c.logger.Debug("recording started", slog.Bool("pencilOnly", c.pencilOnly))
}

// Stop ends the recording and returns the finalized stream, which may be
// empty. The controller keeps no reference to it. The stop handler receives
// the same stream before Stop returns.
//
// Stop on an idle controller returns an empty stream and does not invoke the
// stop handler.
func (c *Controller) Stop() stroke.Stream {
	c.mu.Lock()
	if c.state != StateRecording {
		c.mu.Unlock()
		return stroke.Stream{}
	}

	c.state = StateIdle
	stream := c.samples.Finalize()
	onStop := c.onStop
	c.mu.Unlock()

	c.logger.Debug("recording stopped", slog.Int("samples", stream.Len()))

	if onStop != nil {
		onStop(stream)
	}
	return stream
}

// OnInputEvent feeds a raw input event from a device of the given class. It
// is a no-op unless recording. Every reading of the event is filtered and
// appended independently, in arrival order. It returns the number of
// readings accepted.
func (c *Controller) OnInputEvent(event RawEvent, class DeviceClass) int {
	c.mu.Lock()
	if c.state != StateRecording {
		c.mu.Unlock()
		return 0
	}

	var accepted, dropped int
	for _, sub := range event.Expand() {
		device := class
		if sub.Device != DeviceUnknown {
			device = sub.Device
		}
		if c.pencilOnly && device != DevicePencil {
			dropped++
			continue
		}

		c.samples.Append(sub.Sample())
		accepted++
	}

	var live stroke.Stream
	onRedraw := c.onRedraw
	if accepted > 0 && onRedraw != nil {
		live = c.samples.Snapshot()
	}
	c.mu.Unlock()

	if dropped > 0 {
		c.logger.Debug("input filtered", slog.String("device", class.String()), slog.Int("dropped", dropped))
	}
	if accepted > 0 && onRedraw != nil {
		onRedraw(live)
	}
	return accepted
}

// Clear discards in-progress samples and redraws an empty canvas. It may be
// called in any state and does not change the state.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.samples.Reset()
	onRedraw := c.onRedraw
	c.mu.Unlock()

	if onRedraw != nil {
		onRedraw(stroke.Stream{})
	}
}

// Live returns a snapshot of the in-progress samples.
func (c *Controller) Live() stroke.Stream {
	return c.samples.Snapshot()
}
