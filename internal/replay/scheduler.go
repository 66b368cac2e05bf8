// Package replay reproduces a recorded stroke, either all at once or as a
// timed animation following the cadence of the original recording.
//
// The animation is a cooperative state machine driven by one pending timer:
//
//	Advancing(i): reveal samples[i], wait until samples[i+1] is due
//	Dwelling:     the whole stroke is visible, wait before starting over
//
// Every presentation owns a generation number. Cancelling or starting a new
// presentation bumps the generation, so a timer that fires late for an older
// presentation is recognised and ignored.
package replay

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/roman-kulish/vibesign/internal/stroke"
)

const (
	// MinDelay is the shortest pause between two revealed samples. It guards
	// against zero or negative timestamp deltas.
	MinDelay = time.Millisecond

	// DwellDuration is the pause after a complete cycle before looping.
	DwellDuration = 3 * time.Second
)

const (
	StateIdle      State = iota // Nothing presented, or presentation cancelled
	StateStatic                 // Whole stream revealed, no timer
	StateAdvancing              // Revealing samples one by one
	StateDwelling               // Whole stream revealed, waiting to loop
)

// State is the presentation state of a Scheduler.
type State uint8

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStatic:
		return "static"
	case StateAdvancing:
		return "advancing"
	case StateDwelling:
		return "dwelling"
	default:
		return "unknown"
	}
}

// Frame is a snapshot of the revealed subset handed to a Renderer.
type Frame struct {
	Revealed stroke.Stream // Prefix of the presented stream currently visible
	State    State
	Cycle    int // Number of completed draw and dwell cycles
}

// Renderer receives frames as the revealed subset changes. Frames are
// delivered one at a time and in order. Render is called while the scheduler
// is locked and must not call back into the scheduler.
type Renderer interface {
	Render(frame Frame)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(frame Frame)

// Render calls f(frame).
func (f RendererFunc) Render(frame Frame) {
	f(frame)
}

// WithClock sets the clock used for timers. Default is SystemClock.
func WithClock(clock Clock) func(s *Scheduler) {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

// WithLogger sets the logger for the scheduler
func WithLogger(logger *slog.Logger) func(s *Scheduler) {
	return func(s *Scheduler) {
		s.logger = logger.With(slog.String("component", "replay"))
	}
}

// WithMinDelay overrides MinDelay.
func WithMinDelay(d time.Duration) func(s *Scheduler) {
	return func(s *Scheduler) {
		s.minDelay = d
	}
}

// WithDwell overrides DwellDuration.
func WithDwell(d time.Duration) func(s *Scheduler) {
	return func(s *Scheduler) {
		s.dwell = d
	}
}

// Scheduler replays a stream into a Renderer. At most one timer is pending
// per Scheduler at any time.
type Scheduler struct {
	mu       sync.Mutex
	renderer Renderer
	clock    Clock
	minDelay time.Duration
	dwell    time.Duration
	logger   *slog.Logger

	stream   stroke.Stream
	animate  bool
	state    State
	index    int // Index of the last revealed sample while animating
	revealed int // Length of the revealed prefix
	cycle    int

	timer      Timer
	generation uint64
}

// NewScheduler creates an idle scheduler rendering into r.
func NewScheduler(r Renderer, options ...func(s *Scheduler)) *Scheduler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger

	s := Scheduler{
		renderer: r,
		clock:    SystemClock{},
		minDelay: MinDelay,
		dwell:    DwellDuration,
		logger:   logger,
	}

	for _, option := range options {
		option(&s)
	}

	return &s
}

// StepDelay returns the pause between revealing from and revealing to: the
// difference of their timestamps, never shorter than floor.
func StepDelay(from, to stroke.Sample, floor time.Duration) time.Duration {
	delta := time.Duration((to.Timestamp - from.Timestamp) * float64(time.Second))
	return max(delta, floor)
}

// Present starts presenting stream. Any pending timer of a previous
// presentation is cancelled first. With animate false the whole stream is
// revealed at once and no timer is created.
func (s *Scheduler) Present(stream stroke.Stream, animate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()

	s.stream = stream
	s.animate = animate
	s.index = 0
	s.cycle = 0

	if !animate {
		s.state = StateStatic
		s.revealed = stream.Len()
		s.emit()
		return
	}

	s.state = StateAdvancing
	s.revealed = 0
	if stream.IsEmpty() {
		s.emit()
		return
	}

	s.logger.Debug("animation started",
		slog.Int("samples", stream.Len()),
		slog.Float64("duration", stream.Duration()))

	s.advance()
}

// SetAnimate switches between animated and static presentation of the
// current stream. A change restarts the presentation.
func (s *Scheduler) SetAnimate(animate bool) {
	s.mu.Lock()
	if s.animate == animate && s.state != StateIdle {
		s.mu.Unlock()
		return
	}
	stream := s.stream
	s.mu.Unlock()

	s.Present(stream, animate)
}

// Cancel stops the animation, leaving the revealed subset as it is. It is
// idempotent and safe to call when nothing is presented.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()
	if s.state == StateAdvancing || s.state == StateDwelling {
		s.state = StateIdle
	}
}

// Detach is called when the rendering surface goes away. The animation is
// cancelled and the scheduler falls back to revealing the whole stream; no
// frame is rendered.
func (s *Scheduler) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()
	s.animate = false
	s.state = StateStatic
	s.revealed = s.stream.Len()
}

// Revealed returns the currently visible prefix.
func (s *Scheduler) Revealed() stroke.Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream.Prefix(s.revealed)
}

// State returns the presentation state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cycle returns the number of completed draw and dwell cycles.
func (s *Scheduler) Cycle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycle
}

// Pending reports whether a timer is scheduled.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// cancel invalidates the pending timer. Must be called with s.mu held.
func (s *Scheduler) cancel() {
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// schedule arms the single timer for the current generation. Must be called
// with s.mu held.
func (s *Scheduler) schedule(d time.Duration) {
	gen := s.generation
	s.timer = s.clock.AfterFunc(d, func() {
		s.fire(gen)
	})
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return // stale timer of a cancelled presentation
	}
	s.timer = nil

	switch s.state {
	case StateAdvancing:
		s.index++

	case StateDwelling:
		s.cycle++
		s.revealed = 0
		s.index = 0
		s.state = StateAdvancing

	default:
		return
	}

	s.advance()
}

// advance reveals samples[index] and schedules the next step. Must be called
// with s.mu held.
func (s *Scheduler) advance() {
	n := s.stream.Len()
	if s.index >= n {
		return
	}

	s.revealed = s.index + 1
	if s.index+1 < n {
		s.emit()
		s.schedule(StepDelay(s.stream.At(s.index), s.stream.At(s.index+1), s.minDelay))
		return
	}

	s.state = StateDwelling
	s.emit()
	s.schedule(s.dwell)
}

func (s *Scheduler) emit() {
	if s.renderer == nil {
		return
	}
	s.renderer.Render(Frame{
		Revealed: s.stream.Prefix(s.revealed),
		State:    s.state,
		Cycle:    s.cycle,
	})
}
