// Package session wires capture to history the way the host application
// does: every non-empty recording becomes a record, empty ones are dropped.
package session

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/roman-kulish/vibesign/internal/capture"
	"github.com/roman-kulish/vibesign/internal/history"
	"github.com/roman-kulish/vibesign/internal/stroke"
)

// Canvas displays the stroke being recorded.
type Canvas interface {
	Redraw(live stroke.Stream)
}

// WithLogger sets the logger for the session
func WithLogger(logger *slog.Logger) func(s *Session) {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithCanvas sets the canvas redrawn while recording.
func WithCanvas(c Canvas) func(s *Session) {
	return func(s *Session) {
		s.canvas = c
	}
}

// WithPencilOnly sets the device filter of the capture controller.
func WithPencilOnly(pencilOnly bool) func(s *Session) {
	return func(s *Session) {
		s.pencilOnly = pencilOnly
	}
}

// WithHistory makes the session append to an existing history.
func WithHistory(h *history.History) func(s *Session) {
	return func(s *Session) {
		s.history = h
	}
}

// WithNow sets the wall clock used for record creation times.
func WithNow(now func() time.Time) func(s *Session) {
	return func(s *Session) {
		s.now = now
	}
}

// Session owns a capture controller and the history its recordings go to.
type Session struct {
	controller *capture.Controller
	history    *history.History
	canvas     Canvas
	pencilOnly bool
	now        func() time.Time
	logger     *slog.Logger

	mu       sync.Mutex
	current  stroke.Stream  // Last finalized recording, kept for display
	last     history.Record // Record created by the last stop, if any
	recorded bool
}

// New creates a session with an empty history.
func New(options ...func(s *Session)) *Session {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger

	s := Session{
		history:    history.New(),
		pencilOnly: true,
		now:        time.Now,
		logger:     logger,
	}

	for _, option := range options {
		option(&s)
	}

	s.controller = capture.NewController(
		capture.WithLogger(s.logger),
		capture.WithPencilOnly(s.pencilOnly),
		capture.WithStopHandler(s.accept),
		capture.WithRedrawHandler(s.redraw),
	)

	return &s
}

// Start clears the canvas and begins a new recording.
func (s *Session) Start() {
	s.mu.Lock()
	s.current = stroke.Stream{}
	s.mu.Unlock()

	s.controller.Clear()
	s.controller.Start()
}

// Stop ends the recording. It returns the record created for it, or false
// when the recording was empty and got discarded.
func (s *Session) Stop() (history.Record, bool) {
	if !s.controller.IsRecording() {
		return history.Record{}, false
	}

	s.controller.Stop() // accept runs before Stop returns

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.recorded
}

// Clear discards the in-progress recording and the last finalized one.
func (s *Session) Clear() {
	s.mu.Lock()
	s.current = stroke.Stream{}
	s.mu.Unlock()

	s.controller.Clear()
}

// Input feeds an input event to the capture controller.
func (s *Session) Input(event capture.RawEvent, class capture.DeviceClass) int {
	return s.controller.OnInputEvent(event, class)
}

// SetPencilOnly changes the device filter.
func (s *Session) SetPencilOnly(pencilOnly bool) {
	s.controller.SetPencilOnly(pencilOnly)
}

// Recording reports whether a recording is in progress.
func (s *Session) Recording() bool {
	return s.controller.IsRecording()
}

// History returns the history recordings are added to.
func (s *Session) History() *history.History {
	return s.history
}

// Current returns the last finalized recording, until the next Start or
// Clear.
func (s *Session) Current() stroke.Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// accept is the stop handler of the capture controller.
func (s *Session) accept(stream stroke.Stream) {
	record, ok := s.history.Add(stream, s.now())

	s.mu.Lock()
	s.current = stream
	s.last, s.recorded = record, ok
	s.mu.Unlock()

	if !ok {
		s.logger.Info("empty recording discarded")
		return
	}

	st := stream.Stats()
	s.logger.Info("signature recorded",
		slog.String("id", record.ID.String()),
		slog.String("label", history.Label(s.history.Len())),
		slog.String("samples", humanize.Comma(int64(st.Count))),
		slog.String("duration", humanize.FtoaWithDigits(st.Duration, 2)+"s"),
		slog.String("avgForce", humanize.FtoaWithDigits(st.AverageForce, 2)))
}

func (s *Session) redraw(live stroke.Stream) {
	if s.canvas != nil {
		s.canvas.Redraw(live)
	}
}
