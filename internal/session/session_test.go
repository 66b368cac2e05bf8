package session

import (
	"testing"
	"time"

	"github.com/roman-kulish/vibesign/internal/capture"
	"github.com/roman-kulish/vibesign/internal/stroke"
)

type canvasRecorder struct {
	frames []int
}

func (c *canvasRecorder) Redraw(live stroke.Stream) {
	c.frames = append(c.frames, live.Len())
}

func pencil(ts float64) capture.RawEvent {
	return capture.RawEvent{SubEvent: capture.SubEvent{Timestamp: ts, Location: stroke.Point{X: ts, Y: ts}, Force: 0.5}}
}

func TestSession_EmptyRecordingDiscarded(t *testing.T) {
	s := New()

	s.Start()
	record, ok := s.Stop()
	if ok {
		t.Errorf("Expected no record for an empty recording, got %s", record.ID)
	}
	if s.History().Len() != 0 {
		t.Errorf("Expected empty history, got %d records", s.History().Len())
	}
}

func TestSession_RecordsNewestFirst(t *testing.T) {
	now := time.Date(2025, 5, 16, 12, 0, 0, 0, time.UTC)
	s := New(WithNow(func() time.Time {
		now = now.Add(time.Minute)
		return now
	}))

	s.Start()
	s.Input(pencil(0), capture.DevicePencil)
	s.Input(pencil(0.1), capture.DeviceFinger)
	first, ok := s.Stop()
	if !ok {
		t.Fatal("Expected a record for the first recording")
	}
	if first.Samples.Len() != 1 {
		t.Errorf("Expected finger input to be filtered, got %d samples", first.Samples.Len())
	}
	if s.Current().Len() != 1 {
		t.Error("Current should hold the last finalized recording")
	}

	s.SetPencilOnly(false)
	s.Start()
	if s.Current().Len() != 0 {
		t.Error("Start should clear the last finalized recording")
	}
	s.Input(pencil(1), capture.DeviceFinger)
	s.Input(pencil(1.1), capture.DevicePencil)
	second, _ := s.Stop()

	records := s.History().Records()
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].ID != second.ID || records[1].ID != first.ID {
		t.Error("Expected newest record first")
	}
	if !records[0].CreatedAt.After(records[1].CreatedAt) {
		t.Error("Expected the newest record to have the latest creation time")
	}
}

func TestSession_StopWhileIdle(t *testing.T) {
	s := New()
	if _, ok := s.Stop(); ok {
		t.Error("Stop while idle should not create a record")
	}
}

func TestSession_CanvasRedraws(t *testing.T) {
	canvas := &canvasRecorder{}
	s := New(WithCanvas(canvas))

	s.Start()
	s.Input(pencil(0), capture.DevicePencil)
	s.Input(pencil(0.1), capture.DevicePencil)
	s.Clear()

	if !s.Recording() {
		t.Error("Clear should keep recording")
	}

	expected := []int{0, 1, 2, 0}
	if len(canvas.frames) != len(expected) {
		t.Fatalf("Expected %d redraws, got %v", len(expected), canvas.frames)
	}
	for i, n := range expected {
		if canvas.frames[i] != n {
			t.Errorf("Redraw %d: expected %d samples, got %d", i, n, canvas.frames[i])
		}
	}
}
