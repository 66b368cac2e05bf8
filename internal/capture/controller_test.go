package capture

import (
	"testing"

	"github.com/roman-kulish/vibesign/internal/stroke"
)

func touch(ts, x, y float64) RawEvent {
	return RawEvent{SubEvent: SubEvent{Timestamp: ts, Location: stroke.Point{X: x, Y: y}, Force: 1}}
}

func TestController_IgnoresInputWhileIdle(t *testing.T) {
	c := NewController()

	if n := c.OnInputEvent(touch(0, 1, 1), DevicePencil); n != 0 {
		t.Errorf("Expected no samples accepted while idle, got %d", n)
	}
	if c.Live().Len() != 0 {
		t.Error("Idle controller should not accumulate samples")
	}
}

func TestController_PencilOnlyFilter(t *testing.T) {
	var calls int
	var received stroke.Stream
	c := NewController(WithStopHandler(func(s stroke.Stream) {
		calls++
		received = s
	}))

	c.Start()
	inputs := []struct {
		event RawEvent
		class DeviceClass
	}{
		{touch(0.00, 0, 0), DevicePencil},
		{touch(0.01, 5, 5), DeviceFinger},
		{touch(0.02, 1, 1), DevicePencil},
		{touch(0.03, 6, 6), DeviceFinger},
		{touch(0.04, 2, 2), DevicePencil},
	}
	for _, in := range inputs {
		c.OnInputEvent(in.event, in.class)
	}
	stream := c.Stop()

	if stream.Len() != 3 {
		t.Fatalf("Expected 3 samples, got %d", stream.Len())
	}
	for i := 0; i < 3; i++ {
		if x := stream.At(i).Location.X; x != float64(i) {
			t.Errorf("Sample %d: expected x=%d, got %.0f", i, i, x)
		}
	}
	if calls != 1 {
		t.Errorf("Expected stop handler to be called once, got %d", calls)
	}
	if received.Len() != stream.Len() {
		t.Errorf("Stop handler received %d samples, Stop returned %d", received.Len(), stream.Len())
	}
	if c.State() != StateIdle {
		t.Errorf("Expected idle state after Stop, got %s", c.State())
	}
}

func TestController_AcceptsAnyDeviceWhenFilterDisabled(t *testing.T) {
	c := NewController(WithPencilOnly(false))

	c.Start()
	c.OnInputEvent(touch(0, 0, 0), DeviceFinger)
	c.OnInputEvent(touch(1, 0, 0), DeviceMouse)
	c.OnInputEvent(touch(2, 0, 0), DevicePencil)

	if n := c.Stop().Len(); n != 3 {
		t.Errorf("Expected 3 samples, got %d", n)
	}
}

func TestController_CoalescedEvents(t *testing.T) {
	c := NewController()
	c.Start()

	event := RawEvent{
		SubEvent: SubEvent{Timestamp: 0.03, Location: stroke.Point{X: 3}},
		Coalesced: []SubEvent{
			{Timestamp: 0.01, Location: stroke.Point{X: 1}},
			{Timestamp: 0.02, Location: stroke.Point{X: 2}, Device: DeviceFinger},
			{Timestamp: 0.03, Location: stroke.Point{X: 3}},
		},
	}
	if n := c.OnInputEvent(event, DevicePencil); n != 2 {
		t.Errorf("Expected 2 accepted readings, got %d", n)
	}

	stream := c.Stop()
	expected := []float64{1, 3}
	if stream.Len() != len(expected) {
		t.Fatalf("Expected %d samples, got %d", len(expected), stream.Len())
	}
	for i, x := range expected {
		if got := stream.At(i).Location.X; got != x {
			t.Errorf("Sample %d: expected x=%.0f, got %.0f", i, x, got)
		}
	}
}

func TestController_EmptyRecording(t *testing.T) {
	var calls int
	c := NewController(WithStopHandler(func(s stroke.Stream) {
		calls++
		if !s.IsEmpty() {
			t.Errorf("Expected an empty stream, got %d samples", s.Len())
		}
	}))

	c.Start()
	if stream := c.Stop(); !stream.IsEmpty() {
		t.Errorf("Expected zero length stream, got %d", stream.Len())
	}
	if calls != 1 {
		t.Errorf("Expected one stop callback, got %d", calls)
	}

	// Stop while idle has nothing to deliver
	c.Stop()
	if calls != 1 {
		t.Errorf("Stop while idle should not invoke the handler, got %d calls", calls)
	}
}

func TestController_StartClearsPreviousData(t *testing.T) {
	c := NewController()

	c.Start()
	c.OnInputEvent(touch(0, 0, 0), DevicePencil)
	c.OnInputEvent(touch(1, 0, 0), DevicePencil)
	c.Start()
	c.OnInputEvent(touch(2, 0, 0), DevicePencil)

	if n := c.Stop().Len(); n != 1 {
		t.Errorf("Expected restart to discard earlier samples, got %d samples", n)
	}
}

func TestController_ClearRedraws(t *testing.T) {
	var frames []int
	c := NewController(WithRedrawHandler(func(s stroke.Stream) {
		frames = append(frames, s.Len())
	}))

	c.Clear() // allowed while idle
	c.Start()
	c.OnInputEvent(touch(0, 0, 0), DevicePencil)
	c.OnInputEvent(touch(1, 0, 0), DeviceFinger) // filtered, no redraw
	c.OnInputEvent(touch(2, 0, 0), DevicePencil)
	c.Clear()

	if !c.IsRecording() {
		t.Error("Clear should not change the recording state")
	}
	if n := c.Stop().Len(); n != 0 {
		t.Errorf("Expected Clear to discard in-progress samples, got %d", n)
	}

	expected := []int{0, 1, 2, 0}
	if len(frames) != len(expected) {
		t.Fatalf("Expected %d redraws, got %d: %v", len(expected), len(frames), frames)
	}
	for i, n := range expected {
		if frames[i] != n {
			t.Errorf("Redraw %d: expected %d samples, got %d", i, n, frames[i])
		}
	}
}

func TestDeviceClass_Text(t *testing.T) {
	testCases := []struct {
		text    string
		want    DeviceClass
		wantErr bool
	}{
		{"pencil", DevicePencil, false},
		{"Finger", DeviceFinger, false},
		{" mouse ", DeviceMouse, false},
		{"stylus", DeviceUnknown, true},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			var d DeviceClass
			err := d.UnmarshalText([]byte(tc.text))
			if (err != nil) != tc.wantErr {
				t.Fatalf("Unexpected error state: %v", err)
			}
			if !tc.wantErr && d != tc.want {
				t.Errorf("Expected %s, got %s", tc.want, d)
			}
		})
	}
}
