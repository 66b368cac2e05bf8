package capture

import (
	"fmt"
	"strings"

	"github.com/roman-kulish/vibesign/internal/stroke"
)

const (
	DeviceUnknown DeviceClass = iota
	DevicePencil              // Stylus / digitizer pen
	DeviceFinger              // Direct touch
	DeviceMouse               // Indirect pointer: mouse, trackpad
)

// DeviceClass identifies the kind of hardware an input event originates from.
type DeviceClass uint8

var deviceNames = map[DeviceClass]string{
	DeviceUnknown: "unknown",
	DevicePencil:  "pencil",
	DeviceFinger:  "finger",
	DeviceMouse:   "mouse",
}

func (d DeviceClass) String() string {
	if name, ok := deviceNames[d]; ok {
		return name
	}
	return fmt.Sprintf("DeviceClass(%d)", uint8(d))
}

// MarshalText implements encoding.TextMarshaler.
func (d DeviceClass) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DeviceClass) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for class, n := range deviceNames {
		if n == name {
			*d = class
			return nil
		}
	}
	return fmt.Errorf("unknown device class '%s'", text)
}

// SubEvent is one physical reading carried by a raw input event.
type SubEvent struct {
	Timestamp float64      // Seconds, monotonic
	Location  stroke.Point // Precise location on the capture surface
	Force     float64
	Altitude  float64 // Radians
	Azimuth   float64 // Radians

	// Device overrides the class of the enclosing event when not DeviceUnknown.
	Device DeviceClass
}

// Sample converts the reading into a stroke sample.
func (e SubEvent) Sample() stroke.Sample {
	return stroke.Sample{
		Timestamp: e.Timestamp,
		Location:  e.Location,
		Force:     e.Force,
		Altitude:  e.Altitude,
		Azimuth:   e.Azimuth,
	}
}

// RawEvent is an input event as delivered by the input source. Devices that
// sample faster than events are delivered bundle the intermediate readings
// in Coalesced; the primary reading is the most recent one and is repeated
// as the last coalesced entry in that case.
type RawEvent struct {
	SubEvent
	Coalesced []SubEvent
}

// Expand returns the readings carried by the event, in arrival order. An
// event without coalesced readings expands to itself.
func (e RawEvent) Expand() []SubEvent {
	if len(e.Coalesced) == 0 {
		return []SubEvent{e.SubEvent}
	}
	out := make([]SubEvent, len(e.Coalesced))
	copy(out, e.Coalesced)
	return out
}
