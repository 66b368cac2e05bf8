package input

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roman-kulish/vibesign/internal/capture"
	"github.com/roman-kulish/vibesign/internal/stroke"
)

const (
	KindStart Kind = "start" // Begin a recording
	KindStop  Kind = "stop"  // End the recording
	KindClear Kind = "clear" // Discard in-progress samples
	KindTouch Kind = "touch" // Input event
)

// Kind is the type of a message of the input line protocol.
type Kind string

var ErrUnknownKind = errors.New("unknown message type")

// Message is a single line of the input protocol.
type Message struct {
	Kind   Kind
	Device capture.DeviceClass // Device of a touch message
	Event  capture.RawEvent    // Payload of a touch message
}

type wireReading struct {
	Timestamp float64             `json:"timestamp"`
	X         float64             `json:"x"`
	Y         float64             `json:"y"`
	Force     float64             `json:"force"`
	Altitude  float64             `json:"altitude"`
	Azimuth   float64             `json:"azimuth"`
	Device    capture.DeviceClass `json:"device,omitempty"`
}

type wireMessage struct {
	Type Kind `json:"type"`
	wireReading
	Coalesced []wireReading `json:"coalesced,omitempty"`
}

func (r wireReading) subEvent() capture.SubEvent {
	return capture.SubEvent{
		Timestamp: r.Timestamp,
		Location:  stroke.Point{X: r.X, Y: r.Y},
		Force:     r.Force,
		Altitude:  r.Altitude,
		Azimuth:   r.Azimuth,
		Device:    r.Device,
	}
}

// ParseLine decodes one line of the input protocol:
//
//	{"type":"start"}
//	{"type":"touch","device":"pencil","timestamp":12.5,"x":10,"y":20,"force":0.4,
//	 "altitude":1.1,"azimuth":0.3,"coalesced":[{"timestamp":12.49,"x":9,"y":19,...}]}
//	{"type":"stop"}
func ParseLine(line []byte) (Message, error) {
	var wm wireMessage
	if err := json.Unmarshal(line, &wm); err != nil {
		return Message{}, fmt.Errorf("decoding message: %w", err)
	}

	switch wm.Type {
	case KindStart, KindStop, KindClear:
		return Message{Kind: wm.Type}, nil

	case KindTouch:
		event := capture.RawEvent{SubEvent: wm.subEvent()}
		event.Device = capture.DeviceUnknown // the event class is passed separately

		if len(wm.Coalesced) > 0 {
			event.Coalesced = make([]capture.SubEvent, len(wm.Coalesced))
			for i, r := range wm.Coalesced {
				event.Coalesced[i] = r.subEvent()
			}
		}

		return Message{Kind: KindTouch, Device: wm.Device, Event: event}, nil

	default:
		return Message{}, fmt.Errorf("%w '%s'", ErrUnknownKind, wm.Type)
	}
}
