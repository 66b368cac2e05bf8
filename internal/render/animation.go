package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"time"

	"golang.org/x/image/draw"

	"github.com/roman-kulish/vibesign/internal/replay"
	"github.com/roman-kulish/vibesign/internal/stroke"
)

const (
	DefaultFrameInterval = 40 * time.Millisecond
	DefaultMaxFrames     = 600

	minFrameInterval = 10 * time.Millisecond // GIF delays are in 1/100 s
)

// ErrEmptyStream is returned when animating a stream without samples.
var ErrEmptyStream = errors.New("stream has no samples")

// AnimationConfig controls the replay sampling.
type AnimationConfig struct {
	FrameInterval time.Duration // Virtual time between two sampled frames
	MaxFrames     int           // Upper limit of distinct frames
	Dwell         time.Duration // Pause on the finished drawing, replay.DwellDuration when zero
	MinDelay      time.Duration // Floor between samples, replay.MinDelay when zero
}

// Animate replays s through a replay.Scheduler driven by a virtual clock and
// records one drawing cycle, dwell included, as a looping GIF. Consecutive
// samples with nothing new revealed are merged into a single frame.
func (r *Renderer) Animate(s stroke.Stream, meta Meta, config AnimationConfig) (*gif.GIF, error) {
	if s.IsEmpty() {
		return nil, ErrEmptyStream
	}
	if config.FrameInterval <= 0 {
		config.FrameInterval = DefaultFrameInterval
	}
	if config.FrameInterval < minFrameInterval {
		return nil, fmt.Errorf("frame interval %s is shorter than %s", config.FrameInterval, minFrameInterval)
	}
	if config.MaxFrames <= 0 {
		config.MaxFrames = DefaultMaxFrames
	}

	force := forceBoundsOf(s)
	meta.Force = &force
	palette := r.palette(force)
	ticks := int(config.FrameInterval / minFrameInterval)

	clock := replay.NewManualClock()
	options := []func(*replay.Scheduler){replay.WithClock(clock)}
	if config.Dwell > 0 {
		options = append(options, replay.WithDwell(config.Dwell))
	}
	if config.MinDelay > 0 {
		options = append(options, replay.WithMinDelay(config.MinDelay))
	}

	scheduler := replay.NewScheduler(nil, options...)
	scheduler.Present(s, true)
	defer scheduler.Cancel()

	anim := &gif.GIF{}
	shown := -1
	for scheduler.Cycle() == 0 {
		revealed := scheduler.Revealed()
		if revealed.Len() == shown {
			anim.Delay[len(anim.Delay)-1] += ticks
			clock.Advance(config.FrameInterval)
			continue
		}
		if len(anim.Image) == config.MaxFrames {
			break
		}

		img, err := r.Render(revealed, meta)
		if err != nil {
			return nil, fmt.Errorf("rendering frame %d: %w", len(anim.Image), err)
		}

		anim.Image = append(anim.Image, toPaletted(img, palette))
		anim.Delay = append(anim.Delay, ticks)
		shown = revealed.Len()

		clock.Advance(config.FrameInterval)
	}

	return anim, nil
}

// palette holds the fixed interface colors followed by the theme colors.
func (r *Renderer) palette(force ForceBounds) color.Palette {
	p := color.Palette{backgroundColor, frameColor, textColor}
	return append(p, NewColorMapperWithSize(r.config.Theme, force, 256-len(p)).Colors()...)
}

func toPaletted(img *image.RGBA, palette color.Palette) *image.Paletted {
	out := image.NewPaletted(img.Bounds(), palette)
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}
