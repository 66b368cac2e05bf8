package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
	"time"

	"github.com/roman-kulish/vibesign/internal/stroke"
)

func sample(t float64, x, y, force float64) stroke.Sample {
	return stroke.Sample{Timestamp: t, Location: stroke.Point{X: x, Y: y}, Force: force}
}

func TestColorMapper_Clamps(t *testing.T) {
	cm := NewColorMapper(ClassicTheme, ForceBounds{Min: 0, Max: 1})
	colors := cm.Colors()

	tests := []struct {
		name  string
		force float64
		want  color.Color
	}{
		{"below range", -5, colors[0]},
		{"lower bound", 0, colors[0]},
		{"upper bound", 1, colors[len(colors)-1]},
		{"above range", 7, colors[len(colors)-1]},
		{"not a number", math.NaN(), colors[len(colors)-1]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cm.Color(tt.force); got != tt.want {
				t.Errorf("Expected color %v, got %v", tt.want, got)
			}
		})
	}
}

func TestColorMapper_CollapsedRange(t *testing.T) {
	cm := NewColorMapper(InkTheme, ForceBounds{Min: 0.5, Max: 0.5})
	colors := cm.Colors()

	if got := cm.Color(0.5); got != colors[len(colors)-1] {
		t.Errorf("Expected strongest color for collapsed range, got %v", got)
	}
}

func TestHSV_RGB(t *testing.T) {
	tests := []struct {
		name string
		hsv  HSV
		want color.RGBA
	}{
		{"red", HSV{H: 0, S: 1, V: 1}, color.RGBA{R: 255, A: 255}},
		{"green", HSV{H: 120, S: 1, V: 1}, color.RGBA{G: 255, A: 255}},
		{"blue", HSV{H: 240, S: 1, V: 1}, color.RGBA{B: 255, A: 255}},
		{"wrapped hue", HSV{H: 360, S: 1, V: 1}, color.RGBA{R: 255, A: 255}},
		{"gray", HSV{H: 77, S: 0, V: 0.5}, color.RGBA{R: 127, G: 127, B: 127, A: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.hsv.RGB(); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseColorTheme(t *testing.T) {
	tests := []struct {
		input   string
		want    ColorTheme
		wantErr bool
	}{
		{"", InkTheme, false},
		{"thermal", ThermalTheme, false},
		{" Marine ", MarineTheme, false},
		{"rainbow", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseColorTheme(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("Expected theme %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"png", ImagePNG, false},
		{"JPG", ImageJPEG, false},
		{"jpeg", ImageJPEG, false},
		{"gif", ImageGIF, false},
		{"bmp", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("Expected format %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNewRenderer_Defaults(t *testing.T) {
	r, err := NewRenderer(Config{})
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}

	cfg := r.Config()
	if cfg.Width != defaultWidth || cfg.Height != defaultHeight {
		t.Errorf("Expected %dx%d, got %dx%d", defaultWidth, defaultHeight, cfg.Width, cfg.Height)
	}
	if cfg.Padding != defaultPadding {
		t.Errorf("Expected padding %0.1f, got %0.1f", defaultPadding, cfg.Padding)
	}
	if cfg.Theme != InkTheme {
		t.Errorf("Expected theme %q, got %q", InkTheme, cfg.Theme)
	}

	if _, err = NewRenderer(Config{Padding: -1}); err == nil {
		t.Error("Expected error for negative padding")
	}
}

func TestRender_EmptyStream(t *testing.T) {
	r, err := NewRenderer(Config{Width: 50, Height: 40})
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}

	img, err := r.Render(stroke.Stream{}, Meta{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if got := img.Bounds().Size(); got != image.Pt(50, 40) {
		t.Fatalf("Expected size 50x40, got %v", got)
	}
	for y := 1; y < 39; y++ {
		for x := 1; x < 49; x++ {
			if c := img.RGBAAt(x, y); c != backgroundColor {
				t.Fatalf("Expected background at (%d, %d), got %v", x, y, c)
			}
		}
	}
	if c := img.RGBAAt(0, 0); c != frameColor {
		t.Errorf("Expected frame color at the corner, got %v", c)
	}
}

func TestRender_DotsInsidePaddedArea(t *testing.T) {
	const (
		size    = 100
		padding = 10.0
	)

	r, err := NewRenderer(Config{Width: size, Height: size, Padding: padding, DotSize: 2})
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}

	s := stroke.NewStream(
		sample(0, -500, 20, 0.1),
		sample(0.1, 300, 40, 0.5),
		sample(0.2, 900, -80, 1.0),
	)

	img, err := r.Render(s, Meta{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var painted int
	for y := 1; y < size-1; y++ {
		for x := 1; x < size-1; x++ {
			if img.RGBAAt(x, y) == backgroundColor {
				continue
			}
			painted++
			if float64(x) < padding-1 || float64(x) > size-padding+1 ||
				float64(y) < padding-1 || float64(y) > size-padding+1 {
				t.Errorf("Pixel (%d, %d) painted outside the padded area", x, y)
			}
		}
	}
	if painted == 0 {
		t.Error("Expected dots to be painted")
	}
}

func TestRender_Annotations(t *testing.T) {
	r, err := NewRenderer(Config{Width: 200, Height: 100, Annotate: true, Location: time.UTC})
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}

	s := stroke.NewStream(sample(0, 0, 0, 0.5), sample(1.5, 10, 10, 0.5))
	meta := Meta{
		Label:     "Signature 1",
		CreatedAt: time.Date(2025, 5, 16, 9, 0, 0, 0, time.UTC),
		Stats:     s.Stats(),
	}

	img, err := r.Render(s, meta)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if img.Bounds().Dy() <= 100 {
		t.Fatalf("Expected annotation bar below the drawing, got height %d", img.Bounds().Dy())
	}

	var text int
	for y := 100; y < img.Bounds().Dy(); y++ {
		for x := 0; x < 200; x++ {
			if img.RGBAAt(x, y) != backgroundColor {
				text++
			}
		}
	}
	if text == 0 {
		t.Error("Expected text in the annotation bar")
	}
}

func TestAnimate_FramesAndDelays(t *testing.T) {
	r, err := NewRenderer(Config{Width: 40, Height: 40})
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}

	s := stroke.NewStream(
		sample(0, 0, 0, 0.2),
		sample(0.25, 10, 5, 0.6),
		sample(0.5, 20, 20, 0.9),
	)

	anim, err := r.Animate(s, Meta{}, AnimationConfig{
		FrameInterval: 40 * time.Millisecond,
		Dwell:         time.Second,
	})
	if err != nil {
		t.Fatalf("Animate failed: %v", err)
	}

	if len(anim.Image) != 3 {
		t.Fatalf("Expected 3 frames, got %d", len(anim.Image))
	}

	wantDelays := []int{28, 24, 100}
	for i, want := range wantDelays {
		if anim.Delay[i] != want {
			t.Errorf("Frame %d: expected delay %d, got %d", i, want, anim.Delay[i])
		}
	}

	if anim.LoopCount != 0 {
		t.Errorf("Expected an endless loop, got loop count %d", anim.LoopCount)
	}
	for i, frame := range anim.Image {
		if len(frame.Palette) != 256 {
			t.Errorf("Frame %d: expected 256 colors, got %d", i, len(frame.Palette))
		}
	}
}

func TestAnimate_Limits(t *testing.T) {
	r, err := NewRenderer(Config{Width: 40, Height: 40})
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}

	if _, err = r.Animate(stroke.Stream{}, Meta{}, AnimationConfig{}); !errors.Is(err, ErrEmptyStream) {
		t.Errorf("Expected ErrEmptyStream, got %v", err)
	}

	if _, err = r.Animate(stroke.NewStream(sample(0, 0, 0, 1)), Meta{}, AnimationConfig{
		FrameInterval: time.Millisecond,
	}); err == nil {
		t.Error("Expected error for a frame interval below 10ms")
	}

	var samples []stroke.Sample
	for i := range 10 {
		samples = append(samples, sample(float64(i), float64(i), float64(i), 0.5))
	}
	anim, err := r.Animate(stroke.NewStream(samples...), Meta{}, AnimationConfig{
		FrameInterval: 100 * time.Millisecond,
		MaxFrames:     4,
	})
	if err != nil {
		t.Fatalf("Animate failed: %v", err)
	}
	if len(anim.Image) != 4 {
		t.Errorf("Expected 4 frames, got %d", len(anim.Image))
	}
}

func TestEncode_PNG(t *testing.T) {
	r, err := NewRenderer(Config{Width: 20, Height: 20})
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}

	img, err := r.Render(stroke.NewStream(sample(0, 1, 1, 1)), Meta{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var buf bytes.Buffer
	if err = Encode(&buf, img, ImagePNG); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("Expected bounds %v, got %v", img.Bounds(), decoded.Bounds())
	}

	if err = Encode(&buf, img, Format("tiff")); err == nil {
		t.Error("Expected error for unsupported format")
	}
}
