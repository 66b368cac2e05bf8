// Package render draws signature previews: force-colored dots placed with
// the bounding-box normalizer, an optional annotation bar and animated
// replays encoded as GIF.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/vector"

	"github.com/roman-kulish/vibesign/internal/geometry"
	"github.com/roman-kulish/vibesign/internal/stroke"
)

const (
	defaultWidth          = 200
	defaultHeight         = 200
	defaultPadding        = 2.0
	defaultDotSize        = 2.0
	defaultFontSize       = 10.0
	defaultDatetimeFormat = time.DateTime

	// kappa places the control points of a cubic Bézier quarter circle.
	kappa = 0.5522847498
)

var (
	backgroundColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	frameColor      = color.RGBA{R: 209, G: 209, B: 214, A: 255}
	textColor       = color.RGBA{R: 28, G: 28, B: 30, A: 255}
)

// Config holds the rendering options. Zero values select defaults.
type Config struct {
	Width   int     // Drawing area width in pixels
	Height  int     // Drawing area height in pixels
	Padding float64 // Space kept free on every side of the drawing
	DotSize float64 // Diameter of a single sample dot

	Theme ColorTheme // Color scheme for force values

	// Annotation bar configuration
	Annotate       bool
	FontSize       float64        // Font size in points
	Location       *time.Location // Timezone for the creation time
	DatetimeFormat string         // Format of the creation time
}

// Meta describes the rendered signature for the annotation bar.
type Meta struct {
	Label     string
	CreatedAt time.Time
	Stats     stroke.Stats

	// Force fixes the color scale. When nil, the range of the rendered
	// samples is used.
	Force *ForceBounds
}

// Renderer draws signature previews. It is safe for concurrent use.
type Renderer struct {
	config Config
	font   *truetype.Font
}

// NewRenderer creates a renderer with the given configuration.
func NewRenderer(config Config) (*Renderer, error) {
	if config.Width <= 0 {
		config.Width = defaultWidth
	}
	if config.Height <= 0 {
		config.Height = defaultHeight
	}
	if config.Padding < 0 {
		return nil, fmt.Errorf("padding must not be negative: %0.2f", config.Padding)
	}
	if config.Padding == 0 {
		config.Padding = defaultPadding
	}
	if config.DotSize <= 0 {
		config.DotSize = defaultDotSize
	}
	if config.Theme == "" {
		config.Theme = InkTheme
	}
	if config.FontSize <= 0 {
		config.FontSize = defaultFontSize
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.DatetimeFormat == "" {
		config.DatetimeFormat = defaultDatetimeFormat
	}

	parsedFont, err := freetype.ParseFont(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	return &Renderer{config: config, font: parsedFont}, nil
}

// Config returns the effective configuration.
func (r *Renderer) Config() Config {
	return r.config
}

// Render draws the samples of s. The bounding box is computed over s itself,
// so rendering a growing prefix rescales the drawing as it grows.
func (r *Renderer) Render(s stroke.Stream, meta Meta) (*image.RGBA, error) {
	var ann *annotator
	var barHeight int
	if r.config.Annotate {
		ann = newAnnotator(r.font, r.config)
		defer ann.Close()
		barHeight = ann.height(meta)
	}

	img := image.NewRGBA(image.Rect(0, 0, r.config.Width, r.config.Height+barHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	area := image.Rect(0, 0, r.config.Width, r.config.Height)
	r.drawFrame(img, area)
	r.drawDots(img, area, s, meta.Force)

	if ann != nil {
		bar := image.Rect(0, area.Max.Y, r.config.Width, area.Max.Y+barHeight)
		if err := ann.annotate(img, bar, meta); err != nil {
			return nil, fmt.Errorf("drawing annotations: %w", err)
		}
	}

	return img, nil
}

func (r *Renderer) drawFrame(img *image.RGBA, area image.Rectangle) {
	for x := area.Min.X; x < area.Max.X; x++ {
		img.SetRGBA(x, area.Min.Y, frameColor)
		img.SetRGBA(x, area.Max.Y-1, frameColor)
	}
	for y := area.Min.Y; y < area.Max.Y; y++ {
		img.SetRGBA(area.Min.X, y, frameColor)
		img.SetRGBA(area.Max.X-1, y, frameColor)
	}
}

func (r *Renderer) drawDots(img *image.RGBA, area image.Rectangle, s stroke.Stream, force *ForceBounds) {
	points := s.Points()
	b, ok := geometry.BoundsOf(points)
	if !ok {
		return
	}

	radius := r.config.DotSize / 2
	padding := max(r.config.Padding, radius+1)
	t := geometry.Fit(b, float64(area.Dx()), float64(area.Dy()), padding)

	bounds := forceBoundsOf(s)
	if force != nil {
		bounds = *force
	}
	mapper := NewColorMapper(r.config.Theme, bounds)

	z := vector.NewRasterizer(0, 0)
	for i, p := range points {
		q := t.Apply(p)
		drawDot(img, z,
			float64(area.Min.X)+q.X, float64(area.Min.Y)+q.Y, radius,
			mapper.Color(s.At(i).Force))
	}
}

// drawDot rasterizes an anti-aliased disc using a rasterizer sized to the
// dot only.
func drawDot(dst *image.RGBA, z *vector.Rasterizer, cx, cy, radius float64, c color.Color) {
	rect := image.Rect(
		int(math.Floor(cx-radius)), int(math.Floor(cy-radius)),
		int(math.Ceil(cx+radius)), int(math.Ceil(cy+radius)),
	)
	if rect.Empty() || !rect.In(dst.Bounds()) {
		return
	}

	ox := float32(cx - float64(rect.Min.X))
	oy := float32(cy - float64(rect.Min.Y))
	rr := float32(radius)
	k := float32(kappa * radius)

	z.Reset(rect.Dx(), rect.Dy())
	z.MoveTo(ox+rr, oy)
	z.CubeTo(ox+rr, oy+k, ox+k, oy+rr, ox, oy+rr)
	z.CubeTo(ox-k, oy+rr, ox-rr, oy+k, ox-rr, oy)
	z.CubeTo(ox-rr, oy-k, ox-k, oy-rr, ox, oy-rr)
	z.CubeTo(ox+k, oy-rr, ox+rr, oy-k, ox+rr, oy)
	z.ClosePath()
	z.Draw(dst, rect, image.NewUniform(c), image.Point{})
}

func forceBoundsOf(s stroke.Stream) ForceBounds {
	if s.IsEmpty() {
		return ForceBounds{}
	}

	b := ForceBounds{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, sample := range s.All() {
		if math.IsNaN(sample.Force) {
			continue
		}
		b.Min = min(b.Min, sample.Force)
		b.Max = max(b.Max, sample.Force)
	}
	if b.Min > b.Max {
		return ForceBounds{}
	}
	return b
}
