package render

import (
	"fmt"
	"image"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	dpi         = 72.0
	spacing     = 1.3
	textMarginX = 4
	textMarginY = 3
)

type annotator struct {
	context  *freetype.Context
	config   Config
	fontFace font.Face
}

func newAnnotator(parsedFont *truetype.Font, config Config) *annotator {
	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.NewUniform(textColor))

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) lineHeight() int {
	metrics := a.fontFace.Metrics()
	return int(float64((metrics.Ascent + metrics.Descent).Round()) * spacing)
}

// height returns the size of the annotation bar for meta.
func (a *annotator) height(meta Meta) int {
	return len(a.lines(meta))*a.lineHeight() + 2*textMarginY
}

func (a *annotator) lines(meta Meta) []string {
	var lines []string
	if meta.Label != "" {
		lines = append(lines, meta.Label)
	}
	if !meta.CreatedAt.IsZero() {
		lines = append(lines, fmt.Sprintf("%s (%s)",
			meta.CreatedAt.In(a.config.Location).Format(a.config.DatetimeFormat),
			humanize.Time(meta.CreatedAt)))
	}
	lines = append(lines, fmt.Sprintf("%s pts, %ss, force %s",
		humanize.Comma(int64(meta.Stats.Count)),
		humanize.FtoaWithDigits(meta.Stats.Duration, 2),
		humanize.FtoaWithDigits(meta.Stats.AverageForce, 2)))
	return lines
}

func (a *annotator) annotate(img *image.RGBA, bar image.Rectangle, meta Meta) error {
	a.context.SetClip(bar)
	a.context.SetDst(img)

	metrics := a.fontFace.Metrics()
	pt := freetype.Pt(bar.Min.X+textMarginX, bar.Min.Y+textMarginY+metrics.Ascent.Round())
	for _, line := range a.lines(meta) {
		if _, err := a.context.DrawString(line, pt); err != nil {
			return fmt.Errorf("drawing %q: %w", line, err)
		}
		pt.Y += fixed.I(a.lineHeight())
	}
	return nil
}
