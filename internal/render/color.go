package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"
)

// ColorTheme is a predefined color scheme for force visualization.
type ColorTheme string

const (
	InkTheme       ColorTheme = "ink"       // Light blue to deep blue
	ClassicTheme   ColorTheme = "classic"   // Blue to red transition
	GrayscaleTheme ColorTheme = "grayscale" // Light gray to black transition
	JungleTheme    ColorTheme = "jungle"    // Dark green to yellow transition
	ThermalTheme   ColorTheme = "thermal"   // Black to red to yellow
	MarineTheme    ColorTheme = "marine"    // Deep blue to cyan

	DefaultColorMapSize = 256 // Default number of colors in the map
)

// Themes lists the supported color themes.
var Themes = []ColorTheme{InkTheme, ClassicTheme, GrayscaleTheme, JungleTheme, ThermalTheme, MarineTheme}

// ParseColorTheme returns the theme with the given name, case-insensitive.
func ParseColorTheme(name string) (ColorTheme, error) {
	theme := ColorTheme(strings.ToLower(strings.TrimSpace(name)))
	if theme == "" {
		return InkTheme, nil
	}
	for _, t := range Themes {
		if t == theme {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown color theme %q", name)
}

// ForceBounds is the force range mapped onto the color scale.
type ForceBounds struct {
	Min float64
	Max float64
}

// ColorMapper maps force values onto pre-computed theme colors.
type ColorMapper struct {
	colorMap    []color.Color
	theme       func(float64) color.Color
	themeName   ColorTheme
	size        int
	boundsMin   float64
	boundsRange float64
}

// NewColorMapper creates a color mapper with the default map size.
func NewColorMapper(theme ColorTheme, bounds ForceBounds) *ColorMapper {
	return NewColorMapperWithSize(theme, bounds, DefaultColorMapSize)
}

// NewColorMapperWithSize creates a color mapper holding size pre-computed
// colors.
func NewColorMapperWithSize(theme ColorTheme, bounds ForceBounds, size int) *ColorMapper {
	if size <= 1 {
		size = DefaultColorMapSize
	}

	cm := &ColorMapper{
		colorMap:  make([]color.Color, size),
		theme:     colorThemeFunc(theme),
		themeName: theme,
		size:      size,
	}
	for i := range size {
		cm.colorMap[i] = cm.theme(float64(i) / float64(size-1))
	}
	cm.UpdateBounds(bounds)
	return cm
}

// UpdateBounds changes the force range. A collapsed range maps every value
// onto the strongest color.
func (cm *ColorMapper) UpdateBounds(bounds ForceBounds) {
	cm.boundsMin = bounds.Min
	cm.boundsRange = bounds.Max - bounds.Min
}

// Color returns the color for the given force, clamped to the map.
func (cm *ColorMapper) Color(force float64) color.Color {
	if cm.boundsRange <= 0 || math.IsNaN(force) {
		return cm.colorMap[cm.size-1]
	}

	index := int(math.Round((force - cm.boundsMin) / cm.boundsRange * float64(cm.size-1)))
	if index < 0 {
		return cm.colorMap[0]
	}
	if index >= cm.size {
		return cm.colorMap[cm.size-1]
	}
	return cm.colorMap[index]
}

// Colors returns the pre-computed color map.
func (cm *ColorMapper) Colors() []color.Color {
	return cm.colorMap
}

// ThemeName returns the color theme name.
func (cm *ColorMapper) ThemeName() ColorTheme {
	return cm.themeName
}

// HSV represents a color in HSV (Hue, Saturation, Value) color space
type HSV struct {
	H float64 // Hue angle in degrees [0-360]
	S float64 // Saturation [0-1]
	V float64 // Value/Brightness [0-1]
}

// RGB converts HSV to RGB color space
func (hsv HSV) RGB() color.RGBA {
	hsv.V = math.Max(0, math.Min(1, hsv.V))
	hsv.S = math.Max(0, math.Min(1, hsv.S))

	if hsv.S == 0 {
		v := uint8(hsv.V * 255)
		return color.RGBA{R: v, G: v, B: v, A: 255}
	}

	h := math.Mod(hsv.H, 360)
	if h < 0 {
		h += 360
	}
	h /= 60

	i := int(h)
	f := h - float64(i)

	v := uint8(hsv.V * 255)
	p := uint8((hsv.V * (1 - hsv.S)) * 255)
	q := uint8((hsv.V * (1 - (hsv.S * f))) * 255)
	t := uint8((hsv.V * (1 - (hsv.S * (1 - f)))) * 255)

	switch i {
	case 0:
		return color.RGBA{R: v, G: t, B: p, A: 255}
	case 1:
		return color.RGBA{R: q, G: v, B: p, A: 255}
	case 2:
		return color.RGBA{R: p, G: v, B: t, A: 255}
	case 3:
		return color.RGBA{R: p, G: q, B: v, A: 255}
	case 4:
		return color.RGBA{R: t, G: p, B: v, A: 255}
	default: // case 5:
		return color.RGBA{R: v, G: p, B: q, A: 255}
	}
}

// colorThemeFunc returns the mapping of a normalized force in [0, 1] onto a
// color. Light pressure stays visible on a white background in every theme.
func colorThemeFunc(theme ColorTheme) func(float64) color.Color {
	switch theme {
	case ClassicTheme:
		return func(force float64) color.Color {
			return HSV{
				H: 240 - (force * 240),
				S: 0.9 + (force * 0.1),
				V: 0.55 + math.Pow(force, 0.7)*0.45,
			}.RGB()
		}

	case GrayscaleTheme:
		return func(force float64) color.Color {
			v := uint8((1 - (0.25 + math.Pow(force, 0.7)*0.75)) * 200)
			return color.RGBA{R: v, G: v, B: v, A: 255}
		}

	case JungleTheme:
		return func(force float64) color.Color {
			return HSV{
				H: 120 - (force * 60),
				S: 1.0,
				V: 0.3 + (math.Pow(force, 0.6) * 0.5),
			}.RGB()
		}

	case ThermalTheme:
		return func(force float64) color.Color {
			if force < 0.5 {
				return color.RGBA{
					R: uint8(80 + force*2*175),
					A: 255,
				}
			}
			return color.RGBA{
				R: 255,
				G: uint8((force - 0.5) * 2 * 180),
				A: 255,
			}
		}

	case MarineTheme:
		return func(force float64) color.Color {
			return HSV{
				H: 240 - (force * 60),
				S: 1.0 - (force * 0.5),
				V: 0.35 + (math.Pow(force, 0.6) * 0.5),
			}.RGB()
		}

	default: // InkTheme
		return func(force float64) color.Color {
			return HSV{
				H: 215,
				S: 0.35 + force*0.65,
				V: 0.95 - math.Pow(force, 0.8)*0.55,
			}.RGB()
		}
	}
}
