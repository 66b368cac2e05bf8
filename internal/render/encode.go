package render

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
)

// Format is an output image format.
type Format string

const (
	ImagePNG  Format = "png"
	ImageJPEG Format = "jpeg"
	ImageGIF  Format = "gif" // Animated replay
)

// ParseFormat returns the format with the given name, case-insensitive.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case ImagePNG, ImageJPEG, ImageGIF:
		return f, nil
	case "jpg":
		return ImageJPEG, nil
	default:
		return "", fmt.Errorf("unsupported image format %q", name)
	}
}

// Ext returns the file name extension of the format, dot included.
func (f Format) Ext() string {
	return "." + string(f)
}

// Encode writes a still image in format f. A GIF is written as a single
// frame.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case ImagePNG:
		return png.Encode(w, img)
	case ImageJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{
			Quality: 98,
		})
	case ImageGIF:
		return gif.Encode(w, img, nil)
	default:
		return fmt.Errorf("unsupported image format %q", f)
	}
}

// EncodeAnimation writes an animation produced by Renderer.Animate.
func EncodeAnimation(w io.Writer, anim *gif.GIF) error {
	return gif.EncodeAll(w, anim)
}
