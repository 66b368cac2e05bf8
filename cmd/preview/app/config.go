package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/roman-kulish/vibesign/internal/render"
)

// StdinFile selects standard input as the export to read.
const StdinFile = "-"

type Config struct {
	InputFile     string
	OutputDir     string
	Format        render.Format
	Theme         render.ColorTheme
	Width         int
	Height        int
	Padding       float64
	DotSize       float64
	TimeZone      *time.Location
	Signature     int // Display number of a single signature to render, 0 renders all
	FrameInterval time.Duration
	Dwell         time.Duration
	Concurrency   int
	Verbose       bool
	NoAnnotations bool
}

func NewConfig() *Config {
	return &Config{
		Format:        render.ImagePNG,
		Theme:         render.InkTheme,
		Width:         200,
		Height:        200,
		Padding:       2,
		DotSize:       2,
		TimeZone:      time.Local,
		FrameInterval: render.DefaultFrameInterval,
		Concurrency:   render.DefaultConcurrency,
	}
}

func NewConfigFromCLI() (*Config, error) {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	return ParseArgs(fs, os.Args[1:])
}

// ParseArgs reads the configuration from command line arguments.
func ParseArgs(fs *flag.FlagSet, args []string) (*Config, error) {
	c := NewConfig()

	var imageFormat, theme, timeZone string
	fs.StringVar(&c.InputFile, "i", "", "Path to the exported signatures, \"-\" reads stdin")
	fs.StringVar(&c.OutputDir, "o", "", "Output directory")
	fs.StringVar(&imageFormat, "f", string(render.ImagePNG), "Output image format. [png, jpeg, gif]")
	fs.StringVar(&theme, "theme", string(render.InkTheme), "Color theme. [ink, classic, grayscale, jungle, thermal, marine]")
	fs.IntVar(&c.Width, "width", c.Width, "Drawing width in pixels")
	fs.IntVar(&c.Height, "height", c.Height, "Drawing height in pixels")
	fs.Float64Var(&c.Padding, "padding", c.Padding, "Padding around the drawing in pixels")
	fs.Float64Var(&c.DotSize, "dot", c.DotSize, "Sample dot diameter in pixels")
	fs.StringVar(&timeZone, "tz", "", "Time zone of the creation time, e.g. Europe/Berlin (default: local)")
	fs.IntVar(&c.Signature, "n", 0, "Render only signature N (as numbered in the history)")
	fs.DurationVar(&c.FrameInterval, "frame-interval", c.FrameInterval, "Replay frame interval of GIF output")
	fs.DurationVar(&c.Dwell, "dwell", 0, "Pause on the finished drawing of GIF output (default: 3s)")
	fs.IntVar(&c.Concurrency, "concurrency", c.Concurrency, "Number of previews rendered in parallel")
	fs.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	fs.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable the annotation bar")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var err error
	if c.InputFile == "" {
		err = errors.New("input file is required")
	} else if c.OutputDir == "" {
		err = errors.New("output directory is required")
	} else if c.Format, err = render.ParseFormat(imageFormat); err != nil {
		err = fmt.Errorf("invalid image format: %w", err)
	} else if c.Theme, err = render.ParseColorTheme(theme); err != nil {
		err = fmt.Errorf("invalid theme: %w", err)
	} else if c.Width <= 0 || c.Height <= 0 {
		err = fmt.Errorf("invalid size: %dx%d", c.Width, c.Height)
	} else if c.Signature < 0 {
		err = fmt.Errorf("invalid signature number: %d", c.Signature)
	} else if c.Concurrency <= 0 {
		err = fmt.Errorf("invalid concurrency: %d", c.Concurrency)
	} else if timeZone != "" {
		if c.TimeZone, err = time.LoadLocation(timeZone); err != nil {
			err = fmt.Errorf("invalid time zone: %w", err)
		}
	}

	if err != nil {
		fs.Usage()
		return nil, err
	}

	return c, nil
}
