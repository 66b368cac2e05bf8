package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/vibesign/internal/history"
	"github.com/roman-kulish/vibesign/internal/input"
	"github.com/roman-kulish/vibesign/internal/render"
)

// StdinFile selects standard input as the event source.
const StdinFile = "-"

// Config represents the main application configuration
type Config struct {
	Settings Settings      `yaml:"settings"`
	Capture  CaptureConfig `yaml:"capture"`
	Input    InputConfig   `yaml:"input"`
	Export   ExportConfig  `yaml:"export"`
	Preview  PreviewConfig `yaml:"preview"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel slog.Level `yaml:"logLevel"`
}

// CaptureConfig represents capture controller settings
type CaptureConfig struct {
	PencilOnly *bool `yaml:"pencilOnly"` // Default: true
}

// InputConfig selects the source of input events. Exactly one of File and
// Command must be set.
type InputConfig struct {
	File                 string   `yaml:"file"`    // JSON lines file, "-" for stdin
	Command              string   `yaml:"command"` // Digitizer bridge writing JSON lines to stdout
	Args                 []string `yaml:"args"`
	ParseErrorsThreshold uint8    `yaml:"parseErrorsThreshold"`
}

// ExportConfig represents the JSONL export settings
type ExportConfig struct {
	Directory string `yaml:"directory"`
	FileName  string `yaml:"fileName"`
}

// PreviewConfig represents preview rendering of the recorded signatures
type PreviewConfig struct {
	Enabled       bool              `yaml:"enabled"`
	Directory     string            `yaml:"directory"`
	Format        render.Format     `yaml:"format"`
	Theme         render.ColorTheme `yaml:"theme"`
	Width         int               `yaml:"width"`
	Height        int               `yaml:"height"`
	Padding       float64           `yaml:"padding"`
	Annotate      bool              `yaml:"annotate"`
	FrameInterval Duration          `yaml:"frameInterval"`
}

// Duration is a time.Duration read from strings like "40ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	duration, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("app.Duration: failed to parse: %s", err)
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// LoadConfig reads and validates the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes a YAML configuration, applies defaults and validates
// the result.
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	config.setDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// PencilOnly returns the effective device filter.
func (c *Config) PencilOnly() bool {
	return c.Capture.PencilOnly == nil || *c.Capture.PencilOnly
}

func (c *Config) setDefaults() {
	if c.Input.ParseErrorsThreshold == 0 {
		c.Input.ParseErrorsThreshold = input.ParseErrorsThreshold
	}
	if c.Export.Directory == "" {
		c.Export.Directory = "."
	}
	if c.Export.FileName == "" {
		c.Export.FileName = history.DefaultExportName
	}
	if c.Preview.Directory == "" {
		c.Preview.Directory = c.Export.Directory
	}
	if c.Preview.Format == "" {
		c.Preview.Format = render.ImagePNG
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	switch {
	case c.Input.File == "" && c.Input.Command == "":
		errs = append(errs, errors.New("input: either file or command is required"))
	case c.Input.File != "" && c.Input.Command != "":
		errs = append(errs, errors.New("input: file and command are mutually exclusive"))
	}

	if c.Preview.Enabled {
		if _, err := render.ParseFormat(string(c.Preview.Format)); err != nil {
			errs = append(errs, fmt.Errorf("preview: %w", err))
		}
		if _, err := render.ParseColorTheme(string(c.Preview.Theme)); err != nil {
			errs = append(errs, fmt.Errorf("preview: %w", err))
		}
		if c.Preview.Width < 0 || c.Preview.Height < 0 {
			errs = append(errs, fmt.Errorf("preview: invalid size %dx%d", c.Preview.Width, c.Preview.Height))
		}
		if c.Preview.Padding < 0 {
			errs = append(errs, fmt.Errorf("preview: padding must not be negative"))
		}
	}

	return errors.Join(errs...)
}
