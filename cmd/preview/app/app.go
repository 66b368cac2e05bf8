package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/vibesign/internal/history"
	"github.com/roman-kulish/vibesign/internal/render"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	records, err := readRecords(config.InputFile)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no signatures in '%s'", config.InputFile)
	}

	logger.Info("signatures loaded",
		slog.String("input", config.InputFile),
		slog.Int("count", len(records)))

	jobs := render.RecordJobs(config.OutputDir, records, config.Format)
	if config.Signature > 0 {
		if config.Signature > len(jobs) {
			return fmt.Errorf("signature %d not found, the export holds %d", config.Signature, len(jobs))
		}
		jobs = jobs[len(jobs)-config.Signature : len(jobs)-config.Signature+1]
	}

	for _, job := range jobs {
		logger.Debug("queued",
			slog.String("label", job.Meta.Label),
			slog.String("created", humanize.Time(job.Meta.CreatedAt)),
			slog.String("points", humanize.Comma(int64(job.Meta.Stats.Count))),
			slog.String("duration", humanize.FtoaWithDigits(job.Meta.Stats.Duration, 2)+"s"))
	}

	renderer, err := render.NewRenderer(render.Config{
		Width:    config.Width,
		Height:   config.Height,
		Padding:  config.Padding,
		DotSize:  config.DotSize,
		Theme:    config.Theme,
		Annotate: !config.NoAnnotations,
		Location: config.TimeZone,
	})
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	if err = os.MkdirAll(config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	logger.Info("rendering previews",
		slog.Group("image",
			slog.String("destination", config.OutputDir),
			slog.String("format", string(config.Format)),
			slog.String("theme", string(config.Theme)),
			slog.Int("width", config.Width),
			slog.Int("height", config.Height),
		))

	start := time.Now()
	err = renderer.RenderFiles(ctx, jobs, render.BatchConfig{
		Format: config.Format,
		Animation: render.AnimationConfig{
			FrameInterval: config.FrameInterval,
			Dwell:         config.Dwell,
		},
		Concurrency: config.Concurrency,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	logger.Info("finished",
		slog.Int("previews", len(jobs)),
		slog.String("elapsed", time.Since(start).Round(time.Millisecond).String()))

	return nil
}

func readRecords(path string) ([]history.Record, error) {
	var in io.Reader = os.Stdin
	if path != StdinFile {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening export: %w", err)
		}
		defer f.Close()
		in = f
	}

	records, err := history.ReadJSONL(in)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	return records, nil
}
