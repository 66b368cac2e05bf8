package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/roman-kulish/vibesign/internal/history"
	"github.com/roman-kulish/vibesign/internal/input"
	"github.com/roman-kulish/vibesign/internal/render"
	"github.com/roman-kulish/vibesign/internal/session"
)

// Source delivers input protocol messages until it is exhausted.
type Source interface {
	Run(ctx context.Context, messages chan<- input.Message) error
}

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	source, closer, err := createSource(&config.Input, logger)
	if err != nil {
		return fmt.Errorf("failed to create input source: %w", err)
	}
	if closer != nil {
		defer closer.Close()

		// unblocks a reader waiting for the next line
		stop := context.AfterFunc(ctx, func() { _ = closer.Close() })
		defer stop()
	}

	sess := session.New(
		session.WithLogger(logger.With(slog.String("component", "session"))),
		session.WithPencilOnly(config.PencilOnly()),
	)

	if err = Record(ctx, source, sess, logger); err != nil {
		return err
	}

	return finish(ctx, config, sess.History(), logger)
}

// Record feeds messages from source into sess until the source is exhausted
// or ctx is cancelled. A recording still in progress at that point is
// stopped, so its samples are kept.
func Record(ctx context.Context, source Source, sess *session.Session, logger *slog.Logger) error {
	messages := make(chan input.Message)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(messages)
		return source.Run(gctx, messages)
	})
	g.Go(func() error {
		for msg := range messages {
			handleMessage(sess, msg, logger)
		}
		return nil
	})

	err := g.Wait()

	if sess.Recording() {
		logger.Info("input ended while recording, stopping")
		sess.Stop()
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

func handleMessage(sess *session.Session, msg input.Message, logger *slog.Logger) {
	switch msg.Kind {
	case input.KindStart:
		sess.Start()
		logger.Debug("recording started")

	case input.KindStop:
		if rec, ok := sess.Stop(); ok {
			logger.Debug("recording stopped", slog.String("id", rec.ID.String()))
		}

	case input.KindClear:
		sess.Clear()

	case input.KindTouch:
		if n := sess.Input(msg.Event, msg.Device); n == 0 && sess.Recording() {
			logger.Debug("input event dropped", slog.String("device", msg.Device.String()))
		}
	}
}

// finish writes the export file and previews once input is exhausted. It
// runs even after ctx is cancelled so an interrupted session keeps its
// signatures.
func finish(ctx context.Context, config *Config, h *history.History, logger *slog.Logger) error {
	logger.Info("recording finished", slog.String("signatures", humanize.Comma(int64(h.Len()))))

	if err := os.MkdirAll(config.Export.Directory, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	_, err := history.ExportFile(config.Export.Directory, config.Export.FileName, h, logger)
	switch {
	case errors.Is(err, history.ErrNothingToExport):
		logger.Info("no signatures to export")
		return nil
	case err != nil:
		return fmt.Errorf("exporting signatures: %w", err)
	}

	if !config.Preview.Enabled {
		return nil
	}

	return writePreviews(context.WithoutCancel(ctx), &config.Preview, h.Records(), logger)
}

func writePreviews(ctx context.Context, config *PreviewConfig, records []history.Record, logger *slog.Logger) error {
	format, err := render.ParseFormat(string(config.Format))
	if err != nil {
		return err
	}
	theme, err := render.ParseColorTheme(string(config.Theme))
	if err != nil {
		return err
	}

	renderer, err := render.NewRenderer(render.Config{
		Width:    config.Width,
		Height:   config.Height,
		Padding:  config.Padding,
		Theme:    theme,
		Annotate: config.Annotate,
	})
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	if err = os.MkdirAll(config.Directory, 0o755); err != nil {
		return fmt.Errorf("creating preview directory: %w", err)
	}

	start := time.Now()
	err = renderer.RenderFiles(ctx, render.RecordJobs(config.Directory, records, format), render.BatchConfig{
		Format:    format,
		Animation: render.AnimationConfig{FrameInterval: time.Duration(config.FrameInterval)},
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("writing previews: %w", err)
	}

	logger.Info("previews written",
		slog.String("directory", config.Directory),
		slog.String("elapsed", time.Since(start).Round(time.Millisecond).String()))

	return nil
}

func createSource(config *InputConfig, logger *slog.Logger) (Source, io.Closer, error) {
	if config.Command != "" {
		return input.NewProcess(config.Command, config.Args,
			input.ProcessWithLogger(logger.With(slog.String("bridge", config.Command))),
			input.ProcessWithParseErrorsThreshold(config.ParseErrorsThreshold)), nil, nil
	}

	if config.File == StdinFile {
		return input.NewReader("stdin", os.Stdin,
			input.WithLogger(logger.With(slog.String("input", "stdin"))),
			input.WithParseErrorsThreshold(config.ParseErrorsThreshold)), os.Stdin, nil
	}

	f, err := os.Open(config.File)
	if err != nil {
		return nil, nil, err
	}

	return input.NewReader(config.File, f,
		input.WithLogger(logger.With(slog.String("input", config.File))),
		input.WithParseErrorsThreshold(config.ParseErrorsThreshold)), f, nil
}
