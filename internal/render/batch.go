package render

import (
	"context"
	"fmt"
	"image"
	"image/gif"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/roman-kulish/vibesign/internal/history"
	"github.com/roman-kulish/vibesign/internal/stroke"
)

// DefaultConcurrency is the number of previews rendered in parallel.
const DefaultConcurrency = 4

// Job is a single preview to write.
type Job struct {
	Path   string
	Stream stroke.Stream
	Meta   Meta
}

// RecordJobs returns one job per record, named after the record's display
// label. Records are expected newest first, as History returns them.
func RecordJobs(dir string, records []history.Record, f Format) []Job {
	jobs := make([]Job, 0, len(records))
	for i, rec := range records {
		n := len(records) - i
		jobs = append(jobs, Job{
			Path:   filepath.Join(dir, fmt.Sprintf("signature_%d%s", n, f.Ext())),
			Stream: rec.Samples,
			Meta: Meta{
				Label:     history.Label(n),
				CreatedAt: rec.CreatedAt,
				Stats:     rec.Samples.Stats(),
			},
		})
	}
	return jobs
}

// BatchConfig controls RenderFiles.
type BatchConfig struct {
	Format      Format
	Animation   AnimationConfig // Used with ImageGIF
	Concurrency int
	Logger      *slog.Logger
}

// RenderFiles renders jobs concurrently. The first failure cancels the
// remaining jobs and is returned.
func (r *Renderer) RenderFiles(ctx context.Context, jobs []Job, config BatchConfig) error {
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConcurrency
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Concurrency)

	for _, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := r.WriteFile(job, config.Format, config.Animation); err != nil {
				return fmt.Errorf("rendering %s: %w", job.Meta.Label, err)
			}

			logger.Info("preview written",
				slog.String("path", job.Path),
				slog.String("label", job.Meta.Label),
				slog.String("points", humanize.Comma(int64(job.Meta.Stats.Count))))
			return nil
		})
	}

	return g.Wait()
}

// WriteFile renders a single job into job.Path. GIF output is an animated
// replay, other formats a static preview of the whole stream.
func (r *Renderer) WriteFile(job Job, f Format, anim AnimationConfig) (err error) {
	out, err := os.Create(job.Path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(job.Path)
		}
	}()

	if f == ImageGIF {
		var a *gif.GIF
		if a, err = r.Animate(job.Stream, job.Meta, anim); err != nil {
			return err
		}
		return EncodeAnimation(out, a)
	}

	var img *image.RGBA
	if img, err = r.Render(job.Stream, job.Meta); err != nil {
		return err
	}
	return Encode(out, img, f)
}
