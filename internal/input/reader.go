package input

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
)

const (
	// ParseErrorsThreshold defines the number of consecutive parse errors allowed
	ParseErrorsThreshold = 5

	maxLineSize = 1 << 20
)

var (
	// ErrTooManyParseErrors is returned when the number of consecutive parse errors exceeds the threshold
	ErrTooManyParseErrors = errors.New("too many consecutive parse errors")

	// ErrBrokenPipe is returned when there's an error reading the input stream
	ErrBrokenPipe = errors.New("broken pipe")
)

// WithLogger sets the logger for the reader
func WithLogger(logger *slog.Logger) func(r *Reader) {
	return func(r *Reader) {
		r.logger = logger.With(slog.String("source", r.name))
	}
}

// WithParseErrorsThreshold sets the threshold for consecutive parse errors
func WithParseErrorsThreshold(threshold uint8) func(r *Reader) {
	return func(r *Reader) {
		r.parseErrorsThreshold = threshold
	}
}

// Reader decodes input protocol messages from a line oriented stream.
type Reader struct {
	name string
	src  io.Reader

	parseErrorsThreshold uint8
	logger               *slog.Logger
}

// NewReader creates a reader for src. name identifies the source in logs.
func NewReader(name string, src io.Reader, options ...func(r *Reader)) *Reader {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger

	r := Reader{
		name:                 name,
		src:                  src,
		logger:               logger,
		parseErrorsThreshold: ParseErrorsThreshold,
	}

	for _, option := range options {
		option(&r)
	}

	return &r
}

// Run reads messages until the stream ends, the context is cancelled, or
// too many consecutive lines fail to parse. Messages are sent to messages in
// stream order. A clean end of stream returns nil.
func (r *Reader) Run(ctx context.Context, messages chan<- Message) error {
	var parseErrors uint8

	scanner := bufio.NewScanner(r.src)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		msg, err := ParseLine(line)
		if err != nil {
			parseErrors++
			r.logger.Warn(fmt.Sprintf("error parsing input: %s", err.Error()), slog.String("line", string(line)))

			if parseErrors >= r.parseErrorsThreshold {
				return ErrTooManyParseErrors
			}

			continue
		}

		parseErrors = 0 // reset counter

		select {
		case messages <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, fs.ErrClosed) {
		return fmt.Errorf("%w: error reading input: %w", ErrBrokenPipe, err)
	}

	return nil
}
