package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"
	"sync/atomic"
)

// ProcessWithLogger sets the logger for the process
func ProcessWithLogger(logger *slog.Logger) func(p *Process) {
	return func(p *Process) {
		p.logger = logger.With(slog.String("bridge", p.name))
	}
}

// ProcessWithParseErrorsThreshold sets the threshold for consecutive parse errors
func ProcessWithParseErrorsThreshold(threshold uint8) func(p *Process) {
	return func(p *Process) {
		p.parseErrorsThreshold = threshold
	}
}

// Process runs an external digitizer bridge, a program printing input
// protocol messages on its standard output, and streams its messages.
type Process struct {
	name string
	args []string

	isRunning atomic.Bool

	parseErrorsThreshold uint8
	logger               *slog.Logger
}

// NewProcess creates a bridge process for the given command line. The
// process is not started until Run is called.
func NewProcess(name string, args []string, options ...func(p *Process)) *Process {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger

	p := Process{
		name:                 name,
		args:                 args,
		logger:               logger,
		parseErrorsThreshold: ParseErrorsThreshold,
	}

	for _, option := range options {
		option(&p)
	}

	return &p
}

// Run starts the bridge and sends its messages to messages until it exits or
// ctx is cancelled. Errors of the reader, the stderr logger and the process
// itself are joined.
func (p *Process) Run(ctx context.Context, messages chan<- Message) error {
	if !p.isRunning.CompareAndSwap(false, true) {
		return fmt.Errorf("bridge is already running")
	}
	defer p.isRunning.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.name, p.args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("error creating stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("error creating stderr pipe: %w", err)
	}

	if err = cmd.Start(); err != nil {
		return fmt.Errorf("error starting command: %w", err)
	}

	p.logger.Info("reading input from bridge...")

	done := make(chan error, 2) // expects two results from two goroutines

	reader := NewReader(p.name, stdout,
		WithLogger(p.logger),
		WithParseErrorsThreshold(p.parseErrorsThreshold))
	go func() { done <- reader.Run(ctx, messages) }()
	go p.handleStderr(stderr, done)

	var errs []error
	for i := 0; i < cap(done); i++ {
		if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
			cancel() // stop the bridge on error
			p.logger.Error(err.Error())

			errs = append(errs, err)
		}
	}

	// Wait must follow the pipe readers
	if err := cmd.Wait(); err != nil && ctx.Err() == nil {
		errs = append(errs, fmt.Errorf("command exited with error: %w", err))
	}

	p.logger.Info("bridge stopped")

	return errors.Join(errs...)
}

// IsRunning returns true if the bridge is running
func (p *Process) IsRunning() bool {
	return p.isRunning.Load()
}

// handleStderr reads from stderr and logs it.
func (p *Process) handleStderr(stderr io.Reader, done chan<- error) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		p.logger.Warn(fmt.Sprintf("%s >> %s", p.name, line))
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, fs.ErrClosed) {
		done <- fmt.Errorf("%w: error reading stderr: %w", ErrBrokenPipe, err)
		return
	}

	done <- nil
}
