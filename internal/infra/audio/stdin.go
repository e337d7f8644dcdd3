package audio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"voice-grbl/internal/domain"
)

// StdinSource reads one typed transcript per line. It is the default source
// when no microphone or transcriber is configured.
type StdinSource struct {
	in     io.Reader
	out    io.Writer
	prompt bool
	lines  chan string
	errs   chan error

	done     chan struct{}
	stopOnce sync.Once
}

func NewStdinSource() *StdinSource {
	return NewReaderSource(os.Stdin, os.Stdout, term.IsTerminal(int(os.Stdin.Fd())))
}

// NewReaderSource reads transcripts from any reader; prompt controls whether
// "> " is written before each line.
func NewReaderSource(in io.Reader, out io.Writer, prompt bool) *StdinSource {
	return &StdinSource{
		in:     in,
		out:    out,
		prompt: prompt,
		lines:  make(chan string),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}
}

func (s *StdinSource) Name() string {
	return "stdin"
}

func (s *StdinSource) Start(ctx context.Context) error {
	go s.scan(ctx)
	return nil
}

// Stop releases the scanner goroutine if it is waiting to hand off a line.
// A read already blocked on the input stays blocked until the input yields.
func (s *StdinSource) Stop() error {
	s.stopOnce.Do(func() { close(s.done) })
	return nil
}

func (s *StdinSource) scan(ctx context.Context) {
	scanner := bufio.NewScanner(s.in)
	for scanner.Scan() {
		select {
		case s.lines <- scanner.Text():
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}

	if err := scanner.Err(); err != nil {
		s.errs <- fmt.Errorf("reading input: %w", err)
		return
	}
	s.errs <- io.EOF
}

// NextCommand prompts, when enabled, only once the previous command has been
// handled, so the prompt follows that command's report.
func (s *StdinSource) NextCommand(ctx context.Context) ([]byte, error) {
	if s.prompt {
		fmt.Fprint(s.out, "> ")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-s.errs:
		return nil, err
	case line := <-s.lines:
		line = strings.TrimSpace(line)
		if line == "" {
			return nil, nil
		}
		return []byte(domain.TextCommandPrefix + line), nil
	}
}
