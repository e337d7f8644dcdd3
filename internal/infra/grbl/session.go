// Package grbl drives a GRBL motion controller over a line-based serial link.
//
// The session is a transport plus handshake state. Lines are sent one at a
// time: each write is followed by a fixed settling wait and a best-effort
// read of whatever the controller emitted in that window. An empty reply is
// not an error. The real-time feed hold byte bypasses the line lock so it can
// be written while a line is still settling.
package grbl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"voice-grbl/internal/domain"
	"voice-grbl/internal/infra/serial"
	"voice-grbl/internal/motion"
)

// FeedHold is GRBL's real-time feed hold command byte.
const FeedHold byte = 0x85

const (
	wakeSequence = "\r\n\r\n"
	statusQuery  = "?"
	maxReply     = 4096
)

var (
	ErrClosed   = errors.New("session closed")
	ErrNotReady = errors.New("session not ready")
)

type State int

const (
	StateClosed State = iota
	StateHandshaking
	StateReady
	StateSending
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHandshaking:
		return "handshaking"
	case StateReady:
		return "ready"
	case StateSending:
		return "sending"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Timing holds the fixed waits the firmware needs. They are sleeps, not
// deadlines: a silent controller yields an empty reply.
type Timing struct {
	WakeDelay       time.Duration
	FlushDelay      time.Duration
	SettleDelay     time.Duration
	MoveSettleDelay time.Duration
	HoldDelay       time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		WakeDelay:       2 * time.Second,
		FlushDelay:      2 * time.Second,
		SettleDelay:     100 * time.Millisecond,
		MoveSettleDelay: 200 * time.Millisecond,
		HoldDelay:       500 * time.Millisecond,
	}
}

type Option func(*Session)

func WithTiming(t Timing) Option {
	return func(s *Session) {
		s.timing = t
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithReadTimeout sets the per-read timeout used when Dial opens the port.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.readTimeout = d
	}
}

type Session struct {
	port        serial.Port
	cfg         domain.DeviceConfig
	timing      Timing
	logger      *slog.Logger
	readTimeout time.Duration

	// lineMu allows one outstanding line. writeMu serialises raw writes so
	// the feed hold byte never interleaves with a partially written line.
	lineMu  sync.Mutex
	writeMu sync.Mutex

	// stale is set when a line was abandoned before its reply was read.
	// Guarded by lineMu.
	stale bool

	mu    sync.Mutex
	state State
}

func newSession(cfg domain.DeviceConfig, opts ...Option) *Session {
	s := &Session{
		cfg:         cfg,
		timing:      DefaultTiming(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		readTimeout: serial.DefaultConfig(cfg.SerialPort).ReadTimeout,
		state:       StateClosed,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial opens the configured serial port and performs the handshake. Any
// failure is reported as domain.ErrDeviceOpen.
func Dial(ctx context.Context, cfg domain.DeviceConfig, opts ...Option) (*Session, error) {
	s := newSession(cfg, opts...)

	port, err := serial.Open(&serial.Config{
		Device:      cfg.SerialPort,
		Baud:        cfg.BaudRate,
		ReadTimeout: s.readTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDeviceOpen, err)
	}

	if err := s.handshake(ctx, port); err != nil {
		return nil, err
	}
	return s, nil
}

// Open performs the handshake on an already open transport.
func Open(ctx context.Context, port serial.Port, cfg domain.DeviceConfig, opts ...Option) (*Session, error) {
	s := newSession(cfg, opts...)
	if err := s.handshake(ctx, port); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) handshake(ctx context.Context, port serial.Port) error {
	s.lineMu.Lock()
	defer s.lineMu.Unlock()

	s.port = port
	s.setState(StateHandshaking)

	fail := func(step string, err error) error {
		s.setState(StateClosed)
		if cerr := port.Close(); cerr != nil {
			s.logger.Warn("closing port after failed handshake", "error", cerr)
		}
		return fmt.Errorf("%w: %s: %w", domain.ErrDeviceOpen, step, err)
	}

	s.logger.Info("waking controller", "port", s.cfg.SerialPort, "baud", s.cfg.BaudRate)

	if err := sleep(ctx, s.timing.WakeDelay); err != nil {
		return fail("waiting for controller boot", err)
	}
	if err := s.write([]byte(wakeSequence)); err != nil {
		return fail("writing wake sequence", err)
	}
	if err := sleep(ctx, s.timing.FlushDelay); err != nil {
		return fail("waiting after wake", err)
	}
	if err := port.Flush(); err != nil {
		return fail("flushing startup output", err)
	}

	for _, line := range motion.CalibrationLines(s.cfg) {
		if _, err := s.exchange(ctx, line); err != nil {
			return fail("configuring controller", err)
		}
	}

	s.setState(StateReady)
	s.logger.Info("controller ready", "steps_per_rev", s.cfg.StepsPerRevolution(), "feed_rate", s.cfg.FeedRate)
	return nil
}

// Send writes one protocol line and returns whatever the controller replied
// within the settling window. Failures wrap domain.ErrDeviceIO; the session
// stays open.
func (s *Session) Send(ctx context.Context, line string) (string, error) {
	s.lineMu.Lock()
	defer s.lineMu.Unlock()

	if err := s.transition(StateReady, StateSending); err != nil {
		return "", err
	}
	defer s.transition(StateSending, StateReady)

	return s.exchange(ctx, line)
}

// FeedHold writes the real-time hold byte immediately, even while another
// line is settling, then queries status. The status reply is advisory.
func (s *Session) FeedHold(ctx context.Context) (string, error) {
	if s.State() == StateClosed {
		return "", ErrClosed
	}

	s.logger.Info("feed hold")
	if err := s.write([]byte{FeedHold}); err != nil {
		return "", fmt.Errorf("%w: writing feed hold: %w", domain.ErrDeviceIO, err)
	}

	if err := sleep(ctx, s.timing.HoldDelay); err != nil {
		return "", err
	}

	return s.Send(ctx, statusQuery)
}

// Close releases the transport. It waits for an in-flight line to finish
// settling.
func (s *Session) Close() error {
	s.lineMu.Lock()
	defer s.lineMu.Unlock()

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	s.state = StateClosed
	s.mu.Unlock()

	if err := s.port.Close(); err != nil {
		return fmt.Errorf("closing serial port: %w", err)
	}
	return nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// exchange must be called with lineMu held.
func (s *Session) exchange(ctx context.Context, line string) (string, error) {
	if s.stale {
		if err := s.port.Flush(); err != nil {
			return "", fmt.Errorf("%w: discarding stale reply: %w", domain.ErrDeviceIO, err)
		}
		s.stale = false
	}

	s.logger.Debug("sending line", "line", line)

	if err := s.write([]byte(line + "\n")); err != nil {
		return "", fmt.Errorf("%w: writing %q: %w", domain.ErrDeviceIO, line, err)
	}

	if err := sleep(ctx, s.settleFor(line)); err != nil {
		s.stale = true
		return "", err
	}

	reply, err := s.drain()
	if err != nil {
		return "", fmt.Errorf("%w: reading reply to %q: %w", domain.ErrDeviceIO, line, err)
	}

	if reply != "" {
		s.logger.Debug("controller reply", "line", line, "reply", strings.TrimSpace(reply))
	}
	return reply, nil
}

func (s *Session) settleFor(line string) time.Duration {
	if strings.HasPrefix(line, "G1 ") && s.timing.MoveSettleDelay > 0 {
		return s.timing.MoveSettleDelay
	}
	return s.timing.SettleDelay
}

func (s *Session) write(b []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.port.Write(b)
	return err
}

// drain reads until the port has nothing buffered.
func (s *Session) drain() (string, error) {
	var sb strings.Builder
	buf := make([]byte, 256)

	for sb.Len() < maxReply {
		n, err := s.port.Read(buf)
		sb.Write(buf[:n])
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return sb.String(), err
		}
		if n == 0 {
			break
		}
	}
	return sb.String(), nil
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) transition(from, to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return ErrClosed
	}
	if s.state != from {
		return fmt.Errorf("%w: %s", ErrNotReady, s.state)
	}
	s.state = to
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
