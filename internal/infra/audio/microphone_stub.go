//go:build !portaudio

package audio

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var errNoPortAudio = errors.New("microphone capture needs a build with -tags portaudio")

// MicrophoneSource is unavailable in this build; Start always fails.
type MicrophoneSource struct{}

func NewMicrophoneSource(_ int, _ time.Duration, _ *slog.Logger) *MicrophoneSource {
	return &MicrophoneSource{}
}

func (m *MicrophoneSource) Name() string { return "microphone" }

func (m *MicrophoneSource) Start(_ context.Context) error { return errNoPortAudio }

func (m *MicrophoneSource) Stop() error { return nil }

func (m *MicrophoneSource) NextCommand(_ context.Context) ([]byte, error) {
	return nil, errNoPortAudio
}
