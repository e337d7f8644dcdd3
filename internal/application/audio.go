package application

import "context"

// AudioSource yields one utterance per call: WAV bytes, or text prefixed with
// domain.TextCommandPrefix when the source already has a transcript.
// NextCommand returns io.EOF once the source has no more input.
type AudioSource interface {
	Start(ctx context.Context) error
	Stop() error
	NextCommand(ctx context.Context) ([]byte, error)
	Name() string
}

type AudioFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

func DefaultAudioFormat() AudioFormat {
	return AudioFormat{
		SampleRate: 16000,
		Channels:   1,
		BitDepth:   16,
	}
}
