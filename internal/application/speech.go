package application

import (
	"context"
	"fmt"

	"voice-grbl/internal/domain"
)

// SpeechToText turns one utterance into segments. An empty transcript is a
// valid result; the caller decides what silence means.
type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte) (domain.Transcript, error)
}

// NoopSTT serves text-only sources. Any audio it receives is reported as
// untranscribable.
type NoopSTT struct{}

func (n *NoopSTT) Transcribe(_ context.Context, _ []byte) (domain.Transcript, error) {
	return domain.Transcript{}, fmt.Errorf("%w: no transcriber configured, set openai.api_key", domain.ErrTranscriptionUnavailable)
}
