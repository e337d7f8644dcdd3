package application

import (
	"context"

	"voice-grbl/internal/domain"
)

// SessionLogger receives one record per executed or attempted move. Records
// are appended, never rewritten.
type SessionLogger interface {
	Append(ctx context.Context, entry domain.LogEntry) error
	Close() error
}

type NoopSessionLogger struct{}

func (n *NoopSessionLogger) Append(_ context.Context, _ domain.LogEntry) error {
	return nil
}

func (n *NoopSessionLogger) Close() error {
	return nil
}
