package sessionlog

import (
	"context"
	"errors"

	"voice-grbl/internal/application"
	"voice-grbl/internal/domain"
)

// Multi fans every record out to all sinks. A failing sink does not stop the
// others; the errors are joined.
type Multi []application.SessionLogger

func (m Multi) Append(ctx context.Context, entry domain.LogEntry) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Append(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, sink := range m {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
