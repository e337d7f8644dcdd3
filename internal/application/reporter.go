package application

import "voice-grbl/internal/domain"

// Reporter renders user-visible feedback for each command cycle.
type Reporter interface {
	Transcript(t domain.Transcript)
	NotUnderstood()
	Unrecognized(text string)
	Hold(reply string, err error)
	Move(entry domain.LogEntry)
}

type NoopReporter struct{}

func (NoopReporter) Transcript(domain.Transcript) {}
func (NoopReporter) NotUnderstood()               {}
func (NoopReporter) Unrecognized(string)          {}
func (NoopReporter) Hold(string, error)           {}
func (NoopReporter) Move(domain.LogEntry)         {}
