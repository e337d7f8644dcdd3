package application

import (
	"time"

	"voice-grbl/internal/domain"
)

type Metrics interface {
	ObserveCommand(kind domain.CommandKind)
	ObserveTranscriptionFailure()
	ObserveDeviceError()
	ObserveCycle(d time.Duration)
}

type NoopMetrics struct{}

func (NoopMetrics) ObserveCommand(domain.CommandKind) {}
func (NoopMetrics) ObserveTranscriptionFailure()      {}
func (NoopMetrics) ObserveDeviceError()               {}
func (NoopMetrics) ObserveCycle(time.Duration)        {}
