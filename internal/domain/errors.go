package domain

import "errors"

var (
	ErrTranscriptionUnavailable = errors.New("transcription unavailable")
	ErrCommandUnrecognized      = errors.New("command unrecognized")
	ErrDeviceOpen               = errors.New("device open failure")
	ErrDeviceIO                 = errors.New("device i/o failure")
)
