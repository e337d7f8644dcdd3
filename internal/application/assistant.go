package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"voice-grbl/internal/domain"
	"voice-grbl/internal/motion"
)

type Assistant struct {
	audio      AudioSource
	stt        SpeechToText
	intent     IntentParser
	device     MotionDevice
	deviceCfg  domain.DeviceConfig
	sessionLog SessionLogger
	reporter   Reporter
	notifier   Notifier
	metrics    Metrics
	logger     *slog.Logger
	now        func() time.Time
}

func NewAssistant(
	audio AudioSource,
	stt SpeechToText,
	intent IntentParser,
	device MotionDevice,
	deviceCfg domain.DeviceConfig,
	sessionLog SessionLogger,
	reporter Reporter,
	notifier Notifier,
	metrics Metrics,
	logger *slog.Logger,
) *Assistant {
	return &Assistant{
		audio:      audio,
		stt:        stt,
		intent:     intent,
		device:     device,
		deviceCfg:  deviceCfg,
		sessionLog: sessionLog,
		reporter:   reporter,
		notifier:   notifier,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Run processes one utterance at a time until the context is cancelled or
// the audio source is exhausted. Per-command failures are logged and the
// loop carries on.
func (a *Assistant) Run(ctx context.Context) error {
	a.logger.Info("starting audio source", "source", a.audio.Name())
	if err := a.audio.Start(ctx); err != nil {
		return fmt.Errorf("starting audio: %w", err)
	}
	defer a.audio.Stop()

	a.logger.Info("assistant ready, listening for commands")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			err := a.processOneCommand(ctx)
			switch {
			case err == nil:
			case errors.Is(err, io.EOF):
				a.logger.Info("audio source exhausted")
				return nil
			case ctx.Err() != nil:
				return ctx.Err()
			case errors.Is(err, domain.ErrTranscriptionUnavailable), errors.Is(err, domain.ErrCommandUnrecognized):
				a.logger.Warn("skipping utterance", "error", err)
			default:
				a.logger.Error("processing command", "error", err)
			}
		}
	}
}

func (a *Assistant) processOneCommand(ctx context.Context) error {
	audioData, err := a.audio.NextCommand(ctx)
	if err != nil {
		return fmt.Errorf("getting audio: %w", err)
	}

	if len(audioData) == 0 {
		return nil
	}

	start := a.now()
	defer func() { a.metrics.ObserveCycle(a.now().Sub(start)) }()

	var transcript domain.Transcript

	if directText, isText := isTextCommand(audioData); isText {
		a.logger.Info("received text command directly", "text", directText)
		transcript = domain.TextTranscript(directText)
	} else {
		a.logger.Info("received audio", "bytes", len(audioData))

		transcript, err = a.stt.Transcribe(ctx, audioData)
		if err != nil {
			a.metrics.ObserveTranscriptionFailure()
			a.reporter.NotUnderstood()
			return fmt.Errorf("transcribing: %w: %w", domain.ErrTranscriptionUnavailable, err)
		}

		a.logger.Info("transcribed", "text", transcript.Text(), "language", transcript.Language)
	}

	text := transcript.Text()
	if text == "" {
		a.metrics.ObserveTranscriptionFailure()
		a.reporter.NotUnderstood()
		return fmt.Errorf("empty transcript: %w", domain.ErrTranscriptionUnavailable)
	}
	a.reporter.Transcript(transcript)

	cmd, err := a.intent.Parse(ctx, text)
	if err != nil {
		return fmt.Errorf("parsing intent: %w", err)
	}

	a.metrics.ObserveCommand(cmd.Kind)
	a.logger.Info("parsed intent",
		"kind", cmd.Kind,
		"direction", cmd.Direction,
		"magnitude", cmd.Magnitude,
	)

	switch cmd.Kind {
	case domain.CommandStop:
		_, err := a.Hold(ctx)
		return err
	case domain.CommandMove:
		return a.executeMove(ctx, cmd)
	default:
		a.reporter.Unrecognized(text)
		return fmt.Errorf("%w: %q", domain.ErrCommandUnrecognized, text)
	}
}

// Hold issues a real-time feed hold. It is safe to call from outside the
// command loop while a move is settling.
func (a *Assistant) Hold(ctx context.Context) (string, error) {
	reply, err := a.device.FeedHold(ctx)
	a.reporter.Hold(reply, err)
	if err != nil {
		a.metrics.ObserveDeviceError()
		a.notify(ctx, fmt.Sprintf("Feed hold failed: %s", err.Error()))
		return reply, fmt.Errorf("feed hold: %w", err)
	}

	a.notify(ctx, "Feed hold")
	return reply, nil
}

func (a *Assistant) executeMove(ctx context.Context, cmd domain.Command) error {
	plan, err := motion.Translate(cmd, a.deviceCfg)
	if err != nil {
		return fmt.Errorf("translating: %w", err)
	}

	reply, sendErr := a.device.Send(ctx, plan.ProtocolLine)

	entry := domain.LogEntry{
		Timestamp:    a.now(),
		Transcript:   cmd.RawText,
		Direction:    cmd.Direction,
		Magnitude:    cmd.Magnitude,
		StepsPerTurn: a.deviceCfg.StepsPerRevolution(),
		TotalSteps:   plan.TotalSteps,
		ProtocolLine: plan.ProtocolLine,
		DeviceReply:  strings.TrimSpace(reply),
	}
	if sendErr != nil {
		entry.Error = sendErr.Error()
	}

	if err := a.sessionLog.Append(ctx, entry); err != nil {
		a.logger.Error("appending session log", "error", err)
	}

	a.reporter.Move(entry)

	if sendErr != nil {
		a.metrics.ObserveDeviceError()
		a.notify(ctx, fmt.Sprintf("Error: %s", sendErr.Error()))
		return fmt.Errorf("sending move: %w", sendErr)
	}

	a.logger.Info("move sent",
		"line", plan.ProtocolLine,
		"total_steps", plan.TotalSteps,
		"reply", entry.DeviceReply,
	)
	return nil
}

func (a *Assistant) notify(ctx context.Context, message string) {
	if err := a.notifier.Notify(ctx, message); err != nil {
		a.logger.Error("notifying", "error", err)
	}
}

func isTextCommand(data []byte) (string, bool) {
	if len(data) > len(domain.TextCommandPrefix) && string(data[:len(domain.TextCommandPrefix)]) == domain.TextCommandPrefix {
		return string(data[len(domain.TextCommandPrefix):]), true
	}
	return "", false
}
