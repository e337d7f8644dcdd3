package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"voice-grbl/config"
	"voice-grbl/internal/application"
	"voice-grbl/internal/infra/audio"
	"voice-grbl/internal/infra/console"
	"voice-grbl/internal/infra/grbl"
	"voice-grbl/internal/infra/metrics"
	"voice-grbl/internal/infra/openai"
	"voice-grbl/internal/infra/pushover"
	"voice-grbl/internal/infra/sessionlog"
	"voice-grbl/internal/intent"
)

func newRunCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Open the controller and process commands until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}
}

func run(cmd *cobra.Command, cfg *config.Config) error {
	logger := setupLogger(cfg.Log, cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := dialDevice(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	sessionLog, destination, err := openSessionLog(cfg.Report, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := sessionLog.Close(); err != nil {
			logger.Warn("closing session log", "error", err)
		}
	}()

	audioSource, err := createAudioSource(cfg, logger)
	if err != nil {
		return err
	}

	reporter := console.NewReporter(cmd.OutOrStdout(), destination)

	var collector *metrics.Collector
	var observer application.Metrics = application.NoopMetrics{}
	if cfg.Metrics.Addr != "" {
		collector = metrics.New()
		observer = collector
	}

	assistant := application.NewAssistant(
		audioSource,
		createSTT(cfg.OpenAI, logger),
		intent.NewParser(),
		session,
		cfg.DeviceConfig(),
		sessionLog,
		reporter,
		createNotifier(cfg.Pushover),
		observer,
		logger,
	)

	if h, ok := audioSource.(*audio.HTTPSource); ok {
		h.SetHoldHandler(assistant.Hold)
	}

	logger.Info("starting voice grbl",
		"audio_source", cfg.Audio.Source,
		"port", cfg.Device.SerialPort,
		"steps_per_rev", cfg.DeviceConfig().StepsPerRevolution(),
	)
	reporter.Usage()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer cancel()
		err := assistant.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if collector != nil {
		srv := collector.NewServer(cfg.Metrics.Addr)
		g.Go(func() error {
			logger.Info("metrics server starting", "addr", cfg.Metrics.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("bye")
	return nil
}

func dialDevice(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*grbl.Session, error) {
	timing, err := cfg.GrblTiming()
	if err != nil {
		return nil, err
	}
	readTimeout, err := cfg.ReadTimeout()
	if err != nil {
		return nil, err
	}
	logger.Info("opening controller", "port", cfg.Device.SerialPort, "read_timeout", readTimeout)
	return grbl.Dial(ctx, cfg.DeviceConfig(),
		grbl.WithTiming(timing),
		grbl.WithReadTimeout(readTimeout),
		grbl.WithLogger(logger),
	)
}

// openSessionLog returns the configured sinks and a description of where
// records go, for the console report.
func openSessionLog(cfg config.ReportConfig, logger *slog.Logger) (application.SessionLogger, string, error) {
	var (
		sinks        sessionlog.Multi
		destinations []string
	)

	if cfg.CSVPath != "" {
		csvLog, err := sessionlog.NewCSVLogger(cfg.CSVPath)
		if err != nil {
			return nil, "", err
		}
		sinks = append(sinks, csvLog)
		destinations = append(destinations, csvLog.Path())
	}

	if cfg.SQLitePath != "" {
		db, err := sessionlog.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			_ = sinks.Close()
			return nil, "", err
		}
		sinks = append(sinks, db)
		destinations = append(destinations, "sqlite:"+cfg.SQLitePath)
	}

	if cfg.RedisAddr != "" {
		sinks = append(sinks, sessionlog.NewRedisLogger(cfg.RedisAddr,
			sessionlog.WithStream(cfg.RedisStream),
			sessionlog.WithMaxLen(cfg.RedisMaxLen),
		))
		destinations = append(destinations, "redis:"+cfg.RedisStream)
	}

	if len(sinks) == 0 {
		logger.Warn("no session log configured, moves will not be recorded")
		return &application.NoopSessionLogger{}, "", nil
	}
	return sinks, strings.Join(destinations, ", "), nil
}

func createAudioSource(cfg *config.Config, logger *slog.Logger) (application.AudioSource, error) {
	switch cfg.Audio.Source {
	case "stdin":
		return audio.NewStdinSource(), nil
	case "http":
		return audio.NewHTTPSource(cfg.Audio.HTTPAddr, cfg.Audio.AuthToken, logger), nil
	case "file":
		var opts []audio.FileOption
		if cfg.Audio.FileDrain {
			opts = append(opts, audio.WithDrain())
		}
		return audio.NewFileSource(cfg.Audio.FileDir, opts...), nil
	case "microphone":
		if cfg.OpenAI.APIKey == "" {
			return nil, errors.New("audio.source microphone needs openai.api_key for transcription")
		}
		return audio.NewMicrophoneSource(cfg.Audio.SampleRate, cfg.CaptureDuration(), logger), nil
	default:
		return nil, fmt.Errorf("unknown audio source %q", cfg.Audio.Source)
	}
}

func createSTT(cfg config.OpenAIConfig, logger *slog.Logger) application.SpeechToText {
	if cfg.APIKey == "" {
		logger.Info("openai.api_key not set, audio transcription disabled")
		return &application.NoopSTT{}
	}
	return openai.NewWhisperClient(cfg.APIKey, cfg.Language, cfg.Model)
}

func createNotifier(cfg config.PushoverConfig) application.Notifier {
	if !cfg.Enabled {
		return &application.NoopNotifier{}
	}
	return pushover.NewClient(cfg.Token, cfg.UserKey)
}
