package main

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"voice-grbl/config"
)

var version = "dev"

type rootOptions struct {
	configPath string
	port       string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "voicegrbl",
		Short: "Drive a GRBL stepper controller with spoken commands",
		Long: `voicegrbl turns short spoken or typed commands such as "forward two spins",
"backward 1.5 turns" or "stop" into GRBL motion lines and sends them over a
serial link.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.yaml", "path to config file (YAML, or TOML with a .toml extension)")
	cmd.PersistentFlags().StringVar(&opts.port, "port", "", "serial port, overrides device.serial_port")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level, overrides log.level")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newParseCommand(opts))
	cmd.AddCommand(newSendCommand(opts))
	cmd.AddCommand(newHoldCommand(opts))

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}

// loadConfig reads the config file. A missing file is only an error when
// the path was given explicitly.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) || cmd.Flags().Changed("config") {
			return nil, err
		}
		cfg = config.Default()
	}

	if o.port != "" {
		cfg.Device.SerialPort = o.port
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

func setupLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
