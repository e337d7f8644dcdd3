package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"voice-grbl/internal/domain"
	"voice-grbl/internal/infra/grbl"
)

type Config struct {
	Device   DeviceConfig   `yaml:"device" toml:"device"`
	Timing   TimingConfig   `yaml:"timing" toml:"timing"`
	Audio    AudioConfig    `yaml:"audio" toml:"audio"`
	OpenAI   OpenAIConfig   `yaml:"openai" toml:"openai"`
	Report   ReportConfig   `yaml:"report" toml:"report"`
	Metrics  MetricsConfig  `yaml:"metrics" toml:"metrics"`
	Pushover PushoverConfig `yaml:"pushover" toml:"pushover"`
	Log      LogConfig      `yaml:"log" toml:"log"`
}

type DeviceConfig struct {
	SerialPort       string  `yaml:"serial_port" toml:"serial_port"`
	BaudRate         int     `yaml:"baud_rate" toml:"baud_rate"`
	MotorStepsPerRev int     `yaml:"motor_steps_per_rev" toml:"motor_steps_per_rev"`
	Microsteps       int     `yaml:"microsteps" toml:"microsteps"`
	FeedRate         float64 `yaml:"feed_rate" toml:"feed_rate"`
	// ReadTimeout bounds one serial read, in time.ParseDuration syntax.
	ReadTimeout string `yaml:"read_timeout" toml:"read_timeout"`
}

// TimingConfig holds durations in time.ParseDuration syntax.
type TimingConfig struct {
	WakeDelay       string `yaml:"wake_delay" toml:"wake_delay"`
	FlushDelay      string `yaml:"flush_delay" toml:"flush_delay"`
	SettleDelay     string `yaml:"settle_delay" toml:"settle_delay"`
	MoveSettleDelay string `yaml:"move_settle_delay" toml:"move_settle_delay"`
	HoldDelay       string `yaml:"hold_delay" toml:"hold_delay"`
}

type AudioConfig struct {
	Source         string `yaml:"source" toml:"source"`
	HTTPAddr       string `yaml:"http_addr" toml:"http_addr"`
	FileDir        string `yaml:"file_dir" toml:"file_dir"`
	FileDrain      bool   `yaml:"file_drain" toml:"file_drain"`
	SampleRate     int    `yaml:"sample_rate" toml:"sample_rate"`
	CaptureSeconds int    `yaml:"capture_seconds" toml:"capture_seconds"`
	AuthToken      string `yaml:"auth_token" toml:"auth_token"`
}

type OpenAIConfig struct {
	APIKey   string `yaml:"api_key" toml:"api_key"`
	Language string `yaml:"language" toml:"language"`
	Model    string `yaml:"model" toml:"model"`
}

type ReportConfig struct {
	CSVPath     string `yaml:"csv_path" toml:"csv_path"`
	SQLitePath  string `yaml:"sqlite_path" toml:"sqlite_path"`
	RedisAddr   string `yaml:"redis_addr" toml:"redis_addr"`
	RedisStream string `yaml:"redis_stream" toml:"redis_stream"`
	RedisMaxLen int64  `yaml:"redis_maxlen" toml:"redis_maxlen"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
}

type PushoverConfig struct {
	Token   string `yaml:"token" toml:"token"`
	UserKey string `yaml:"user_key" toml:"user_key"`
	Enabled bool   `yaml:"enabled" toml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Load reads a YAML file, or TOML when the path ends in .toml. ${VAR}
// references are expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

func (c *Config) setDefaults() {
	if c.Device.SerialPort == "" {
		c.Device.SerialPort = "/dev/ttyACM0"
	}
	if c.Device.BaudRate == 0 {
		c.Device.BaudRate = 115200
	}
	if c.Device.MotorStepsPerRev == 0 {
		c.Device.MotorStepsPerRev = 200
	}
	if c.Device.Microsteps == 0 {
		c.Device.Microsteps = 16
	}
	if c.Device.FeedRate == 0 {
		c.Device.FeedRate = 60
	}
	if c.Device.ReadTimeout == "" {
		c.Device.ReadTimeout = "50ms"
	}
	if c.Timing.WakeDelay == "" {
		c.Timing.WakeDelay = "2s"
	}
	if c.Timing.FlushDelay == "" {
		c.Timing.FlushDelay = "2s"
	}
	if c.Timing.SettleDelay == "" {
		c.Timing.SettleDelay = "100ms"
	}
	if c.Timing.MoveSettleDelay == "" {
		c.Timing.MoveSettleDelay = "200ms"
	}
	if c.Timing.HoldDelay == "" {
		c.Timing.HoldDelay = "500ms"
	}
	if c.Audio.Source == "" {
		c.Audio.Source = "stdin"
	}
	if c.Audio.HTTPAddr == "" {
		c.Audio.HTTPAddr = ":8080"
	}
	if c.Audio.FileDir == "" {
		c.Audio.FileDir = "./audio"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.CaptureSeconds == 0 {
		c.Audio.CaptureSeconds = 4
	}
	if c.OpenAI.Language == "" {
		c.OpenAI.Language = "en"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "whisper-1"
	}
	if c.Report.CSVPath == "" {
		c.Report.CSVPath = "grbl_voice_report.csv"
	}
	if c.Report.RedisStream == "" {
		c.Report.RedisStream = "voicegrbl:log"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Device.MotorStepsPerRev <= 0 {
		errs = append(errs, fmt.Errorf("device.motor_steps_per_rev must be positive, got %d", c.Device.MotorStepsPerRev))
	}
	if c.Device.Microsteps <= 0 {
		errs = append(errs, fmt.Errorf("device.microsteps must be positive, got %d", c.Device.Microsteps))
	}
	if c.Device.FeedRate <= 0 {
		errs = append(errs, fmt.Errorf("device.feed_rate must be positive, got %g", c.Device.FeedRate))
	}
	if c.Device.BaudRate <= 0 {
		errs = append(errs, fmt.Errorf("device.baud_rate must be positive, got %d", c.Device.BaudRate))
	}
	if _, err := c.ReadTimeout(); err != nil {
		errs = append(errs, err)
	}
	if c.Report.RedisMaxLen < 0 {
		errs = append(errs, fmt.Errorf("report.redis_maxlen must not be negative, got %d", c.Report.RedisMaxLen))
	}
	switch c.Audio.Source {
	case "stdin", "http", "file", "microphone":
	default:
		errs = append(errs, fmt.Errorf("audio.source %q is not one of stdin, http, file, microphone", c.Audio.Source))
	}
	if _, err := c.GrblTiming(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) DeviceConfig() domain.DeviceConfig {
	return domain.DeviceConfig{
		MotorStepsPerRev: c.Device.MotorStepsPerRev,
		Microsteps:       c.Device.Microsteps,
		FeedRate:         c.Device.FeedRate,
		SerialPort:       c.Device.SerialPort,
		BaudRate:         c.Device.BaudRate,
	}
}

// ReadTimeout parses device.read_timeout. The serial driver needs a positive
// value to detect the end of a reply.
func (c *Config) ReadTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Device.ReadTimeout)
	if err != nil {
		return 0, fmt.Errorf("parsing device.read_timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("device.read_timeout must be positive, got %s", d)
	}
	return d, nil
}

func (c *Config) GrblTiming() (grbl.Timing, error) {
	var t grbl.Timing
	fields := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"timing.wake_delay", c.Timing.WakeDelay, &t.WakeDelay},
		{"timing.flush_delay", c.Timing.FlushDelay, &t.FlushDelay},
		{"timing.settle_delay", c.Timing.SettleDelay, &t.SettleDelay},
		{"timing.move_settle_delay", c.Timing.MoveSettleDelay, &t.MoveSettleDelay},
		{"timing.hold_delay", c.Timing.HoldDelay, &t.HoldDelay},
	}
	for _, f := range fields {
		d, err := time.ParseDuration(f.value)
		if err != nil {
			return grbl.Timing{}, fmt.Errorf("parsing %s: %w", f.name, err)
		}
		if d < 0 {
			return grbl.Timing{}, fmt.Errorf("%s must not be negative", f.name)
		}
		*f.dst = d
	}
	return t, nil
}

func (c *Config) CaptureDuration() time.Duration {
	return time.Duration(c.Audio.CaptureSeconds) * time.Second
}
