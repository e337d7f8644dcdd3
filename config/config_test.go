package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-grbl/config"
	"voice-grbl/internal/infra/grbl"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAMLDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", "device:\n  serial_port: /dev/ttyUSB0\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Device.SerialPort)
	assert.Equal(t, 115200, cfg.Device.BaudRate)
	assert.Equal(t, "stdin", cfg.Audio.Source)
	assert.Equal(t, "whisper-1", cfg.OpenAI.Model)
	assert.Equal(t, "grbl_voice_report.csv", cfg.Report.CSVPath)

	dev := cfg.DeviceConfig()
	assert.Equal(t, 3200, dev.StepsPerRevolution())
	assert.Equal(t, 60.0, dev.FeedRate)

	timing, err := cfg.GrblTiming()
	require.NoError(t, err)
	assert.Equal(t, grbl.DefaultTiming(), timing)

	readTimeout, err := cfg.ReadTimeout()
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, readTimeout)
	assert.Zero(t, cfg.Report.RedisMaxLen)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[device]
motor_steps_per_rev = 400
microsteps = 8
feed_rate = 120.5

read_timeout = "20ms"

[timing]
move_settle_delay = "350ms"

[report]
redis_maxlen = 500

[audio]
source = "http"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3200, cfg.DeviceConfig().StepsPerRevolution())
	assert.Equal(t, 120.5, cfg.Device.FeedRate)
	assert.Equal(t, "http", cfg.Audio.Source)

	timing, err := cfg.GrblTiming()
	require.NoError(t, err)
	assert.Equal(t, 350*time.Millisecond, timing.MoveSettleDelay)

	readTimeout, err := cfg.ReadTimeout()
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, readTimeout)
	assert.Equal(t, int64(500), cfg.Report.RedisMaxLen)
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("VOICEGRBL_TEST_KEY", "sk-test")
	path := writeFile(t, "config.yaml", "openai:\n  api_key: ${VOICEGRBL_TEST_KEY}\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"negative steps", "device:\n  motor_steps_per_rev: -200\n", "motor_steps_per_rev"},
		{"negative microsteps", "device:\n  microsteps: -1\n", "microsteps"},
		{"negative feed", "device:\n  feed_rate: -5\n", "feed_rate"},
		{"negative baud", "device:\n  baud_rate: -9600\n", "baud_rate"},
		{"unknown source", "audio:\n  source: carrier-pigeon\n", "audio.source"},
		{"bad duration", "timing:\n  hold_delay: soon\n", "timing.hold_delay"},
		{"zero read timeout", "device:\n  read_timeout: 0s\n", "device.read_timeout"},
		{"negative redis maxlen", "report:\n  redis_maxlen: -1\n", "report.redis_maxlen"},
		{"malformed yaml", "device: [\n", "parsing config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, "config.yaml", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 4*time.Second, cfg.CaptureDuration())
}
