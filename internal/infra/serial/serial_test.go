package serial_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-grbl/internal/infra/serial"
)

func TestDefaultConfig(t *testing.T) {
	cfg := serial.DefaultConfig("/dev/ttyACM0")

	assert.Equal(t, "/dev/ttyACM0", cfg.Device)
	assert.Equal(t, 115200, cfg.Baud)
	assert.Greater(t, cfg.ReadTimeout, time.Duration(0))
}

func TestOpen_RejectsBadConfig(t *testing.T) {
	_, err := serial.Open(nil)
	require.Error(t, err)

	_, err = serial.Open(&serial.Config{Device: "/dev/null", Baud: 9600})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read timeout")
}

func TestOpen_MissingDevice(t *testing.T) {
	_, err := serial.Open(serial.DefaultConfig("/dev/does-not-exist-voicegrbl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/dev/does-not-exist-voicegrbl")
}
