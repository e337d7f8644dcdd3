//go:build portaudio

package audio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gordonklaus/portaudio"

	"voice-grbl/internal/application"
)

// MicrophoneSource records a fixed-length clip each time ENTER is pressed.
type MicrophoneSource struct {
	stream  *portaudio.Stream
	buffer  []int16
	format  application.AudioFormat
	capture time.Duration
	trigger *bufio.Reader
	logger  *slog.Logger
}

func NewMicrophoneSource(sampleRate int, capture time.Duration, logger *slog.Logger) *MicrophoneSource {
	format := application.DefaultAudioFormat()
	if sampleRate > 0 {
		format.SampleRate = sampleRate
	}
	return &MicrophoneSource{
		format:  format,
		capture: capture,
		trigger: bufio.NewReader(os.Stdin),
		logger:  logger,
	}
}

func (m *MicrophoneSource) Name() string {
	return "microphone"
}

func (m *MicrophoneSource) Start(_ context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	framesPerBuffer := 1024
	m.buffer = make([]int16, framesPerBuffer)

	stream, err := portaudio.OpenDefaultStream(
		m.format.Channels,
		0,
		float64(m.format.SampleRate),
		framesPerBuffer,
		m.buffer,
	)
	if err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}

	m.stream = stream
	m.logger.Info("microphone ready", "sampleRate", m.format.SampleRate, "capture", m.capture)
	return nil
}

func (m *MicrophoneSource) Stop() error {
	if m.stream != nil {
		m.stream.Close()
	}
	return portaudio.Terminate()
}

func (m *MicrophoneSource) NextCommand(ctx context.Context) ([]byte, error) {
	fmt.Print("Press ENTER and speak... ")
	if _, err := m.trigger.ReadString('\n'); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("waiting for trigger: %w", err)
	}

	fmt.Printf("Speak now (%.0fs)...\n", m.capture.Seconds())

	if err := m.stream.Start(); err != nil {
		return nil, fmt.Errorf("starting stream: %w", err)
	}
	defer m.stream.Stop()

	want := int(m.capture.Seconds() * float64(m.format.SampleRate))
	samples := make([]int16, 0, want)

	for len(samples) < want {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := m.stream.Read(); err != nil {
			return nil, fmt.Errorf("reading from stream: %w", err)
		}
		samples = append(samples, m.buffer...)
	}

	return samplesToWav(samples[:want], m.format)
}

func samplesToWav(samples []int16, format application.AudioFormat) ([]byte, error) {
	var buf bytes.Buffer

	blockAlign := format.Channels * format.BitDepth / 8
	dataSize := len(samples) * 2
	fileSize := 36 + dataSize

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, int32(fileSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, int32(16))
	binary.Write(&buf, binary.LittleEndian, int16(1))
	binary.Write(&buf, binary.LittleEndian, int16(format.Channels))
	binary.Write(&buf, binary.LittleEndian, int32(format.SampleRate))
	binary.Write(&buf, binary.LittleEndian, int32(format.SampleRate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, int16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, int16(format.BitDepth))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, int32(dataSize))
	if err := binary.Write(&buf, binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("encoding samples: %w", err)
	}

	return buf.Bytes(), nil
}
