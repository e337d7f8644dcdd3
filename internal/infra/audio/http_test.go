package audio_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-grbl/internal/infra/audio"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHTTPSource_ReceiveAudio(t *testing.T) {
	source := audio.NewHTTPSource(":0", "", discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, source.Start(ctx))
	defer source.Stop()

	testAudio := []byte("fake audio data for testing")

	go func() {
		time.Sleep(100 * time.Millisecond)
		source.InjectAudio(testAudio)
	}()

	received, err := source.NextCommand(ctx)
	require.NoError(t, err)
	assert.Equal(t, testAudio, received)
}

func TestHTTPSource_StopEndsCommands(t *testing.T) {
	source := audio.NewHTTPSource(":0", "", discardLogger())
	require.NoError(t, source.Start(context.Background()))
	require.NoError(t, source.Stop())

	_, err := source.NextCommand(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestHTTPSource_HandleAudioEndpoint(t *testing.T) {
	source := audio.NewHTTPSource(":0", "", discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/audio", bytes.NewReader([]byte("test audio content")))
	rec := httptest.NewRecorder()
	source.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestHTTPSource_TextEndpointQueuesTranscript(t *testing.T) {
	source := audio.NewHTTPSource(":0", "", discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/text", strings.NewReader("  forward two turns\n"))
	rec := httptest.NewRecorder()
	source.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	data, err := source.NextCommand(context.Background())
	require.NoError(t, err)

	text, ok := audio.IsTextCommand(data)
	require.True(t, ok)
	assert.Equal(t, "forward two turns", text)
}

func TestHTTPSource_TextEndpointRejectsEmpty(t *testing.T) {
	source := audio.NewHTTPSource(":0", "", discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/text", strings.NewReader("   "))
	rec := httptest.NewRecorder()
	source.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPSource_AuthToken(t *testing.T) {
	authToken := "test-secret-token-123"
	source := audio.NewHTTPSource(":0", authToken, discardLogger())
	handler := source.Handler()

	tests := []struct {
		name       string
		token      string
		method     string
		wantStatus int
	}{
		{name: "valid token in header", token: authToken, method: "header", wantStatus: http.StatusAccepted},
		{name: "valid token in query", token: authToken, method: "query", wantStatus: http.StatusAccepted},
		{name: "invalid token", token: "wrong-token", method: "header", wantStatus: http.StatusUnauthorized},
		{name: "missing token", token: "", method: "header", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := strings.NewReader("reverse 2")
			var req *http.Request

			if tt.method == "query" {
				req = httptest.NewRequest(http.MethodPost, "/text?token="+tt.token, body)
			} else {
				req = httptest.NewRequest(http.MethodPost, "/text", body)
				if tt.token != "" {
					req.Header.Set("X-Auth-Token", tt.token)
				}
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHTTPSource_HoldEndpoint(t *testing.T) {
	source := audio.NewHTTPSource(":0", "", discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/hold", nil)
	rec := httptest.NewRecorder()
	source.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "no handler wired yet")

	calls := 0
	source.SetHoldHandler(func(_ context.Context) (string, error) {
		calls++
		return "<Hold:0|MPos:1.000,0.000,0.000>\r\n", nil
	})

	rec = httptest.NewRecorder()
	source.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hold", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "held", body["status"])
	assert.Equal(t, "<Hold:0|MPos:1.000,0.000,0.000>", body["reply"])
}

func TestHTTPSource_HoldEndpointIsNotRateLimited(t *testing.T) {
	source := audio.NewHTTPSource(":0", "", discardLogger())
	source.SetHoldHandler(func(_ context.Context) (string, error) { return "", nil })

	for i := 0; i < 40; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/hold", nil)
		req.Header.Set("X-Real-IP", "10.0.0.1")
		source.Handler().ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}
}

func TestHTTPSource_HoldEndpointDeviceError(t *testing.T) {
	source := audio.NewHTTPSource(":0", "", discardLogger())
	source.SetHoldHandler(func(_ context.Context) (string, error) {
		return "", errors.New("device i/o failure")
	})

	rec := httptest.NewRecorder()
	source.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hold", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHTTPSource_Health(t *testing.T) {
	source := audio.NewHTTPSource(":0", "", discardLogger())

	rec := httptest.NewRecorder()
	source.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.NoError(t, source.Start(context.Background()))
	defer source.Stop()

	rec = httptest.NewRecorder()
	source.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFileSource_LoadFromDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	files := map[string][]byte{
		"command1.wav": []byte("RIFF....WAVEfmt audio data 1"),
		"command2.txt": []byte("backward 1.5 turns\n"),
		"notes.md":     []byte("ignored"),
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, name), content, 0644))
	}

	source := audio.NewFileSource(tmpDir)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	require.NoError(t, source.Start(ctx))

	first, err := source.NextCommand(ctx)
	require.NoError(t, err)
	assert.Equal(t, files["command1.wav"], first)

	second, err := source.NextCommand(ctx)
	require.NoError(t, err)
	text, ok := audio.IsTextCommand(second)
	require.True(t, ok)
	assert.Equal(t, "backward 1.5 turns", text)

	_, err = os.Stat(filepath.Join(tmpDir, "command1.wav.processed"))
	assert.NoError(t, err)

	_, err = source.NextCommand(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFileSource_DrainEndsWithEOF(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "a.txt"), []byte("cw 1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "b.txt"), []byte("   "), 0o644))

	source := audio.NewFileSource(tmpDir, audio.WithDrain(), audio.WithPollInterval(time.Millisecond))
	require.NoError(t, source.Start(context.Background()))

	data, err := source.NextCommand(context.Background())
	require.NoError(t, err)
	text, ok := audio.IsTextCommand(data)
	require.True(t, ok)
	assert.Equal(t, "cw 1", text)

	// The blank transcript is consumed and skipped.
	_, err = source.NextCommand(context.Background())
	assert.ErrorIs(t, err, io.EOF)

	_, err = os.Stat(filepath.Join(tmpDir, "b.txt.processed"))
	assert.NoError(t, err)
}
