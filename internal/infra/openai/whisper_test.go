package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-grbl/internal/infra/openai"
)

func TestWhisperClient_Transcribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))
		assert.Equal(t, "en", r.FormValue("language"))

		json.NewEncoder(w).Encode(map[string]any{
			"text":     "Backward 1.5 turns.",
			"language": "english",
			"segments": []map[string]any{
				{"text": " Backward", "tokens": []int{50364, 5833}},
				{"text": " 1.5 turns.", "tokens": []int{502, 13, 20, 4523}},
			},
		})
	}))
	defer server.Close()

	client := openai.NewWhisperClientWithURL("test-key", "en", "", server.URL)

	transcript, err := client.Transcribe(context.Background(), []byte("RIFF"))
	require.NoError(t, err)

	assert.Equal(t, "Backward 1.5 turns.", transcript.Text())
	assert.Equal(t, "english", transcript.Language)
	assert.Equal(t, 6, transcript.TokenCount())
}

func TestWhisperClient_FallsBackToText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"text": "stop"})
	}))
	defer server.Close()

	client := openai.NewWhisperClientWithURL("k", "", "whisper-1", server.URL)

	transcript, err := client.Transcribe(context.Background(), []byte("RIFF"))
	require.NoError(t, err)
	assert.Equal(t, "stop", transcript.Text())
}

func TestWhisperClient_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "invalid file format", http.StatusBadRequest)
	}))
	defer server.Close()

	client := openai.NewWhisperClientWithURL("k", "en", "", server.URL)

	_, err := client.Transcribe(context.Background(), []byte("not audio"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, int32(1), calls.Load())
}
