package pushover_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-grbl/internal/infra/pushover"
)

func TestClient_NotifyPostsForm(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = map[string]string{
			"token":   r.PostForm.Get("token"),
			"user":    r.PostForm.Get("user"),
			"title":   r.PostForm.Get("title"),
			"message": r.PostForm.Get("message"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := pushover.NewClientWithURL("app-token", "user-key", server.URL)
	require.NoError(t, c.Notify(context.Background(), "move failed"))

	assert.Equal(t, map[string]string{
		"token":   "app-token",
		"user":    "user-key",
		"title":   "Voice GRBL",
		"message": "move failed",
	}, got)
}

func TestClient_DisabledWithoutCredentials(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	c := pushover.NewClientWithURL("", "user-key", server.URL)
	assert.False(t, c.Enabled())
	assert.NoError(t, c.Notify(context.Background(), "ignored"))
	assert.Zero(t, calls.Load())
}

func TestClient_RejectedRequestIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c := pushover.NewClientWithURL("t", "u", server.URL)
	err := c.Notify(context.Background(), "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, int32(1), calls.Load())
}
