package sessionlog

import (
	"context"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"voice-grbl/internal/domain"
)

const DefaultStream = "voicegrbl:log"

// RedisLogger appends records to a Redis stream, one field per column.
type RedisLogger struct {
	client *backend.Client
	stream string
	maxLen int64
	owned  bool
}

type RedisOption func(*RedisLogger)

// WithStream overrides DefaultStream.
func WithStream(stream string) RedisOption {
	return func(l *RedisLogger) {
		if stream != "" {
			l.stream = stream
		}
	}
}

// WithMaxLen trims the stream to the newest n records. Zero keeps everything.
func WithMaxLen(n int64) RedisOption {
	return func(l *RedisLogger) {
		l.maxLen = n
	}
}

func NewRedisLogger(addr string, opts ...RedisOption) *RedisLogger {
	l := NewRedisLoggerFromClient(backend.NewClient(&backend.Options{Addr: addr}), opts...)
	l.owned = true
	return l
}

func NewRedisLoggerFromClient(client *backend.Client, opts ...RedisOption) *RedisLogger {
	l := &RedisLogger{client: client, stream: DefaultStream}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisLogger) Append(ctx context.Context, e domain.LogEntry) error {
	record := row(e)
	values := make(map[string]any, len(Columns)+1)
	for i, col := range Columns {
		values[col] = record[i]
	}
	values["error"] = e.Error

	args := &backend.XAddArgs{
		Stream: l.stream,
		Values: values,
	}
	if l.maxLen > 0 {
		args.MaxLen = l.maxLen
	}

	if err := l.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", l.stream, err)
	}
	return nil
}

func (l *RedisLogger) Close() error {
	if !l.owned {
		return nil
	}
	return l.client.Close()
}
