package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"voice-grbl/internal/domain"
)

const processedSuffix = ".processed"

var audioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".webm": true,
	".flac": true,
}

// FileSource replays utterances dropped into a directory, oldest name first.
// Audio files are passed on as-is; .txt files carry a ready transcript. Each
// file is renamed with a .processed suffix once read.
type FileSource struct {
	dir      string
	interval time.Duration
	drain    bool
	mu       sync.Mutex
}

type FileOption func(*FileSource)

// WithPollInterval sets how often the directory is rescanned. Default 500ms.
func WithPollInterval(d time.Duration) FileOption {
	return func(f *FileSource) {
		if d > 0 {
			f.interval = d
		}
	}
}

// WithDrain makes NextCommand return io.EOF once the directory holds no
// unprocessed files, instead of waiting for new ones.
func WithDrain() FileOption {
	return func(f *FileSource) {
		f.drain = true
	}
}

func NewFileSource(dir string, opts ...FileOption) *FileSource {
	f := &FileSource{dir: dir, interval: 500 * time.Millisecond}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Start(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("creating audio dir: %w", err)
	}
	return nil
}

func (f *FileSource) Stop() error {
	return nil
}

func (f *FileSource) NextCommand(ctx context.Context) ([]byte, error) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		data, err := f.next()
		if err != nil || data != nil {
			return data, err
		}
		if f.drain {
			return nil, io.EOF
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// next consumes the first pending file, skipping empty transcripts. It
// returns nil, nil when nothing is pending.
func (f *FileSource) next() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading dir: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if entry.IsDir() || (!audioExtensions[ext] && ext != ".txt") {
			continue
		}

		path := filepath.Join(f.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if err := os.Rename(path, path+processedSuffix); err != nil {
			return nil, fmt.Errorf("marking %s processed: %w", path, err)
		}

		if ext != ".txt" {
			return data, nil
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			return []byte(domain.TextCommandPrefix + text), nil
		}
	}
	return nil, nil
}
