package sessionlog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"voice-grbl/internal/domain"
)

// CSVLogger appends records to a CSV file, writing the header when the file
// is missing or empty.
type CSVLogger struct {
	path string
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

func NewCSVLogger(path string) (*CSVLogger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating report directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening csv report: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat csv report: %w", err)
	}

	l := &CSVLogger{path: path, file: f, w: csv.NewWriter(f)}
	if info.Size() == 0 {
		if err := l.writeRow(Columns); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing csv header: %w", err)
		}
	}
	return l, nil
}

func (l *CSVLogger) Path() string {
	return l.path
}

func (l *CSVLogger) Append(_ context.Context, entry domain.LogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return os.ErrClosed
	}
	if err := l.writeRow(row(entry)); err != nil {
		return fmt.Errorf("appending csv record: %w", err)
	}
	return nil
}

func (l *CSVLogger) writeRow(record []string) error {
	if err := l.w.Write(record); err != nil {
		return err
	}
	l.w.Flush()
	return l.w.Error()
}

func (l *CSVLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
