package sessionlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"voice-grbl/internal/domain"

	_ "modernc.org/sqlite" // SQLite driver.
)

// SQLiteLogger stores records in a moves table.
type SQLiteLogger struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database and applies migrations.
func OpenSQLite(path string) (*SQLiteLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	l := &SQLiteLogger{db: db}
	if err := l.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating sqlite: %w", err)
	}
	return l, nil
}

func (l *SQLiteLogger) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS moves (
			id INTEGER PRIMARY KEY,
			logged_at TEXT NOT NULL,
			transcript TEXT NOT NULL,
			direction TEXT NOT NULL,
			turns REAL NOT NULL,
			steps_per_turn INTEGER NOT NULL,
			total_steps INTEGER NOT NULL,
			gcode TEXT NOT NULL,
			grbl_reply TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_moves_logged_at ON moves(logged_at);`,
	}
	for _, stmt := range stmts {
		if _, err := l.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (l *SQLiteLogger) Append(ctx context.Context, e domain.LogEntry) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO moves (logged_at, transcript, direction, turns, steps_per_turn, total_steps, gcode, grbl_reply, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Timestamp.Format(time.RFC3339Nano),
		e.Transcript,
		string(e.Direction),
		e.Magnitude,
		e.StepsPerTurn,
		e.TotalSteps,
		e.ProtocolLine,
		JoinReply(e.DeviceReply),
		e.Error,
	)
	if err != nil {
		return fmt.Errorf("inserting move: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (l *SQLiteLogger) Recent(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT logged_at, transcript, direction, turns, steps_per_turn, total_steps, gcode, grbl_reply, error
		 FROM moves ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LogEntry
	for rows.Next() {
		var (
			e         domain.LogEntry
			loggedAt  string
			direction string
		)
		if err := rows.Scan(&loggedAt, &e.Transcript, &direction, &e.Magnitude, &e.StepsPerTurn,
			&e.TotalSteps, &e.ProtocolLine, &e.DeviceReply, &e.Error); err != nil {
			return nil, err
		}
		e.Direction = domain.Direction(direction)
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, loggedAt); err != nil {
			return nil, fmt.Errorf("parsing logged_at %q: %w", loggedAt, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (l *SQLiteLogger) Close() error {
	return l.db.Close()
}
