// Package sessionlog persists one record per executed or attempted move.
// Sinks only ever append.
package sessionlog

import (
	"strconv"
	"strings"
	"time"

	"voice-grbl/internal/domain"
)

// Columns is the record layout shared by every sink.
var Columns = []string{
	"timestamp_iso",
	"transcript",
	"direction",
	"turns",
	"steps_per_turn",
	"total_steps",
	"gcode",
	"grbl_reply",
}

const timestampLayout = "2006-01-02T15:04:05"

// JoinReply flattens a multi-line controller reply into a single field.
func JoinReply(reply string) string {
	var parts []string
	for _, line := range strings.Split(strings.ReplaceAll(reply, "\r", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " | ")
}

func formatTurns(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func formatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

// row renders an entry in Columns order. A failed move records its error in
// the reply column.
func row(e domain.LogEntry) []string {
	reply := JoinReply(e.DeviceReply)
	if e.Error != "" {
		reply = "error: " + e.Error
	}
	return []string{
		formatTimestamp(e.Timestamp),
		e.Transcript,
		string(e.Direction),
		formatTurns(e.Magnitude),
		strconv.Itoa(e.StepsPerTurn),
		strconv.Itoa(e.TotalSteps),
		e.ProtocolLine,
		reply,
	}
}
