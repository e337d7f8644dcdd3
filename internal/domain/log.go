package domain

import "time"

// LogEntry is one append-only record per executed or attempted move.
type LogEntry struct {
	Timestamp    time.Time
	Transcript   string
	Direction    Direction
	Magnitude    float64
	StepsPerTurn int
	TotalSteps   int
	ProtocolLine string
	DeviceReply  string
	Error        string
}
