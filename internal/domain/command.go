package domain

import "math"

type CommandKind string

const (
	CommandMove         CommandKind = "move"
	CommandStop         CommandKind = "stop"
	CommandUnrecognized CommandKind = "unrecognized"
)

type Direction string

const (
	DirectionNone     Direction = ""
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
)

// TextCommandPrefix is the marker used to indicate text commands (vs audio)
const TextCommandPrefix = "__TEXT__:"

// Command is the structured intent derived from one transcript.
// Direction and Magnitude are only meaningful when Kind is CommandMove.
type Command struct {
	Kind      CommandKind
	Direction Direction
	Magnitude float64
	RawText   string
}

// MaxMagnitude is the largest rotation count a single move accepts.
const MaxMagnitude = 1e6

// NewMove builds a Move. A magnitude that is negative, not a number or above
// MaxMagnitude cannot describe a rotation count and yields an Unrecognized
// command instead.
func NewMove(dir Direction, magnitude float64, raw string) Command {
	if dir != DirectionForward && dir != DirectionBackward {
		return NewUnrecognized(raw)
	}
	if math.IsNaN(magnitude) || math.IsInf(magnitude, 0) || magnitude < 0 || magnitude > MaxMagnitude {
		return NewUnrecognized(raw)
	}
	return Command{Kind: CommandMove, Direction: dir, Magnitude: magnitude, RawText: raw}
}

func NewStop(raw string) Command {
	return Command{Kind: CommandStop, RawText: raw}
}

func NewUnrecognized(raw string) Command {
	return Command{Kind: CommandUnrecognized, RawText: raw}
}

func (c Command) IsMove() bool {
	return c.Kind == CommandMove
}
