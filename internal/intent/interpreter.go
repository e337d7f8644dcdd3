// Package intent turns a freeform transcript into a motion Command using a
// fixed vocabulary. There is no grammar beyond direction, magnitude and stop.
package intent

import (
	"context"

	"voice-grbl/internal/domain"
)

var stopWords = wordSet(
	"stop", "stops", "stopped", "stopping",
	"hold", "holds", "holding",
	"pause", "pauses", "paused", "pausing",
)

var forwardWords = wordSet("forward", "forwards", "clockwise", "cw")

var backwardWords = wordSet(
	"backward", "backwards", "reverse", "counter",
	"counterclockwise", "anticlockwise", "ccw",
)

func wordSet(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Interpret maps one transcript to a Command. Rule order matters:
// stop vocabulary beats everything, then the first direction word in the
// text decides the direction, then the magnitude is resolved. Unit words
// ("turns", "spins", "revs") are allowed but not required.
func Interpret(transcript string) domain.Command {
	words := wordPattern.FindAllString(normalize(transcript), -1)

	for _, w := range words {
		if _, ok := stopWords[w]; ok {
			return domain.NewStop(transcript)
		}
	}

	dir := findDirection(words)
	if dir == domain.DirectionNone {
		return domain.NewUnrecognized(transcript)
	}

	magnitude, ok := ResolveQuantity(transcript)
	if !ok {
		return domain.NewUnrecognized(transcript)
	}

	return domain.NewMove(dir, magnitude, transcript)
}

func findDirection(words []string) domain.Direction {
	for _, w := range words {
		if _, ok := forwardWords[w]; ok {
			return domain.DirectionForward
		}
		if _, ok := backwardWords[w]; ok {
			return domain.DirectionBackward
		}
	}
	return domain.DirectionNone
}

// Parser adapts Interpret to the application's IntentParser port.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(_ context.Context, text string) (domain.Command, error) {
	return Interpret(text), nil
}
