// Package motion converts resolved Move commands into GRBL protocol lines.
//
// The controller is calibrated so that one distance unit equals one full
// revolution ($100 is set to steps per revolution during the handshake), so
// the X distance of a move is numerically the rotation count.
package motion

import (
	"errors"
	"fmt"
	"math"

	"voice-grbl/internal/domain"
)

var (
	ErrNotMove       = errors.New("only move commands can be translated")
	ErrStepsOverflow = errors.New("step count out of range")
)

// Translate builds the MotionPlan for a Move. It is a pure function of its
// arguments.
func Translate(cmd domain.Command, cfg domain.DeviceConfig) (domain.MotionPlan, error) {
	if !cmd.IsMove() {
		return domain.MotionPlan{}, fmt.Errorf("translating %s command: %w", cmd.Kind, ErrNotMove)
	}

	distance := cmd.Magnitude
	if cmd.Direction == domain.DirectionBackward && distance != 0 {
		distance = -distance
	}

	// Fractional steps are rounded, never rejected.
	steps := math.Round(float64(cfg.StepsPerRevolution()) * cmd.Magnitude)
	if math.IsNaN(steps) || math.Abs(steps) >= math.MaxInt {
		return domain.MotionPlan{}, fmt.Errorf("translating %v turns: %w", cmd.Magnitude, ErrStepsOverflow)
	}

	return domain.MotionPlan{
		ProtocolLine:   MoveLine(distance, cfg.FeedRate),
		SignedDistance: distance,
		TotalSteps:     int(steps),
	}, nil
}

// MoveLine formats a relative linear move.
func MoveLine(distance, feed float64) string {
	return fmt.Sprintf("G1 X%.4f F%.2f", distance, feed)
}

// CalibrationLines returns the one-time session configuration sent after the
// wake sequence: steps per distance unit, feed ceiling, relative positioning.
func CalibrationLines(cfg domain.DeviceConfig) []string {
	return []string{
		fmt.Sprintf("$100=%.3f", float64(cfg.StepsPerRevolution())),
		fmt.Sprintf("$110=%.1f", cfg.FeedRate),
		"G91",
	}
}
