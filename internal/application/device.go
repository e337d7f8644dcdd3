package application

import "context"

// MotionDevice is the controller session. Send is line based and strictly
// one at a time; FeedHold may be called at any moment.
type MotionDevice interface {
	Send(ctx context.Context, line string) (string, error)
	FeedHold(ctx context.Context) (string, error)
}
