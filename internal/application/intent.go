package application

import (
	"context"

	"voice-grbl/internal/domain"
)

type IntentParser interface {
	Parse(ctx context.Context, text string) (domain.Command, error)
}
