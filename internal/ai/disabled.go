package ai

import (
	"context"
	"errors"

	"github.com/nimbusdrive/nimbus/internal/model"
)

var ErrDisabled = errors.New("ai features are not configured")

// Disabled stands in when no API key is configured. Uploads still work,
// they just never get summaries, and chat reports the feature as off.
type Disabled struct{}

func (Disabled) Analyze(ctx context.Context, file *model.File, image []byte) Analysis {
	return Analysis{Summary: failedSummary, Tags: []string{}}
}

func (Disabled) Chat(ctx context.Context, file *model.File, image []byte, message string) (string, error) {
	return "", ErrDisabled
}
