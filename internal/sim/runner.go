package sim

import (
	"context"
	"time"

	"github.com/san-kum/melter/internal/dynamo"
)

// Run drives the melter with fixed frames of real time until total has been
// fed, checking ctx between frames.
func (m *Melter) Run(ctx context.Context, frame, total time.Duration) error {
	if frame <= 0 {
		return dynamo.Invalidf("frame time must be positive, got %v", frame)
	}
	for fed := time.Duration(0); fed < total; fed += frame {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, err := m.Tick(frame); err != nil {
			return err
		}
	}
	return nil
}
