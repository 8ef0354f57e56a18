package numerator

import (
	"context"
	"time"
)

// Generator hands out sequential numbers.
// Implementations join the transaction carried by ctx, so a rolled back
// insert gives its number back.
type Generator interface {
	// GetNextNumber returns the next number for cfg in period,
	// e.g. LIC-2026-00001.
	GetNextNumber(ctx context.Context, cfg Config, period time.Time) (string, error)
}
