package cache

import (
	"context"
	"errors"
	"fmt"

	"healthops/internal/domain"
)

// Recorder counts invalidation attempts per sink.
type Recorder interface {
	ObserveInvalidation(sink, kind string, err error)
}

// Sink is a named invalidation target.
type Sink struct {
	Name        string
	Invalidator domain.Invalidator
}

// Fanout delivers every key to all sinks. One failing sink does not stop
// the others; the failures are joined into the returned error.
type Fanout struct {
	sinks    []Sink
	recorder Recorder
}

// NewFanout creates a Fanout. recorder may be nil.
func NewFanout(recorder Recorder, sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks, recorder: recorder}
}

// Invalidate implements domain.Invalidator.
func (f *Fanout) Invalidate(ctx context.Context, key domain.CacheKey) error {
	if key.IsZero() {
		return nil
	}

	var errs []error
	for _, s := range f.sinks {
		err := s.Invalidator.Invalidate(ctx, key)
		if f.recorder != nil {
			f.recorder.ObserveInvalidation(s.Name, string(key.Kind), err)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

var _ domain.Invalidator = (*Fanout)(nil)
