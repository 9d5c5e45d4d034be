package game

import (
	"context"
	"errors"
)

// ErrStrandStopped is returned by Do after the strand shut down.
var ErrStrandStopped = errors.New("strand stopped")

// Strand is a serial executor: one goroutine runs all submitted jobs, so
// everything it touches needs no locks. Commands and simulation ticks are
// both strand jobs, which gives them a total FIFO order.
type Strand struct {
	jobs    chan func()
	stopped chan struct{}
}

func NewStrand() *Strand {
	return &Strand{
		jobs:    make(chan func()),
		stopped: make(chan struct{}),
	}
}

// Run executes jobs until ctx is cancelled. An in-flight job always runs to
// completion.
func (s *Strand) Run(ctx context.Context) error {
	defer close(s.stopped)
	for {
		select {
		case job := <-s.jobs:
			job()
		case <-ctx.Done():
			return nil
		}
	}
}

// Do runs f on the strand and waits for it to finish. The jobs channel is
// unbuffered, so once the send succeeds the job is guaranteed to execute.
func (s *Strand) Do(ctx context.Context, f func()) error {
	done := make(chan struct{})
	job := func() {
		defer close(done)
		f()
	}
	select {
	case s.jobs <- job:
	case <-s.stopped:
		return ErrStrandStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-done
	return nil
}
