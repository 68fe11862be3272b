package safe

import (
	"context"
)

// Pool bounds the number of blocking jobs running at the same time.
// Callers that cannot get a slot wait until one frees up or ctx is done.
type Pool struct {
	slots chan struct{}
}

func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{
		slots: make(chan struct{}, size),
	}
}

// Do runs fn on its own goroutine once a slot is free and waits for the result.
// If ctx ends first Do returns ctx.Err(); a job that already started keeps its
// slot until it finishes.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	done := make(chan error, 1)
	go func() {
		defer func() { <-p.slots }()
		done <- Call(fn)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
