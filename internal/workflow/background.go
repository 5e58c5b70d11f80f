package workflow

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Background runs trailing work that its caller does not wait for, such as
// the history refresh after a submission. Work is detached from the caller's
// cancellation so that it runs to completion; Wait blocks until it has.
type Background struct {
	group errgroup.Group
}

// Go runs fn in its own goroutine with a context that keeps the values of
// ctx but not its cancellation.
func (b *Background) Go(ctx context.Context, fn func(ctx context.Context)) {
	detached := context.WithoutCancel(ctx)
	b.group.Go(func() error {
		fn(detached)
		return nil
	})
}

// Wait blocks until every started function has returned.
func (b *Background) Wait() {
	_ = b.group.Wait() //nolint:errcheck // functions never fail
}
