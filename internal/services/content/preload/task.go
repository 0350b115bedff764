package preload

import (
	"context"
	"fmt"

	apperrors "github.com/louisbranch/dragon.arena/internal/platform/errors"
	"github.com/louisbranch/dragon.arena/internal/services/content/catalog"
)

// LoadFunc builds a complete index.
type LoadFunc func(context.Context) (*catalog.Index, error)

// Task is a preload running on its own goroutine.
type Task struct {
	done  chan struct{}
	index *catalog.Index
	err   error
}

// Start runs load on a new goroutine and returns immediately.
func Start(ctx context.Context, load LoadFunc) *Task {
	if ctx == nil {
		ctx = context.Background()
	}
	task := &Task{done: make(chan struct{})}
	go task.run(ctx, load)
	return task
}

func (t *Task) run(ctx context.Context, load LoadFunc) {
	defer close(t.done)
	defer func() {
		if r := recover(); r != nil {
			t.index = nil
			t.err = apperrors.New(apperrors.CodePreloadWorkerExited, fmt.Sprintf("preload worker exited: %v", r))
		}
	}()

	if load == nil {
		t.err = apperrors.New(apperrors.CodePreloadWorkerExited, "preload worker has no load function")
		return
	}
	index, err := load(ctx)
	if err != nil {
		t.err = err
		return
	}
	if index == nil {
		t.err = apperrors.New(apperrors.CodePreloadWorkerExited, "preload worker exited without a result")
		return
	}
	t.index = index
}

// Done is closed once the task has produced its outcome.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx ends. It may be called more
// than once; every call returns the same outcome.
func (t *Task) Wait(ctx context.Context) (*catalog.Index, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-t.done:
		return t.index, t.err
	case <-ctx.Done():
		return nil, fmt.Errorf("wait for preload: %w", ctx.Err())
	}
}
