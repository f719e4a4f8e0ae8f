package toolserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

const invokeTimeout = 60 * time.Second

// caller is the session surface the dispatcher drives.
type caller interface {
	Call(ctx context.Context, operation string, args map[string]any) (json.RawMessage, error)
}

type task struct {
	ctx       context.Context
	operation string
	args      map[string]any
	reply     chan taskResult
}

type taskResult struct {
	payload json.RawMessage
	err     error
}

// Invoker funnels remote calls from any number of worker goroutines through
// one dispatcher goroutine, so at most one call is ever in flight against
// the session. The queue is the serialization point; no lock is shared with
// the callers.
type Invoker struct {
	tasks     chan task
	quit      chan struct{}
	timeout   time.Duration
	closeOnce sync.Once
}

// NewInvoker starts the dispatcher goroutine over the given session.
func NewInvoker(session caller) *Invoker {
	it := &Invoker{
		tasks:   make(chan task),
		quit:    make(chan struct{}),
		timeout: invokeTimeout,
	}
	go it.dispatch(session)
	return it
}

func (it *Invoker) dispatch(session caller) {
	for {
		select {
		case <-it.quit:
			return
		case t := <-it.tasks:
			callCtx, cancel := context.WithTimeout(t.ctx, it.timeout)
			payload, err := session.Call(callCtx, t.operation, t.args)
			cancel()
			t.reply <- taskResult{payload: payload, err: err}
		}
	}
}

// Invoke submits one call and blocks until it completes or the timeout
// elapses. A timeout surfaces as entities.ErrCallTimeout, never as a
// connection fault.
func (it *Invoker) Invoke(ctx context.Context, operation string, args map[string]any) (json.RawMessage, error) {
	timer := time.NewTimer(it.timeout)
	defer timer.Stop()

	t := task{
		ctx:       ctx,
		operation: operation,
		args:      args,
		reply:     make(chan taskResult, 1),
	}

	select {
	case it.tasks <- t:
	case <-timer.C:
		logger.Errorf("Tool call '%s' timed out before dispatch", operation)
		return nil, fmt.Errorf("%w: %s", entities.ErrCallTimeout, operation)
	case <-it.quit:
		return nil, fmt.Errorf("invoker closed before dispatching %q", operation)
	case <-ctx.Done():
		return nil, fmt.Errorf("invoke aborted: %w", ctx.Err())
	}

	select {
	case result := <-t.reply:
		if errors.Is(result.err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", entities.ErrCallTimeout, operation)
		}
		return result.payload, result.err
	case <-timer.C:
		logger.Errorf("Tool call '%s' timed out in flight", operation)
		return nil, fmt.Errorf("%w: %s", entities.ErrCallTimeout, operation)
	case <-ctx.Done():
		return nil, fmt.Errorf("invoke aborted: %w", ctx.Err())
	}
}

// Close stops the dispatcher. Pending Invoke callers receive a closed error.
func (it *Invoker) Close() {
	it.closeOnce.Do(func() { close(it.quit) })
}
