package utils

import (
	"context"
	"sync"
)

// StoppableWorkers runs background goroutines that share one context and can be stopped
// together. The config watcher and the measure loop use it.
type StoppableWorkers struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel func()
	wg     sync.WaitGroup
}

// NewStoppableWorkers starts each function in its own goroutine under a context derived from
// parent.
func NewStoppableWorkers(parent context.Context, funcs ...func(context.Context)) *StoppableWorkers {
	ctx, cancel := context.WithCancel(parent)
	sw := &StoppableWorkers{ctx: ctx, cancel: cancel}
	sw.Add(funcs...)
	return sw
}

// Add starts more workers. After Stop it does nothing.
func (sw *StoppableWorkers) Add(funcs ...func(context.Context)) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.ctx.Err() != nil {
		return
	}
	sw.wg.Add(len(funcs))
	for _, f := range funcs {
		f := f
		go func() {
			defer sw.wg.Done()
			f(sw.ctx)
		}()
	}
}

// Stop cancels the shared context and waits for every worker to return.
func (sw *StoppableWorkers) Stop() {
	sw.mu.Lock()
	sw.cancel()
	sw.mu.Unlock()
	sw.wg.Wait()
}

// Context is the context the workers watch.
func (sw *StoppableWorkers) Context() context.Context {
	return sw.ctx
}
