package driver

import (
	"context"
	"fmt"
	"sync"
)

// Task is a unit of suite work executed by an Executor.
type Task func(ctx context.Context) (CaseResult, error)

// Executor abstracts the scheduling strategy used to run suite cases.
type Executor interface {
	Submit(ctx context.Context, task Task) *Handle
	Flush()
}

// Handle tracks a submitted task until it settles.
type Handle struct {
	done   chan struct{}
	result CaseResult
	err    error
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// Wait blocks until the task settles.
func (h *Handle) Wait() (CaseResult, error) {
	<-h.done
	return h.result, h.err
}

// Done is closed once the task settles.
func (h *Handle) Done() <-chan struct{} { return h.done }

func (h *Handle) settle(result CaseResult, err error) {
	h.result = result
	h.err = err
	close(h.done)
}

func safeInvoke(ctx context.Context, task Task) (result CaseResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return CaseResult{}, err
	}
	return task(ctx)
}

// GoroutineExecutor runs each task on its own goroutine, at most limit at a
// time when limit is positive.
type GoroutineExecutor struct {
	slots chan struct{}
	wg    sync.WaitGroup
}

func NewGoroutineExecutor(limit int) *GoroutineExecutor {
	exec := &GoroutineExecutor{}
	if limit > 0 {
		exec.slots = make(chan struct{}, limit)
	}
	return exec
}

func (e *GoroutineExecutor) Submit(ctx context.Context, task Task) *Handle {
	handle := newHandle()
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if e.slots != nil {
			select {
			case e.slots <- struct{}{}:
				defer func() { <-e.slots }()
			case <-ctx.Done():
				handle.settle(CaseResult{}, ctx.Err())
				return
			}
		}
		result, err := safeInvoke(ctx, task)
		handle.settle(result, err)
	}()
	return handle
}

// Flush waits for every submitted task to settle.
func (e *GoroutineExecutor) Flush() {
	e.wg.Wait()
}

type serialTask struct {
	ctx    context.Context
	handle *Handle
	task   Task
}

// SerialExecutor executes tasks in submission order on a single worker
// goroutine, giving deterministic output for tests and the CLI.
type SerialExecutor struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []serialTask
	closed bool
	active bool
}

func NewSerialExecutor() *SerialExecutor {
	exec := &SerialExecutor{}
	exec.cond = sync.NewCond(&exec.mu)
	go exec.loop()
	return exec
}

func (e *SerialExecutor) Submit(ctx context.Context, task Task) *Handle {
	handle := newHandle()
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		handle.settle(CaseResult{}, context.Canceled)
		return handle
	}
	e.queue = append(e.queue, serialTask{ctx: ctx, handle: handle, task: task})
	e.cond.Broadcast()
	e.mu.Unlock()
	return handle
}

func (e *SerialExecutor) loop() {
	for {
		e.mu.Lock()
		for len(e.queue) == 0 && !e.closed {
			e.cond.Wait()
		}
		if e.closed && len(e.queue) == 0 {
			e.mu.Unlock()
			return
		}
		next := e.queue[0]
		e.queue = e.queue[1:]
		e.active = true
		e.mu.Unlock()

		result, err := safeInvoke(next.ctx, next.task)
		next.handle.settle(result, err)

		e.mu.Lock()
		e.active = false
		e.cond.Broadcast()
		e.mu.Unlock()
	}
}

// Close stops the worker once the queue drains.
func (e *SerialExecutor) Close() {
	e.mu.Lock()
	e.closed = true
	e.cond.Broadcast()
	e.mu.Unlock()
}

// Flush waits until the queue is empty and no task is running.
func (e *SerialExecutor) Flush() {
	e.mu.Lock()
	for len(e.queue) > 0 || e.active {
		e.cond.Wait()
	}
	e.mu.Unlock()
}
