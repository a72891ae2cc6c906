package driver

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSerialExecutorRunsInOrder(t *testing.T) {
	exec := NewSerialExecutor()
	defer exec.Close()

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) Task {
		return func(ctx context.Context) (CaseResult, error) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return CaseResult{File: name, Outcome: OutcomePass}, nil
		}
	}
	handles := []*Handle{
		exec.Submit(context.Background(), record("a")),
		exec.Submit(context.Background(), record("b")),
		exec.Submit(context.Background(), record("c")),
	}
	exec.Flush()

	if diff := cmp.Diff([]string{"a", "b", "c"}, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	for i, h := range handles {
		select {
		case <-h.Done():
		default:
			t.Fatalf("handle %d not settled after Flush", i)
		}
		res, err := h.Wait()
		if err != nil || res.Outcome != OutcomePass {
			t.Fatalf("handle %d: %+v, %v", i, res, err)
		}
	}
}

func TestExecutorsRecoverPanics(t *testing.T) {
	serial := NewSerialExecutor()
	defer serial.Close()
	for name, exec := range map[string]Executor{
		"serial":    serial,
		"goroutine": NewGoroutineExecutor(0),
	} {
		handle := exec.Submit(context.Background(), func(ctx context.Context) (CaseResult, error) {
			panic("kaboom")
		})
		_, err := handle.Wait()
		if err == nil || !strings.Contains(err.Error(), "panic: kaboom") {
			t.Fatalf("%s: expected recovered panic, got %v", name, err)
		}
	}
}

func TestGoroutineExecutorRespectsLimit(t *testing.T) {
	exec := NewGoroutineExecutor(2)
	var (
		running int32
		peak    int32
	)
	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(2)
	task := func(ctx context.Context) (CaseResult, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		if n <= 2 {
			started.Done()
		}
		<-release
		atomic.AddInt32(&running, -1)
		return CaseResult{}, nil
	}
	for i := 0; i < 2; i++ {
		exec.Submit(context.Background(), task)
	}
	started.Wait()
	extra := exec.Submit(context.Background(), func(ctx context.Context) (CaseResult, error) {
		if n := atomic.LoadInt32(&running); n > 1 {
			t.Errorf("third task started with %d tasks running", n)
		}
		return CaseResult{}, nil
	})
	close(release)
	exec.Flush()
	if _, err := extra.Wait(); err != nil {
		t.Fatalf("extra task: %v", err)
	}
	if peak > 2 {
		t.Fatalf("peak concurrency %d exceeds limit", peak)
	}
}

func TestSerialExecutorAfterClose(t *testing.T) {
	exec := NewSerialExecutor()
	exec.Close()
	handle := exec.Submit(context.Background(), func(ctx context.Context) (CaseResult, error) {
		t.Error("task ran after Close")
		return CaseResult{}, nil
	})
	if _, err := handle.Wait(); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
