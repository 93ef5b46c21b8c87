package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubTask struct {
	name  string
	runs  atomic.Int64
	items int64
	err   error
}

func (t *stubTask) Name() string { return t.name }

func (t *stubTask) Run(ctx context.Context) (int64, error) {
	t.runs.Add(1)
	return t.items, t.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorkerRunsImmediatelyAndOnTick(t *testing.T) {
	task := &stubTask{name: "cleanup", items: 3}
	w := New(20*time.Millisecond, testLogger(), task)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return task.runs.Load() >= 2
	}, time.Second, 5*time.Millisecond, "expected an immediate run plus at least one tick")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

func TestWorkerFailingTaskDoesNotStopOthers(t *testing.T) {
	failing := &stubTask{name: "failing", err: errors.New("db down")}
	healthy := &stubTask{name: "healthy", items: 1}
	w := New(time.Hour, testLogger(), failing, healthy)

	// Run the batch once directly; Start would block on the ticker.
	w.runAll(context.Background())

	assert.Equal(t, int64(1), failing.runs.Load())
	assert.Equal(t, int64(1), healthy.runs.Load())
}

func TestWorkerStopsMidBatchOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	first := &stubTask{name: "first"}
	second := &stubTask{name: "second"}

	// Cancel after the first task so the second never runs.
	cancelling := taskFunc{name: "cancelling", fn: func(context.Context) (int64, error) {
		cancel()
		return 0, nil
	}}

	w := New(time.Hour, testLogger(), first, cancelling, second)
	w.runAll(ctx)

	assert.Equal(t, int64(1), first.runs.Load())
	assert.Equal(t, int64(0), second.runs.Load())
}

type taskFunc struct {
	name string
	fn   func(ctx context.Context) (int64, error)
}

func (t taskFunc) Name() string                            { return t.name }
func (t taskFunc) Run(ctx context.Context) (int64, error) { return t.fn(ctx) }
