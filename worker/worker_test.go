package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorker_Work(t *testing.T) {
	var runs atomic.Int32
	worker := &Worker{
		ID:        1,
		Name:      "progress:waitlist",
		NextDelay: func() time.Duration { return 20 * time.Millisecond },
		Task: func(context.Context) {
			runs.Add(1)
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	wg := &sync.WaitGroup{}
	wg.Add(1)

	go worker.Work(ctx, wg)

	// Wait for the worker to finish
	wg.Wait()

	assert.GreaterOrEqual(t, runs.Load(), int32(2))
}

func TestWorker_InitialDelayDefersFirstRun(t *testing.T) {
	var runs atomic.Int32
	worker := &Worker{
		InitialDelay: time.Hour,
		NextDelay:    func() time.Duration { return time.Millisecond },
		Task:         func(context.Context) { runs.Add(1) },
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	wg := &sync.WaitGroup{}
	wg.Add(1)
	go worker.Work(ctx, wg)
	wg.Wait()

	assert.Equal(t, int32(0), runs.Load())
}

func TestWorker_Stop(t *testing.T) {
	var runs atomic.Int32
	worker := &Worker{
		NextDelay: func() time.Duration { return 5 * time.Millisecond },
		Task:      func(context.Context) { runs.Add(1) },
	}

	wg := &sync.WaitGroup{}
	wg.Add(1)
	go worker.Work(context.Background(), wg)

	time.Sleep(50 * time.Millisecond)
	worker.Stop()
	worker.Stop()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}

	stopped := runs.Load()
	assert.Greater(t, stopped, int32(0))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())
}

func TestWorker_StopBeforeWork(t *testing.T) {
	worker := &Worker{
		NextDelay: func() time.Duration { return time.Millisecond },
		Task:      func(context.Context) { t.Error("task should not run") },
	}
	worker.Stop()

	wg := &sync.WaitGroup{}
	wg.Add(1)
	worker.Work(context.Background(), wg)
}

func TestWorker_DelayDrawnEachTick(t *testing.T) {
	var draws atomic.Int32
	worker := &Worker{
		NextDelay: func() time.Duration {
			draws.Add(1)
			return 5 * time.Millisecond
		},
		Task: func(context.Context) {},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	wg := &sync.WaitGroup{}
	wg.Add(1)
	go worker.Work(ctx, wg)
	wg.Wait()

	assert.Greater(t, draws.Load(), int32(2))
}

func TestWorker_NonPositiveDelayIsFloored(t *testing.T) {
	var runs atomic.Int32
	worker := &Worker{
		NextDelay: func() time.Duration { return 0 },
		Task:      func(context.Context) { runs.Add(1) },
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	wg := &sync.WaitGroup{}
	wg.Add(1)
	go worker.Work(ctx, wg)
	wg.Wait()

	assert.Greater(t, runs.Load(), int32(0))
	assert.LessOrEqual(t, runs.Load(), int32(50*time.Millisecond/MinDelay))
}
