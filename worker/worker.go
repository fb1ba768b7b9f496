package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// MinDelay is the shortest pause between two runs of a task.
const MinDelay = time.Millisecond

// Worker runs Task repeatedly, sleeping NextDelay() between runs, until its
// context ends or Stop is called.
type Worker struct {
	ID           int
	Name         string
	InitialDelay time.Duration
	NextDelay    func() time.Duration
	Task         func(ctx context.Context)

	stopOnce sync.Once
	stop     chan struct{}
	initOnce sync.Once
}

func (w *Worker) stopChan() chan struct{} {
	w.initOnce.Do(func() {
		w.stop = make(chan struct{})
	})
	return w.stop
}

// Stop ends the worker's loop. Safe to call more than once.
func (w *Worker) Stop() {
	stop := w.stopChan()
	w.stopOnce.Do(func() {
		close(stop)
	})
}

func (w *Worker) Work(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	stop := w.stopChan()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !w.sleep(ctx, stop, w.InitialDelay) {
		log.Info().Int("worker", w.ID).Str("name", w.Name).Msg("worker stopping...")
		return
	}

	log.Info().Int("worker", w.ID).Str("name", w.Name).Msg("worker starting...")

	for {
		if !w.sleep(ctx, stop, max(w.NextDelay(), MinDelay)) {
			log.Info().Int("worker", w.ID).Str("name", w.Name).Msg("worker stopping...")
			return
		}
		w.Task(ctx)
	}
}

// sleep waits for d and reports whether the worker should keep going.
func (w *Worker) sleep(ctx context.Context, stop <-chan struct{}, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return false
		case <-stop:
			return false
		default:
			return true
		}
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	case <-stop:
		return false
	}
}
