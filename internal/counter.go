package internal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"waitlist-counter/model"
)

var ErrInvalidCounterConfig = errors.New("invalid counter config")

// Rand is the randomness the counter draws steps and delays from.
// *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Int63n(n int64) int64
}

// StepRange is an inclusive range of increment steps.
type StepRange struct {
	Min int
	Max int
}

type CounterConfig struct {
	Page          string
	InitialCount  int
	TargetCount   int
	IncrementStep StepRange
	BaseInterval  time.Duration
	Jitter        time.Duration
}

func (c CounterConfig) validate() error {
	switch {
	case c.TargetCount <= 0:
		return fmt.Errorf("%w: target count must be positive, got %d", ErrInvalidCounterConfig, c.TargetCount)
	case c.InitialCount < 0 || c.InitialCount > c.TargetCount:
		return fmt.Errorf("%w: initial count %d outside [0, %d]", ErrInvalidCounterConfig, c.InitialCount, c.TargetCount)
	case c.IncrementStep.Min < 0 || c.IncrementStep.Max < c.IncrementStep.Min:
		return fmt.Errorf("%w: bad increment step [%d, %d]", ErrInvalidCounterConfig, c.IncrementStep.Min, c.IncrementStep.Max)
	case c.IncrementStep.Max > c.TargetCount:
		return fmt.Errorf("%w: increment step %d larger than target %d", ErrInvalidCounterConfig, c.IncrementStep.Max, c.TargetCount)
	case c.BaseInterval <= 0:
		return fmt.Errorf("%w: base interval must be positive, got %s", ErrInvalidCounterConfig, c.BaseInterval)
	case c.Jitter < 0:
		return fmt.Errorf("%w: negative jitter", ErrInvalidCounterConfig)
	}
	return nil
}

// ProgressCounter is a waitlist count bounded by a target. It only ever goes
// up, and every change is written through to the store so the count survives
// restarts.
type ProgressCounter struct {
	cfg     CounterConfig
	key     string
	store   Store
	display Display
	rng     Rand

	mu    sync.Mutex
	value int
}

// NewProgressCounter loads the persisted count for key, falling back to the
// configured initial count when nothing usable is stored, and renders once.
func NewProgressCounter(ctx context.Context, store Store, key string, cfg CounterConfig, display Display, rng Rand) (*ProgressCounter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c := &ProgressCounter{
		cfg:     cfg,
		key:     key,
		store:   store,
		display: display,
		rng:     rng,
		value:   cfg.InitialCount,
	}

	raw, found, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("could not load count for %s: %w", key, err)
	}
	if found {
		if saved, ok := parseCount(raw, cfg.TargetCount); ok {
			c.value = saved
		} else {
			log.Warn().Str("page", cfg.Page).Str("key", key).Str("value", raw).
				Msg("discarding invalid persisted count")
		}
	}

	c.Render()
	return c, nil
}

// parseCount accepts a base-10 integer in [0, target], written exactly as
// Increment writes it: no sign, spaces or leading zeros.
func parseCount(raw string, target int) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > target || strconv.Itoa(n) != raw {
		return 0, false
	}
	return n, true
}

// Increment adds a random step, clamps to the target, persists and renders.
// The new value is only kept once the store has accepted it; on a failed
// write the count is unchanged and the error is returned.
func (c *ProgressCounter) Increment(ctx context.Context) (model.Progress, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.incrementLocked(ctx)
}

func (c *ProgressCounter) incrementLocked(ctx context.Context) (model.Progress, error) {
	next := min(c.value+c.step(), c.cfg.TargetCount)

	if err := c.store.Set(ctx, c.key, strconv.Itoa(next)); err != nil {
		return c.renderLocked(), fmt.Errorf("could not persist count for %s: %w", c.key, err)
	}

	c.value = next
	return c.renderLocked(), nil
}

func (c *ProgressCounter) step() int {
	lo, hi := c.cfg.IncrementStep.Min, c.cfg.IncrementStep.Max
	return lo + c.rng.Intn(hi-lo+1)
}

// Render pushes the current state to the display.
func (c *ProgressCounter) Render() model.Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderLocked()
}

func (c *ProgressCounter) renderLocked() model.Progress {
	p := c.progressLocked()
	if c.display != nil {
		c.display.Render(p)
	}
	return p
}

// Snapshot returns the current state without rendering.
func (c *ProgressCounter) Snapshot() model.Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progressLocked()
}

func (c *ProgressCounter) progressLocked() model.Progress {
	return model.Progress{
		Page:    c.cfg.Page,
		Count:   c.value,
		Target:  c.cfg.TargetCount,
		Percent: FillPercent(c.value, c.cfg.TargetCount),
	}
}

func (c *ProgressCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

func (c *ProgressCounter) Target() int {
	return c.cfg.TargetCount
}

// AutoAdvance is the scheduled body: it increments while below the target and
// does nothing once the target is reached. It reports whether it incremented.
func (c *ProgressCounter) AutoAdvance(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.value >= c.cfg.TargetCount {
		return false
	}
	p, err := c.incrementLocked(ctx)
	if err != nil {
		log.Warn().Err(err).Str("page", c.cfg.Page).Msg("auto increment not persisted")
		return false
	}
	log.Debug().Str("page", p.Page).Int("count", p.Count).Msg("auto increment")
	return true
}

// NextDelay is the base interval plus a fresh jitter in [0, Jitter).
func (c *ProgressCounter) NextDelay() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg.Jitter <= 0 {
		return c.cfg.BaseInterval
	}
	return c.cfg.BaseInterval + time.Duration(c.rng.Int63n(int64(c.cfg.Jitter)))
}

// FillPercent is the bar width for count out of target, capped at 100.
func FillPercent(count, target int) float64 {
	if target <= 0 {
		return 0
	}
	return min(100, float64(count)/float64(target)*100)
}
