package internal

import (
	"sync"
	"time"
)

// VisitorGauge fabricates a "people viewing this page now" figure that
// wobbles around a base value.
type VisitorGauge struct {
	Page   string
	Base   int
	Spread int

	mu      sync.Mutex
	rng     Rand
	current int
}

func NewVisitorGauge(page string, base, spread int, rng Rand) *VisitorGauge {
	v := &VisitorGauge{Page: page, Base: base, Spread: spread, rng: rng, current: base}
	v.Refresh()
	return v
}

// Refresh draws a new value in [Base-Spread, Base+Spread).
func (v *VisitorGauge) Refresh() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.Spread > 0 {
		v.current = v.Base + v.rng.Intn(2*v.Spread) - v.Spread
	} else {
		v.current = v.Base
	}
	return v.current
}

func (v *VisitorGauge) Current() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// NextDelay is 5 to 10 seconds.
func (v *VisitorGauge) NextDelay() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return 5*time.Second + time.Duration(v.rng.Int63n(int64(5*time.Second)))
}
