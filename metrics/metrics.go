// Package metrics exposes Prometheus collectors for the waitlist service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"waitlist-counter/model"
)

var (
	waitlistCount           *prometheus.GaugeVec
	waitlistTarget          *prometheus.GaugeVec
	waitlistIncrementsTotal *prometheus.CounterVec
	waitlistSignupsTotal    *prometheus.CounterVec
	landingVisitors         *prometheus.GaugeVec

	once sync.Once
)

// Init registers the collectors with the default registry.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		waitlistCount = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "waitlist_count",
				Help: "Current waitlist count, labeled by page.",
			},
			[]string{"page"},
		)

		waitlistTarget = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "waitlist_target",
				Help: "Waitlist target count, labeled by page.",
			},
			[]string{"page"},
		)

		waitlistIncrementsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_increments_total",
				Help: "Total number of counter increments, labeled by page and source.",
			},
			[]string{"page", "source"},
		)

		waitlistSignupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_signups_total",
				Help: "Total number of signup attempts, labeled by page and result.",
			},
			[]string{"page", "result"},
		)

		landingVisitors = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "landing_visitors",
				Help: "Simulated live visitor figure, labeled by page.",
			},
			[]string{"page"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ProgressDisplay mirrors every rendered Progress into the count gauges.
type ProgressDisplay struct{}

func (ProgressDisplay) Render(p model.Progress) {
	if waitlistCount == nil {
		return
	}
	waitlistCount.WithLabelValues(p.Page).Set(float64(p.Count))
	waitlistTarget.WithLabelValues(p.Page).Set(float64(p.Target))
}

// ObserveIncrement counts an increment; source is "auto" or "signup".
func ObserveIncrement(page, source string) {
	if waitlistIncrementsTotal == nil {
		return
	}
	waitlistIncrementsTotal.WithLabelValues(page, source).Inc()
}

// ObserveSignup counts a signup attempt by result.
func ObserveSignup(page, result string) {
	if waitlistSignupsTotal == nil {
		return
	}
	waitlistSignupsTotal.WithLabelValues(page, result).Inc()
}

func SetVisitors(page string, n int) {
	if landingVisitors == nil {
		return
	}
	landingVisitors.WithLabelValues(page).Set(float64(n))
}
