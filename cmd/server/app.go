package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"waitlist-counter/config"
	"waitlist-counter/internal"
	"waitlist-counter/metrics"
	"waitlist-counter/page"
	"waitlist-counter/worker"
)

// Page bundles everything one landing page talks to.
type Page struct {
	Slug     string
	Counter  *internal.ProgressCounter
	Capture  *internal.EmailCapture
	Visitors *internal.VisitorGauge
}

type App struct {
	cfg     *config.Config
	store   internal.Store
	slugs   []string
	pages   map[string]*Page
	workers []*worker.Worker
	wg      sync.WaitGroup
	router  chi.Router
	server  *http.Server
}

func NewApp(cfg *config.Config, store internal.Store, slugs []string) *App {
	return &App{
		cfg:   cfg,
		store: store,
		slugs: slugs,
		pages: make(map[string]*Page),
		wg:    sync.WaitGroup{},
	}
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// SetupPages loads a counter for each page and wires its email capture and
// visitor gauge to it.
func (a *App) SetupPages(ctx context.Context) error {

	log.Info().Int("pages", len(a.slugs)).Msg("setting up pages")

	display := internal.MultiDisplay{internal.LogDisplay{}, metrics.ProgressDisplay{}}
	seed := time.Now().UnixNano()

	for i, slug := range a.slugs {
		counter, err := internal.NewProgressCounter(ctx, a.store, page.Key(a.cfg.KeyPrefix, slug), internal.CounterConfig{
			Page:          slug,
			InitialCount:  a.cfg.InitialCount,
			TargetCount:   a.cfg.TargetCount,
			IncrementStep: internal.StepRange{Min: a.cfg.IncrementMin, Max: a.cfg.IncrementMax},
			BaseInterval:  a.cfg.BaseInterval,
			Jitter:        a.cfg.Jitter,
		}, display, newRand(seed+int64(2*i)))
		if err != nil {
			return fmt.Errorf("could not set up page %s: %w", slug, err)
		}

		visitors := internal.NewVisitorGauge(slug, a.cfg.VisitorBase, a.cfg.VisitorSpread, newRand(seed+int64(2*i+1)))
		metrics.SetVisitors(slug, visitors.Current())

		a.pages[slug] = &Page{
			Slug:     slug,
			Counter:  counter,
			Capture:  internal.NewEmailCapture(counter, a.cfg.SubmitDelay),
			Visitors: visitors,
		}

		log.Info().Str("page", slug).Int("count", counter.Value()).Int("target", counter.Target()).
			Msg("page ready")
	}

	return nil
}

func (a *App) SetupWorkers() {

	log.Info().Msg("setting up workers")

	for _, slug := range a.slugs {
		p := a.pages[slug]

		a.workers = append(a.workers, &worker.Worker{
			ID:        len(a.workers),
			Name:      "progress:" + slug,
			NextDelay: p.Counter.NextDelay,
			Task: func(ctx context.Context) {
				if p.Counter.AutoAdvance(ctx) {
					metrics.ObserveIncrement(p.Slug, "auto")
				}
			},
		})

		a.workers = append(a.workers, &worker.Worker{
			ID:        len(a.workers),
			Name:      "visitors:" + slug,
			NextDelay: p.Visitors.NextDelay,
			Task: func(context.Context) {
				metrics.SetVisitors(p.Slug, p.Visitors.Refresh())
			},
		})
	}

	log.Info().Int("workers", len(a.workers)).Msg("created workers")

}

// Run starts the workers and the HTTP server and blocks until a signal
// arrives or the server fails.
func (a *App) Run() error {

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	log.Info().Msg("starting workers...")

	a.StartWorkers(ctx)

	a.server = &http.Server{
		Addr:              a.cfg.HTTPAddress,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("address", a.cfg.HTTPAddress).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case sig := <-sigs:
		log.Info().Str("signal", sig.String()).Msg("received signal, starting shutdown...")
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}

	a.StopWorkers()
	log.Info().Msg("shut down")

	return runErr
}

func (a *App) StartWorkers(ctx context.Context) {
	for _, w := range a.workers {
		a.wg.Add(1)
		go w.Work(ctx, &a.wg)
	}
}

// StopWorkers stops every worker and waits for them to return.
func (a *App) StopWorkers() {
	for _, w := range a.workers {
		w.Stop()
	}
	a.wg.Wait()
}
