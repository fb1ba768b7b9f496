package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"waitlist-counter/internal"
	"waitlist-counter/metrics"
	"waitlist-counter/model"
)

type subscribeRequest struct {
	Email string `json:"email"`
}

type errorResponse struct {
	Error string                `json:"error"`
	State model.ValidationState `json:"state,omitempty"`
}

type visitorsResponse struct {
	Page     string `json:"page"`
	Visitors int    `json:"visitors"`
}

type validateResponse struct {
	State model.ValidationState `json:"state"`
}

// Handler returns the service's router, building it on first use.
func (a *App) Handler() http.Handler {
	if a.router != nil {
		return a.router
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthCheck)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/pages/{page}", func(r chi.Router) {
		r.Use(a.pageContext)
		r.Get("/progress", a.getProgress)
		r.Get("/visitors", a.getVisitors)
		r.Get("/email/validate", validateEmail)
		r.Post("/subscribe", a.subscribe)
	})

	a.router = r
	return r
}

type pageKey struct{}

func (a *App) pageContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := a.pages[chi.URLParam(r, "page")]
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown page"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), pageKey{}, p)))
	})
}

func pageFrom(r *http.Request) *Page {
	return r.Context().Value(pageKey{}).(*Page)
}

func (a *App) getProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pageFrom(r).Counter.Snapshot())
}

func (a *App) getVisitors(w http.ResponseWriter, r *http.Request) {
	p := pageFrom(r)
	writeJSON(w, http.StatusOK, visitorsResponse{Page: p.Slug, Visitors: p.Visitors.Current()})
}

func validateEmail(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, validateResponse{State: internal.EmailState(r.URL.Query().Get("email"))})
}

func (a *App) subscribe(w http.ResponseWriter, r *http.Request) {
	p := pageFrom(r)

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	progress, err := p.Capture.Submit(r.Context(), req.Email)
	switch {
	case errors.Is(err, internal.ErrInvalidEmail):
		metrics.ObserveSignup(p.Slug, "invalid")
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: err.Error(),
			State: internal.EmailState(req.Email),
		})
		return
	case err != nil:
		metrics.ObserveSignup(p.Slug, "abandoned")
		log.Info().Err(err).Str("page", p.Slug).Msg("signup abandoned")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "submission abandoned"})
		return
	}

	metrics.ObserveSignup(p.Slug, "ok")
	metrics.ObserveIncrement(p.Slug, "signup")
	writeJSON(w, http.StatusOK, progress)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("request completed")
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("write JSON failed")
	}
}
