package internal

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"

	"waitlist-counter/model"
)

var ErrInvalidEmail = errors.New("please enter a valid email address")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail requires a non-whitespace local part, an @, and a
// non-whitespace domain containing a dot.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// EmailState is the cue shown next to the input. Empty input stays neutral.
func EmailState(email string) model.ValidationState {
	switch {
	case email == "":
		return model.ValidationNeutral
	case ValidateEmail(email):
		return model.ValidationValid
	default:
		return model.ValidationInvalid
	}
}

// Incrementer is what a successful signup bumps.
type Incrementer interface {
	Increment(ctx context.Context) (model.Progress, error)
}

// EmailCapture handles waitlist signups. Nothing is sent anywhere: the
// submission is a fixed delay that always succeeds.
type EmailCapture struct {
	Counter     Incrementer
	SubmitDelay time.Duration
}

func NewEmailCapture(counter Incrementer, submitDelay time.Duration) *EmailCapture {
	return &EmailCapture{Counter: counter, SubmitDelay: submitDelay}
}

// Submit validates email, waits out the simulated submission and increments
// the counter once. If ctx ends during the wait nothing is incremented.
func (e *EmailCapture) Submit(ctx context.Context, email string) (model.Progress, error) {
	if !ValidateEmail(email) {
		return model.Progress{}, ErrInvalidEmail
	}

	if err := e.simulateSubmission(ctx); err != nil {
		return model.Progress{}, err
	}

	p, err := e.Counter.Increment(ctx)
	if err != nil {
		// the signup went through; the count stays where it was
		log.Warn().Err(err).Str("page", p.Page).Msg("signup increment not persisted")
	}
	return p, nil
}

func (e *EmailCapture) simulateSubmission(ctx context.Context) error {
	if e.SubmitDelay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(e.SubmitDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
