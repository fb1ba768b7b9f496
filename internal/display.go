package internal

import (
	"github.com/rs/zerolog/log"

	"waitlist-counter/model"
)

// Display receives every rendered Progress.
type Display interface {
	Render(p model.Progress)
}

type DisplayFunc func(p model.Progress)

func (f DisplayFunc) Render(p model.Progress) {
	f(p)
}

// MultiDisplay fans a render out to several displays in order.
type MultiDisplay []Display

func (m MultiDisplay) Render(p model.Progress) {
	for _, d := range m {
		if d != nil {
			d.Render(p)
		}
	}
}

type LogDisplay struct{}

func (LogDisplay) Render(p model.Progress) {
	log.Debug().
		Str("page", p.Page).
		Int("count", p.Count).
		Int("target", p.Target).
		Float64("percent", p.Percent).
		Msg("progress rendered")
}
