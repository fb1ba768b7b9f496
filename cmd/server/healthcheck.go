package cmd

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte("OK"))
	if err != nil {
		log.Error().Err(err).Msg("error writing healthcheck response")
	}
}
