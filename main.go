package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"

	cmd "waitlist-counter/cmd/server"
	"waitlist-counter/config"
	"waitlist-counter/internal"
	"waitlist-counter/logging"
	"waitlist-counter/metrics"
	"waitlist-counter/page"
	"waitlist-counter/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}

	if err := logging.Setup(cfg.LogLevel, cfg.LogPretty); err != nil {
		log.Fatal().Err(err).Msg("could not set up logging")
	}

	metrics.Init()

	var store internal.Store
	if cfg.RedisAddress != "" {
		redisClient, err := redis.NewRedisClient(cfg.RedisAddress)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create redis client")
		}
		defer redisClient.Close()
		store = redisClient
	} else {
		log.Warn().Msg("no redis address configured, counts will not survive a restart")
		store = internal.NewMemoryStore()
	}

	pages, err := page.Load(cfg.PagesFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.PagesFile).Msg("could not load pages")
	}

	app := cmd.NewApp(cfg, store, pages)

	if err := app.SetupPages(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("could not set up pages")
	}

	app.SetupWorkers()

	if err := app.Run(); err != nil {
		log.Error().Err(err).Msg("exiting")
		os.Exit(1)
	}
}
