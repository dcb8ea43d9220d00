package main

import (
	"context"
	"os"

	"github.com/anhducmata/scenario"
	"github.com/anhducmata/scenario/draft"
	"github.com/anhducmata/scenario/memory"
	"github.com/anhducmata/scenario/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}

	var store scenario.Store
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(context.Background(), dbURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect")
		}
		defer pool.Close()
		store = postgres.New(pool)
	} else {
		log.Warn().Msg("DATABASE_URL not set, using in-memory store")
		store = memory.New()
	}

	var completer draft.Completer
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		completer = draft.NewOpenAI(key)
	}

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":3000"
	}

	app := newApp(store, completer)
	log.Info().Str("addr", addr).Msg("listening")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
}
