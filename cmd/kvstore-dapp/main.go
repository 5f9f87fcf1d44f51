// Command kvstore-dapp runs the key/value store Model against a rollup
// HTTP dispatcher.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/blockberries/rollapp/example/kvstore"
	rollapphttp "github.com/blockberries/rollapp/http"
	"github.com/blockberries/rollapp/loop"
)

type config struct {
	ServerURL string `env:"ROLLUP_HTTP_SERVER_URL" envDefault:"http://127.0.0.1:5004"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		logger := zerolog.New(os.Stderr)
		logger.Fatal().Err(err).Msg("kvstore-dapp: invalid environment")
	}

	flag.StringVar(&cfg.ServerURL, "server-url", cfg.ServerURL, "rollup HTTP dispatcher base URL")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).Level(level).With().Timestamp().Str("app", "kvstore-dapp").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := rollapphttp.New(cfg.ServerURL, rollapphttp.WithLogger(logger))
	l := loop.New(client, kvstore.New(), loop.WithLogger(logger))

	logger.Info().Str("server_url", cfg.ServerURL).Msg("kvstore-dapp starting")
	if err := l.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("kvstore-dapp failed")
	}
	logger.Info().Msg("kvstore-dapp stopped")
}
