// Command echo-dapp runs the reference echo Model against a rollup
// HTTP dispatcher. It exits 0 only on deliberate shutdown and non-zero
// on any fatal transport or protocol error.
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

	"github.com/blockberries/rollapp/example/echo"
	rollapphttp "github.com/blockberries/rollapp/http"
	"github.com/blockberries/rollapp/loop"
)

type config struct {
	ServerURL string `env:"ROLLUP_HTTP_SERVER_URL" envDefault:"http://127.0.0.1:5004"`
	Echo      echo.Config
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		logger := zerolog.New(os.Stderr)
		logger.Fatal().Err(err).Msg("echo-dapp: invalid environment")
	}

	flag.StringVar(&cfg.ServerURL, "server-url", cfg.ServerURL, "rollup HTTP dispatcher base URL")
	flag.IntVar(&cfg.Echo.Vouchers, "vouchers", cfg.Echo.Vouchers, "vouchers to emit per advance cycle")
	flag.IntVar(&cfg.Echo.Notices, "notices", cfg.Echo.Notices, "notices to emit per advance cycle")
	flag.IntVar(&cfg.Echo.Reports, "reports", cfg.Echo.Reports, "reports to emit per cycle")
	flag.IntVar(&cfg.Echo.RejectEvery, "reject", cfg.Echo.RejectEvery, "reject every n-th advance cycle (0 disables)")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	logger := initLogger("echo-dapp", *verbose)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := rollapphttp.New(cfg.ServerURL, rollapphttp.WithLogger(logger))
	l := loop.New(client, echo.New(cfg.Echo), loop.WithLogger(logger))

	logger.Info().
		Str("server_url", cfg.ServerURL).
		Int("vouchers", cfg.Echo.Vouchers).
		Int("notices", cfg.Echo.Notices).
		Int("reports", cfg.Echo.Reports).
		Msg("echo-dapp starting")

	if err := l.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("echo-dapp failed")
	}
	logger.Info().Msg("echo-dapp stopped")
}

func initLogger(app string, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", app).Logger()
}
