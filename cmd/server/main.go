package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/semaphore"
	"gopkg.in/yaml.v3"

	"github.com/okonkwo/corebank"
	"github.com/rs/zerolog"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	var cfg corebank.Config
	cfp := flag.String("config", "config.yml", "path to configuration file")
	flag.Parse()
	cfgfl, err := os.Open(*cfp)
	if err != nil {
		logger.Fatal().Err(err).Msg("error opening config file")
	}
	if err = yaml.NewDecoder(cfgfl).Decode(&cfg); err != nil {
		logger.Fatal().Err(err).Msg("error decoding config file")
	}

	pgendpt, err := corebank.NewPostgresEndpoint(cfg.Database.ConnectionString, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("error starting database")
	}

	ttl := corebank.DefaultIdempotencyTTL
	if cfg.Idempotency.TTL != "" {
		if ttl, err = time.ParseDuration(cfg.Idempotency.TTL); err != nil {
			logger.Fatal().Err(err).Msg("error parsing idempotency TTL")
		}
	}
	cache := corebank.NewMemoryIdempotencyCache(ttl)

	prefix := cfg.Accounts.NumberPrefix
	if prefix < 10 || prefix > 99 {
		logger.Fatal().Int64("prefix", prefix).Msg("account number prefix must be two digits")
	}

	svc, err := corebank.NewService(pgendpt, cache, prefix, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("error starting service")
	}

	metrics := corebank.NewMetrics()
	limits := &corebank.ServiceLimits{
		CreateAccount: semaphore.NewWeighted(32),
		Deposit:       semaphore.NewWeighted(256),
		Withdraw:      semaphore.NewWeighted(256),
		Transfer:      semaphore.NewWeighted(256),
		Balance:       semaphore.NewWeighted(512),
		Statement:     semaphore.NewWeighted(16),
	}
	st := gobreaker.Settings{Timeout: 30 * time.Second}
	brkrs := &corebank.ServiceBreaker{
		CreateAccount: gobreaker.NewTwoStepCircuitBreaker[*corebank.Account](st),
		Deposit:       gobreaker.NewTwoStepCircuitBreaker[*corebank.DepositResp](st),
		Withdraw:      gobreaker.NewTwoStepCircuitBreaker[*corebank.WithdrawResp](st),
		Transfer:      gobreaker.NewTwoStepCircuitBreaker[*corebank.TransferResp](st),
		Balance:       gobreaker.NewTwoStepCircuitBreaker[*decimal.Decimal](st),
		Statement:     gobreaker.NewTwoStepCircuitBreaker[interface{}](st),
	}

	var wired corebank.Service = svc
	for _, mw := range []corebank.Middleware{
		corebank.NewCircuitBreakMiddleware(brkrs),
		corebank.NewLimitMiddleware(limits),
		corebank.NewInstrumentMiddleware(metrics),
	} {
		wired = mw(wired)
	}

	hndlr := corebank.NewHTTPHandler(wired, metrics, &logger)

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":3000"
	}
	logger.Info().Str("addr", addr).Msg("listening")
	if err = http.ListenAndServe(addr, hndlr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
