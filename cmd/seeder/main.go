package main

import (
	"flag"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/okonkwo/corebank"
)

// Seeds a local database with the schema and a pair of demo accounts.
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

	lh, err := corebank.NewLocalHelper(&cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("error starting local helper")
	}
	if _, err = lh.InitDB(); err != nil {
		logger.Fatal().Err(err).Msg("error initializing database")
	}

	node, err := snowflake.NewNode(7)
	if err != nil {
		logger.Fatal().Err(err).Msg("error starting snowflake node")
	}
	prefix := cfg.Accounts.NumberPrefix
	for _, bal := range []int64{10_000, 500} {
		num, err := corebank.NewAccountNumber(prefix)
		if err != nil {
			logger.Fatal().Err(err).Msg("error generating account number")
		}
		owner := node.Generate()
		if err = lh.SeedAccount(num, owner, decimal.NewFromInt(bal), "4321"); err != nil {
			logger.Fatal().Err(err).Msg("error seeding account")
		}
		logger.Info().
			Int64("account", num).
			Str("owner", owner.String()).
			Str("idempotency_key_sample", uuid.NewString()).
			Msg("seeded account (PIN 4321)")
	}
}
