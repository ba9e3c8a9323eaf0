package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/quantrail/brokergate/internal/archive"
	"github.com/quantrail/brokergate/internal/broker"
	"github.com/quantrail/brokergate/internal/config"
	"github.com/quantrail/brokergate/internal/logger"
	"github.com/quantrail/brokergate/internal/metrics"
)

// loadConfig reads and validates the config file, falling back to
// defaults when none is given.
func loadConfig() (*config.Config, *zap.Logger, error) {
	log := logger.Must(debug)

	var cfg *config.Config
	if cfgFile != "" {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, log, nil
}

// credentialPairs converts the configured key pairs into gateway credentials.
func credentialPairs(cfg *config.Config) []broker.Credentials {
	var pairs []broker.Credentials
	if cfg.Credentials.Paper.Configured() {
		pairs = append(pairs, broker.Credentials{
			Mode:      "paper",
			APIKey:    cfg.Credentials.Paper.APIKey,
			SecretKey: cfg.Credentials.Paper.SecretKey,
		})
	}
	if cfg.Credentials.Live.Configured() {
		pairs = append(pairs, broker.Credentials{
			Mode:      "live",
			APIKey:    cfg.Credentials.Live.APIKey,
			SecretKey: cfg.Credentials.Live.SecretKey,
		})
	}
	return pairs
}

// buildGateway assembles the gateway from config: credential store,
// endpoints, optional metrics observer and order audit trail.
func buildGateway(cfg *config.Config, log *zap.Logger, reg *metrics.Registry) (*broker.Gateway, error) {
	store, err := broker.NewCredentialStore(credentialPairs(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("building credential store: %w", err)
	}

	opts := []broker.Option{
		broker.WithLogger(log),
		broker.WithTimeout(cfg.Server.Timeout),
	}
	if reg != nil {
		opts = append(opts, broker.WithObserver(reg))
	}

	if cfg.Archive.Enabled {
		var backend archive.Store
		switch cfg.Archive.Type {
		case "localfs":
			backend, err = archive.NewLocalFS(cfg.Archive.Path)
		case "s3":
			backend, err = archive.NewS3(archive.S3Config{
				Bucket:    cfg.Archive.S3.Bucket,
				Endpoint:  cfg.Archive.S3.Endpoint,
				Region:    cfg.Archive.S3.Region,
				AccessKey: cfg.Archive.S3.AccessKey,
				SecretKey: cfg.Archive.S3.SecretKey,
				Prefix:    cfg.Archive.S3.Prefix,
			})
		}
		if err != nil {
			return nil, fmt.Errorf("creating archive store: %w", err)
		}
		opts = append(opts, broker.WithAuditor(archive.NewAuditor(backend)))
	}

	return broker.New(store, broker.Endpoints{
		PaperTrading: cfg.Endpoints.PaperTrading,
		LiveTrading:  cfg.Endpoints.LiveTrading,
		MarketData:   cfg.Endpoints.MarketData,
	}, opts...), nil
}

// withGateway handles common setup for one-shot CLI commands.
func withGateway(fn func(gw *broker.Gateway, log *zap.Logger) error) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	gw, err := buildGateway(cfg, log, nil)
	if err != nil {
		return err
	}
	return fn(gw, log)
}
