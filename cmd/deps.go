package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/analysis"
	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/secrets"
	"github.com/spigell/resume-ranker/internal/storage"
	"github.com/spigell/resume-ranker/internal/suitability"
	"github.com/spigell/resume-ranker/internal/vocabulary"
)

// setup builds the logger and decodes the configuration. It exits on failure.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.Build(logger.Options{
		JSON:   viper.GetBool("json"),
		Debug:  viper.GetBool("debug"),
		Output: viper.GetString("log-output"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	return logger, config
}

func newAnalyzer(config *Config, logger *zap.Logger) (*analysis.Analyzer, error) {
	tables, err := vocabulary.Build(config.Vocabulary)
	if err != nil {
		return nil, fmt.Errorf("building vocabulary: %w", err)
	}

	logger.Debug("vocabulary ready", zap.Int("terms", tables.Size()))
	return analysis.New(tables, logger), nil
}

func newClassifier(config *Config) suitability.Classifier {
	return suitability.NewThreshold(config.Threshold)
}

func openStore(ctx context.Context, config *Config, logger *zap.Logger) (*storage.Store, error) {
	dsn, err := secrets.LoadOptional(secrets.Source{
		Name:  "storage dsn",
		Value: config.Storage.DSN,
		Env:   "DATABASE_URL",
		File:  config.Storage.DSNFile,
	})
	if err != nil {
		return nil, err
	}

	return storage.Open(ctx, storage.Config{Driver: config.Storage.Driver, DSN: dsn}, logger)
}
