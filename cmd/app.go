package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/pollquiz/internal/config"
	"github.com/abhisek/pollquiz/internal/dataset"
	"github.com/abhisek/pollquiz/internal/llm"
	"github.com/abhisek/pollquiz/internal/logger"
	"github.com/abhisek/pollquiz/internal/pipeline"
	"github.com/abhisek/pollquiz/internal/publish"
	"github.com/abhisek/pollquiz/internal/quizgen"
	"github.com/abhisek/pollquiz/internal/store"
)

// app bundles the dependencies built from configuration.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	runner *pipeline.Runner
	store  *store.Store
}

// Close releases the event log and flushes the logger.
func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("close event log", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}

// loadConfig reads configuration using the --config and --db flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Store.Path = db
	}
	return cfg, nil
}

// buildApp wires the pipeline. The X client is only built when publishing.
func buildApp(ctx context.Context, cmd *cobra.Command, publishing bool) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if publishing {
		err = cfg.Validate()
	} else {
		err = cfg.ValidateGeneration()
	}
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log}

	var eventRepo store.EventRepo
	if cfg.Store.Path != "" {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open event log: %w", err)
		}
		a.store = st
		eventRepo = st.EventRepo()
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM, eventRepo, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("LLM provider: %w", err)
	}

	source, err := dataset.NewSource(ctx, cfg.Dataset.Location)
	if err != nil {
		a.Close()
		return nil, err
	}

	gen := quizgen.NewGenerator(provider, cfg.Quiz.GeneratorConfig(), log)

	var pub pipeline.Publisher
	if publishing {
		x, err := publish.NewXClient(ctx, cfg.X.XConfig)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("X client: %w", err)
		}
		pub = publish.New(x, cfg.X.Config, log)
	}

	a.runner = pipeline.New(source, gen, pub, log)
	return a, nil
}
