package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/saulfrancisco-ruizacevedo/go-neogm"
)

// loadConfig reads the config file and lets explicitly set flags win over it.
func loadConfig(cmd *cli.Command) (*neogm.Config, error) {
	cfg, err := neogm.LoadConfig(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	for flag, field := range map[string]*string{
		"uri":      &cfg.Neo4j.URI,
		"user":     &cfg.Neo4j.Username,
		"pass":     &cfg.Neo4j.Password,
		"database": &cfg.Neo4j.Database,
	} {
		if cmd.IsSet(flag) {
			*field = cmd.String(flag)
		}
	}
	if cmd.Bool("debug") {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// openManager connects to Neo4j and returns the manager with a cleanup func closing the
// driver and flushing the logger.
func openManager(ctx context.Context, cmd *cli.Command) (*neogm.PersistenceManager, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	logger, err := neogm.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	executor, err := neogm.Connect(ctx, cfg.Neo4j, neogm.WithExecutorLogger(logger.Named("executor")))
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}

	cleanup := func() {
		if err := executor.Close(ctx); err != nil {
			logger.Warn("closing driver", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return neogm.NewPersistenceManager(executor, neogm.WithLogger(logger)), cleanup, nil
}

// printJSON writes v as indented JSON to the output of the root command.
func printJSON(cmd *cli.Command, v any) error {
	enc := json.NewEncoder(cmd.Root().Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("could not encode output: %w", err)
	}
	return nil
}
