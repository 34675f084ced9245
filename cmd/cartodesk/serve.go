package main

import (
	"context"
	"fmt"

	"github.com/kirinyoku/cartodesk/internal/app"
	"github.com/kirinyoku/cartodesk/internal/config"
	"github.com/kirinyoku/cartodesk/internal/logger"
)

type ServeCmd struct{}

func (c *ServeCmd) Execute(_ []string) error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	application, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to create application", "error", err)
		return err
	}

	if err := application.Run(context.Background()); err != nil {
		log.Error("application finished with error", "error", err)
		return err
	}

	return nil
}
