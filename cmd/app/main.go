package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/tripassist/config"
	"github.com/Domenick1991/tripassist/internal/bootstrap"
	"github.com/Domenick1991/tripassist/internal/logging"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	log := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Fatalf("wire application: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.WithError(err).Warn("close resources")
		}
	}()

	if err := bootstrap.Run(ctx, app); err != nil {
		log.WithError(err).Error("server error")
		stop()
		_ = app.Close()
		os.Exit(1)
	}
}
