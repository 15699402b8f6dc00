package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"peekr-automation/internal/engine"
	"peekr-automation/pkg/config"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := engine.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize automation engine")
	}

	log.Info("automation engine ready: ingest, outreach, reply monitoring, follow-ups")
	if err := eng.Run(ctx); err != nil {
		log.WithError(err).Fatal("automation engine exited with error")
	}
	log.Info("automation engine stopped")
}
