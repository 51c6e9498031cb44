package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/tripassist/config"
	"github.com/Domenick1991/tripassist/internal/bootstrap"
	"github.com/Domenick1991/tripassist/internal/email"
	"github.com/Domenick1991/tripassist/internal/kafka"
	"github.com/Domenick1991/tripassist/internal/logging"
	"github.com/sirupsen/logrus"
)

// The worker turns booking events into customer notifications.
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
	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal("kafka.brokers is required for the notification worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inventory, closeInventory, err := bootstrap.OpenInventory(ctx, cfg.Database, log)
	if err != nil {
		log.Fatalf("open inventory: %v", err)
	}
	defer closeInventory()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := email.NewSender(log)
	log.WithFields(logrus.Fields{
		"topic":    cfg.Kafka.NotificationsTopic,
		"group_id": cfg.Kafka.GroupID,
	}).Info("notification worker started")

	if err := consumer.Consume(ctx, sender.HandleMessage(inventory)); err != nil {
		log.WithError(err).Error("consumer stopped")
		return
	}
	log.Info("notification worker stopped")
}
