package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/app/ingestor"
	tickpublisher "github.com/Mithilyaganti/Trade-Pulse-Tracker/internal/usecase/tick-publisher"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/config"
	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/logger"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	cfg = &config.Config{}
	if err := config.Load(cfg); err != nil {
		panic(err)
	}

	l, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}

	log = l.WithFields(logger.Field{Key: "service", Value: cfg.App.Name})
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// The pipeline must be able to deliver before the listen socket opens.
	publisher := tickpublisher.NewPublisher(cfg.Kafka, log)
	if err := publisher.Connect(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "connect_kafka",
		})
		os.Exit(1)
	}

	engine := app.New(cfg, log, publisher)
	if err := engine.Start(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "start_engine",
		})
		os.Exit(1)
	}

	log.Info("Tick ingestor started successfully",
		logger.Field{Key: "listen", Value: engine.Listener().Addr().String()},
		logger.Field{Key: "topic", Value: cfg.Kafka.Topic},
	)

	sig := <-sigChan
	log.Info("Received shutdown signal", logger.Field{
		Key:   "signal",
		Value: sig.String(),
	})

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := engine.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "stop_engine",
		})
	}

	log.Info("Tick ingestor shutdown complete")
}
