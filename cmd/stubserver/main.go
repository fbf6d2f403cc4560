package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aerodesk/aerodesk/config"
	"github.com/aerodesk/aerodesk/internal/bootstrap"
	"github.com/aerodesk/aerodesk/internal/events"
	"github.com/aerodesk/aerodesk/internal/stub"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var producer *events.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = events.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
	}

	server := stub.NewServer(cfg.Stub, producer, cfg.Kafka.BookingTopic)

	log.Printf("stub booking backend listening on %s", cfg.Stub.Address)
	if err := bootstrap.Run(ctx, cfg.Stub.Address, server.Handler()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
