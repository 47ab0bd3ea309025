// Command feedsync consumes normalized crime records off Kafka and
// upserts them into an in-memory crime store held by this process. The
// store is not shared with the routing service.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prompt-general/saferoute/internal/config"
	"github.com/prompt-general/saferoute/internal/crimestore"
	"github.com/prompt-general/saferoute/internal/feed"
)

func main() {
	configFile := flag.String("config", "", "Configuration file path (defaults to built-in defaults if omitted)")
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := crimestore.NewInMemoryCrimeStore(nil)

	consumer := feed.NewConsumer(feed.Config{
		BootstrapServers: cfg.Kafka.BootstrapServers,
		Topic:            cfg.Kafka.Topic,
		GroupID:          cfg.Kafka.GroupID,
	}, sink)

	go func() {
		if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("feed consumer stopped: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("shutdown signal received, stopping feed consumer...")
	cancel()
	if err := consumer.Close(); err != nil {
		log.Printf("error closing feed consumer: %v", err)
	}
	log.Println("feedsync stopped")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
