package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"lpservice/internal/app"
	"lpservice/internal/config"
	"lpservice/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg, logger.New(cfg))
	if err := application.Run(ctx); err != nil {
		log.Fatalf("Server stopped with error: %v", err)
	}
}
