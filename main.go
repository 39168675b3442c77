package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"emoheal/internal/app"
	"emoheal/internal/config"
	"emoheal/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	lg, err := logger.New(logger.Options{
		Mode:       cfg.Log.Mode,
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	application, err := app.New(cfg, lg)
	if err != nil {
		lg.Fatal("failed to create application", "error", err)
	}

	if err := application.Start(); err != nil {
		application.Stop()
		lg.Fatal("failed to start application", "error", err)
	}
	defer application.Stop()

	waitForShutdown()
	lg.Info("shutting down")
}

func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
}
