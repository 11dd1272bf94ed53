package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"harvest-go/internal/config"
	"harvest-go/internal/handler"
	"harvest-go/internal/service"
	"harvest-go/pkg/harvester"
	"harvest-go/pkg/logger"
	"harvest-go/pkg/transport"
)

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file path (optional)")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	if err := run(*configPath, *debug); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func run(configPath string, debug bool) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.NewManager().Load(configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", configPath, err)
		}
		cfg = loaded
	}
	if debug {
		cfg.Logger.Level = "debug"
	}

	appLogger := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	logger.SetLogger(appLogger)
	logger.SetGlobalLogger(appLogger)

	client := transport.NewClient(transport.Config{
		Timeout:   time.Duration(cfg.Fetcher.TimeoutSeconds) * time.Second,
		UserAgent: cfg.Fetcher.UserAgent,
	})
	h := harvester.New(client, harvester.Config{
		MaxWorkers:    cfg.Fetcher.MaxWorkers,
		StopThreshold: cfg.Fetcher.StopThreshold,
	})

	app := fiber.New(fiber.Config{
		AppName:               "harvest-go",
		DisableStartupMessage: true,
	})
	handler.New(service.NewHarvestService(h)).Register(app)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Listen(addr)
	}()
	appLogger.WithField("addr", addr).Info("Server started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		appLogger.WithField("signal", sig.String()).Info("Shutting down")
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}
