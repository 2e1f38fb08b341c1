package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/kalpovskii/todo/internal/app/handlers"
	"github.com/kalpovskii/todo/internal/app/repositories"
	"github.com/kalpovskii/todo/internal/app/server"
	"github.com/kalpovskii/todo/internal/app/services"
	"github.com/kalpovskii/todo/internal/config"
	"github.com/kalpovskii/todo/internal/kafka"
	"github.com/kalpovskii/todo/internal/logging"
	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil && !errors.Is(err, pflag.ErrHelp) {
		stop()
		log.Fatal("todo-api failed", "err", err)
	}
}

// run serves the todo API until ctx is cancelled or the listener fails.
func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := pflag.NewFlagSet("todo-api", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.New(stderr, "todo-api", cfg.Log.Level, cfg.Log.Format)

	var events services.EventSender
	if cfg.EventsEnabled() {
		producer := kafka.NewProducer(cfg.Kafka.Broker, cfg.Kafka.Topic, logger)
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Error("close kafka producer", "err", err)
			}
		}()
		events = producer
		logger.Info("publishing todo events", "broker", cfg.Kafka.Broker, "topic", cfg.Kafka.Topic)
	}

	repo := repositories.NewMemoryTodoRepo()
	service := services.NewTodoService(repo, events)

	srv := server.New(cfg, handlers.NewTodoHandler(service), logger)
	serveErrs, err := srv.Start()
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErrs:
		return fmt.Errorf("serve: %w", err)
	}

	if err := srv.Stop(context.Background()); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("stopped")
	return nil
}
