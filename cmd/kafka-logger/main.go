package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kalpovskii/todo/internal/config"
	todokafka "github.com/kalpovskii/todo/internal/kafka"
	"github.com/kalpovskii/todo/internal/logging"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/pflag"
)

const (
	minReadBackoff = 100 * time.Millisecond
	maxReadBackoff = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil && !errors.Is(err, pflag.ErrHelp) {
		stop()
		log.Fatal("kafka-logger failed", "err", err)
	}
}

// run appends every todo event from the topic to the configured log file
// until ctx is cancelled.
func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := pflag.NewFlagSet("kafka-logger", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	console := logging.New(stderr, "kafka-logger", cfg.Log.Level, cfg.Log.Format)

	if cfg.Kafka.Broker == "" || cfg.Kafka.LogFile == "" {
		return errors.New("TODO_KAFKA_BROKER or TODO_KAFKA_LOG_FILE is not configured")
	}

	file, err := os.OpenFile(cfg.Kafka.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", cfg.Kafka.LogFile, err)
	}
	defer file.Close()

	logger := logging.New(file, "", "info", cfg.Log.Format)
	logger.Info("kafka logger started", "topic", cfg.Kafka.Topic)

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.Kafka.Broker},
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer r.Close()

	consume(ctx, r, logger, console, newBackoff(minReadBackoff, maxReadBackoff))
	console.Info("stopped")
	return nil
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// consume reads until ctx is done. Read errors are retried after a growing
// delay so an unreachable broker does not spin the loop.
func consume(ctx context.Context, r messageReader, logger, console *log.Logger, retry *backoff) {
	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			delay := retry.next()
			console.Error("error reading message", "err", err, "retry_in", delay)
			if !retry.wait(ctx, delay) {
				return
			}
			continue
		}
		retry.reset()

		event, err := todokafka.DecodeEvent(m)
		if err != nil {
			logger.Warn("undecodable event", "partition", m.Partition, "offset", m.Offset, "err", err)
			continue
		}

		logger.Info(event.Action,
			"id", event.Todo.ID,
			"title", event.Todo.Title,
			"completed", event.Todo.Completed,
			"at", event.Time,
		)
	}
}

// backoff doubles the delay after each failure up to max.
type backoff struct {
	min, max time.Duration
	current  time.Duration
	wait     func(ctx context.Context, d time.Duration) bool
}

func newBackoff(min, max time.Duration) *backoff {
	return &backoff{min: min, max: max, wait: sleep}
}

func (b *backoff) next() time.Duration {
	switch {
	case b.current == 0:
		b.current = b.min
	case b.current < b.max:
		b.current = min(b.current*2, b.max)
	}
	return b.current
}

func (b *backoff) reset() {
	b.current = 0
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
