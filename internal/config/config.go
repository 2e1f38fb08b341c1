// Package config loads settings for the todo binaries from defaults, an
// optional config file, TODO_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "TODO"

type Config struct {
	Addr      string
	Mode      string
	StaticDir string
	Log       LogConfig
	HTTP      HTTPConfig
	Kafka     KafkaConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// KafkaConfig is shared by the API (producer) and the event logger
// (consumer). An empty Broker disables event publishing.
type KafkaConfig struct {
	Broker  string
	Topic   string
	GroupID string
	LogFile string
}

type option struct {
	key   string
	flag  string
	value any
	usage string
}

var options = []option{
	{"addr", "addr", ":8000", "HTTP listen address"},
	{"mode", "mode", "release", "gin mode: debug, release or test"},
	{"static_dir", "static-dir", "static", "directory with the web front-end, served at /"},
	{"log.level", "log-level", "info", "log level: debug, info, warn, error"},
	{"log.format", "log-format", "text", "log format: text, json, logfmt"},
	{"http.read_timeout", "read-timeout", 5 * time.Second, "HTTP read timeout"},
	{"http.write_timeout", "write-timeout", 10 * time.Second, "HTTP write timeout"},
	{"http.idle_timeout", "idle-timeout", 60 * time.Second, "HTTP idle timeout"},
	{"http.shutdown_timeout", "shutdown-timeout", 5 * time.Second, "graceful shutdown timeout"},
	{"kafka.broker", "kafka-broker", "", "Kafka broker address, empty disables events"},
	{"kafka.topic", "kafka-topic", "todo-events", "Kafka topic for todo events"},
	{"kafka.group_id", "kafka-group-id", "todo-event-logger", "consumer group of the event logger"},
	{"kafka.log_file", "kafka-log-file", "todo-events.log", "file the event logger appends to"},
}

// Load parses args into fs and resolves the configuration.
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	fs.String("config", "", "path to a config file (yaml, toml or json)")
	for _, o := range options {
		v.SetDefault(o.key, o.value)
		switch def := o.value.(type) {
		case string:
			fs.String(o.flag, def, o.usage)
		case time.Duration:
			fs.Duration(o.flag, def, o.usage)
		}
	}

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	for _, o := range options {
		if err := v.BindPFlag(o.key, fs.Lookup(o.flag)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", o.flag, err)
		}
	}

	path, err := fs.GetString("config")
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = v.GetString("config")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Addr:      v.GetString("addr"),
		Mode:      v.GetString("mode"),
		StaticDir: v.GetString("static_dir"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
		Kafka: KafkaConfig{
			Broker:  v.GetString("kafka.broker"),
			Topic:   v.GetString("kafka.topic"),
			GroupID: v.GetString("kafka.group_id"),
			LogFile: v.GetString("kafka.log_file"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return errors.New("addr is not configured")
	}
	switch c.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.Kafka.Broker != "" && c.Kafka.Topic == "" {
		return errors.New("kafka.topic is required when kafka.broker is set")
	}
	return nil
}

// EventsEnabled reports whether todo events should be published.
func (c *Config) EventsEnabled() bool {
	return c.Kafka.Broker != ""
}
