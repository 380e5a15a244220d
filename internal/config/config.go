// Package config loads server settings from defaults, an optional
// yaml file, and CHATROOM_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	// Address the HTTP server binds to
	ListenAddr string

	// Redis address for the message log; empty selects the in-memory store
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Capacity of the message log and the slice replayed to newcomers
	HistorySize int
	ReplayCount int

	// Per-connection inbound event budget
	MessageRate  float64
	MessageBurst int

	// How often the history janitor re-trims the log
	JanitorInterval string
}

// Load reads configuration with the precedence env > file > defaults.
// A missing config file is not an error; an unreadable one is.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("history_size", 20)
	v.SetDefault("replay_count", 10)
	v.SetDefault("message_rate", 10.0)
	v.SetDefault("message_burst", 20)
	v.SetDefault("janitor_interval", "1m")

	v.SetEnvPrefix("CHATROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("chatroom")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{
		ListenAddr:      v.GetString("listen_addr"),
		RedisAddr:       v.GetString("redis_addr"),
		RedisPassword:   v.GetString("redis_password"),
		RedisDB:         v.GetInt("redis_db"),
		HistorySize:     v.GetInt("history_size"),
		ReplayCount:     v.GetInt("replay_count"),
		MessageRate:     v.GetFloat64("message_rate"),
		MessageBurst:    v.GetInt("message_burst"),
		JanitorInterval: v.GetString("janitor_interval"),
	}

	if cfg.HistorySize <= 0 {
		return nil, fmt.Errorf("history_size must be positive, got %d", cfg.HistorySize)
	}
	if cfg.ReplayCount < 0 {
		return nil, fmt.Errorf("replay_count must not be negative, got %d", cfg.ReplayCount)
	}
	if cfg.ReplayCount > cfg.HistorySize {
		cfg.ReplayCount = cfg.HistorySize
	}

	return cfg, nil
}
