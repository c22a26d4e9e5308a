package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr            string        `json:"addr"`
	AllowedOrigins  []string      `json:"allowed_origins"`
	SearchDepth     int           `json:"search_depth"`
	MaxSearchDepth  int           `json:"max_search_depth"`
	EngineMoveDelay time.Duration `json:"engine_move_delay"`
	ReadBufferSize  int           `json:"read_buffer_size"`
	WriteBufferSize int           `json:"write_buffer_size"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

func Default() Config {
	return Config{
		Addr:           ":3000",
		AllowedOrigins: []string{"http://localhost:5173"},

		// Fixed-depth search; depth 2 answers instantly, 4 is already slow with the
		// apply/undo legality check.
		SearchDepth:    2,
		MaxSearchDepth: 4,

		EngineMoveDelay: 0,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Load starts from Default and applies NEGACHESS_* environment overrides.
func Load() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if v, ok := lookup("NEGACHESS_ADDR"); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := lookup("NEGACHESS_ORIGINS"); ok && v != "" {
		cfg.AllowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}
	ints := []struct {
		key string
		dst *int
	}{
		{"NEGACHESS_DEPTH", &cfg.SearchDepth},
		{"NEGACHESS_MAX_DEPTH", &cfg.MaxSearchDepth},
		{"NEGACHESS_WS_READ_BUFFER", &cfg.ReadBufferSize},
		{"NEGACHESS_WS_WRITE_BUFFER", &cfg.WriteBufferSize},
	}
	for _, item := range ints {
		v, ok := lookup(item.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", item.key, err)
		}
		*item.dst = n
	}
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"NEGACHESS_ENGINE_DELAY", &cfg.EngineMoveDelay},
		{"NEGACHESS_SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout},
	}
	for _, item := range durations {
		v, ok := lookup(item.key)
		if !ok || v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", item.key, err)
		}
		*item.dst = d
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.SearchDepth < 0 {
		return fmt.Errorf("search depth must not be negative, got %d", c.SearchDepth)
	}
	if c.MaxSearchDepth < c.SearchDepth {
		return fmt.Errorf("max search depth %d below default depth %d", c.MaxSearchDepth, c.SearchDepth)
	}
	if c.ReadBufferSize <= 0 || c.WriteBufferSize <= 0 {
		return fmt.Errorf("websocket buffer sizes must be positive")
	}
	if c.EngineMoveDelay < 0 {
		return fmt.Errorf("engine move delay must not be negative")
	}
	return nil
}
