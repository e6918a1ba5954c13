package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

func defaultConfig() config {
	var cfg config

	cfg.version = "1.0.0"
	cfg.Port = 8008
	cfg.Env = "development"
	cfg.LogLevel = "info"

	cfg.DB.Driver = "postgres"
	cfg.DB.MaxOpenConns = 25
	cfg.DB.MaxIdleConns = 25
	cfg.DB.MaxIdleTime = "15m"

	cfg.Limiter.RPS = 2
	cfg.Limiter.Burst = 4
	cfg.Limiter.Enabled = true

	cfg.Media.Backend = "local"
	cfg.Media.Dir = "./uploads"
	cfg.Media.BaseURL = "http://localhost:8008/media"
	cfg.Media.Workers = 4
	cfg.Media.MaxUploadBytes = 10 << 20

	cfg.AMQP.Exchange = "dining.events"
	cfg.Compress = true

	return cfg
}

// configPath finds the value of -config among args without parsing the other flags.
func configPath(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// loadConfigFile overlays the YAML file at path onto cfg. Keys missing from the file keep their
// current values.
func loadConfigFile(path string, cfg *config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}
