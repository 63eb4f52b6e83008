package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type HTTPConfig struct {
	Addr string
}

type GRPCConfig struct {
	Addr string
}

type AppConfig struct {
	ServiceName string
	LogLevel    string
	Env         string
	HTTP        HTTPConfig
	GRPC        GRPCConfig
}

// IsProd reports whether APP_ENV is "production".
func (c AppConfig) IsProd() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads the process environment. Before reading, values from ./.env and
// from the YAML file named by CONFIG_FILE are added for keys the environment
// does not already set.
func Load() (AppConfig, error) {
	if err := Prepare(); err != nil {
		return AppConfig{}, err
	}
	cfg := AppConfig{
		ServiceName: Get("SERVICE_NAME"),
		LogLevel:    Get("LOG_LEVEL"),
		Env:         Get("APP_ENV"),
		HTTP: HTTPConfig{
			Addr: Get("HTTP_ADDR"),
		},
		GRPC: GRPCConfig{
			Addr: Get("GRPC_ADDR"),
		},
	}
	if cfg.ServiceName == "" {
		return AppConfig{}, errors.New("SERVICE_NAME is required")
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.GRPC.Addr == "" {
		cfg.GRPC.Addr = ":9090"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

// Get returns the trimmed value of an environment variable.
func Get(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// Prepare loads .env and CONFIG_FILE into the environment without
// overriding variables that are already set.
func Prepare() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf(".env: %w", err)
	}
	if path := Get("CONFIG_FILE"); path != "" {
		return loadYAML(path)
	}
	return nil
}

// loadYAML reads a flat mapping of environment keys, e.g.
//
//	SERVICE_NAME: forum
//	FORUM_STORE_DSN: sqlite://./data/forum.db
func loadYAML(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var values map[string]string
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for k, v := range values {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return err
		}
	}
	return nil
}
