// Package config provides runtime configuration for the service.
// Values come from built-in defaults, then an optional YAML file, then
// environment variables, each layer overriding the previous one.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config holds the knobs for the HTTP server and storage backend.
type Config struct {
	Service           string        `yaml:"service"`
	Env               string        `yaml:"env"`
	HTTPAddr          string        `yaml:"http_addr"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	StorageDriver     string        `yaml:"storage_driver"`
	SQLitePath        string        `yaml:"sqlite_path"`
	LowStockThreshold int           `yaml:"low_stock_threshold"`
	StoreName         string        `yaml:"store_name"`
	StoreAddress      string        `yaml:"store_address"`
	StorePhone        string        `yaml:"store_phone"`
}

func defaults() Config {
	return Config{
		Service:           "hardpos",
		Env:               "dev",
		HTTPAddr:          ":8080",
		ShutdownTimeout:   10 * time.Second,
		StorageDriver:     DriverMemory,
		SQLitePath:        "hardpos.db",
		LowStockThreshold: 10,
		StoreName:         "Engr Quilang Hardware",
		StoreAddress:      "Cabbo, Penablanca, Cagayan",
		StorePhone:        "+63 995 559 7560",
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Service = getenv("SERVICE_NAME", cfg.Service)
	cfg.Env = getenv("ENV", cfg.Env)
	cfg.HTTPAddr = getenv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.ShutdownTimeout = durenvs("SHUTDOWN_TIMEOUT_SECONDS", cfg.ShutdownTimeout)
	cfg.StorageDriver = getenv("STORAGE_DRIVER", cfg.StorageDriver)
	cfg.SQLitePath = getenv("SQLITE_PATH", cfg.SQLitePath)
	cfg.LowStockThreshold = atoienv("LOW_STOCK_THRESHOLD", cfg.LowStockThreshold)
	cfg.StoreName = getenv("STORE_NAME", cfg.StoreName)
	cfg.StoreAddress = getenv("STORE_ADDRESS", cfg.StoreAddress)
	cfg.StorePhone = getenv("STORE_PHONE", cfg.StorePhone)

	if cfg.StorageDriver != DriverMemory && cfg.StorageDriver != DriverSQLite {
		return Config{}, fmt.Errorf("config: unknown storage driver %q", cfg.StorageDriver)
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	sec, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(sec) * time.Second
}
