// Package config loads the archive service's static configuration: the
// upstream RPC endpoint list, their rate limits, query budgets, and the
// HTTP server's own settings.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LimitConfig bounds one endpoint's request accounting.
type LimitConfig struct {
	ReqLimit          int         `yaml:"req_limit"`
	ReqLimitWindowMs  int64       `yaml:"req_limit_window_ms"`
	GetLogsRangeLimit int         `yaml:"get_logs_range_limit"`
	BatchSizeLimit    int         `yaml:"batch_size_limit"`
}

// EndpointConfig describes one upstream JSON-RPC node.
type EndpointConfig struct {
	URL                   string      `yaml:"url"`
	StatusRefreshInterval int         `yaml:"status_refresh_interval_secs"`
	Limits                LimitConfig `yaml:"limits"`
}

// QueryConfig bounds a single QueryHandler invocation's wall-clock budget.
type QueryConfig struct {
	TimeLimitMs int64 `yaml:"time_limit_ms"`
}

// HttpServerConfig configures HttpFacade's listener and response budgets.
type HttpServerConfig struct {
	Addr                string `yaml:"addr"`
	ResponseSizeLimitMB int64  `yaml:"response_size_limit_mb"`
	ResponseTimeLimitMs int64  `yaml:"response_time_limit_ms"`
}

// Config is the full static configuration of the archive service.
type Config struct {
	Endpoints   []EndpointConfig `yaml:"endpoints"`
	Query       QueryConfig      `yaml:"query"`
	HTTPServer  HttpServerConfig `yaml:"http_server"`
	ParquetPath string           `yaml:"parquet_path"`
}

// Load reads and parses a YAML config file at path, then applies process
// environment overrides for the fields operators most often tune per
// deployment without editing the checked-in file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.Query.TimeLimitMs = getEnvInt64("ARCHIVED_QUERY_TIME_LIMIT_MS", cfg.Query.TimeLimitMs)
	cfg.HTTPServer.Addr = getEnvString("ARCHIVED_HTTP_ADDR", cfg.HTTPServer.Addr)
	cfg.HTTPServer.ResponseSizeLimitMB = getEnvInt64("ARCHIVED_RESPONSE_SIZE_LIMIT_MB", cfg.HTTPServer.ResponseSizeLimitMB)
	cfg.HTTPServer.ResponseTimeLimitMs = getEnvInt64("ARCHIVED_RESPONSE_TIME_LIMIT_MS", cfg.HTTPServer.ResponseTimeLimitMs)
	cfg.ParquetPath = getEnvString("ARCHIVED_PARQUET_PATH", cfg.ParquetPath)
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
			return val
		}
	}
	return defaultVal
}
