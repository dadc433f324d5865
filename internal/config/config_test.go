package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadParsesEndpointsAndBudgets(t *testing.T) {
	path := writeConfig(t, `
endpoints:
  - url: https://node-a.example/rpc
    status_refresh_interval_secs: 30
    limits:
      req_limit: 100
      req_limit_window_ms: 1000
      get_logs_range_limit: 2000
      batch_size_limit: 50
query:
  time_limit_ms: 5000
http_server:
  addr: ":8080"
  response_size_limit_mb: 32
  response_time_limit_ms: 10000
parquet_path: /data/archive
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Endpoints) != 1 || cfg.Endpoints[0].URL != "https://node-a.example/rpc" {
		t.Fatalf("unexpected endpoints: %+v", cfg.Endpoints)
	}
	if cfg.Endpoints[0].Limits.ReqLimit != 100 {
		t.Fatalf("expected req_limit=100, got %d", cfg.Endpoints[0].Limits.ReqLimit)
	}
	if cfg.Query.TimeLimitMs != 5000 {
		t.Fatalf("expected query time limit 5000, got %d", cfg.Query.TimeLimitMs)
	}
	if cfg.HTTPServer.Addr != ":8080" {
		t.Fatalf("expected addr :8080, got %q", cfg.HTTPServer.Addr)
	}
	if cfg.ParquetPath != "/data/archive" {
		t.Fatalf("expected parquet_path set, got %q", cfg.ParquetPath)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
http_server:
  addr: ":8080"
  response_size_limit_mb: 32
  response_time_limit_ms: 10000
query:
  time_limit_ms: 5000
parquet_path: /data/archive
`)

	t.Setenv("ARCHIVED_HTTP_ADDR", ":9090")
	t.Setenv("ARCHIVED_QUERY_TIME_LIMIT_MS", "9000")
	t.Setenv("ARCHIVED_PARQUET_PATH", "/mnt/archive")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPServer.Addr != ":9090" {
		t.Fatalf("expected env override addr :9090, got %q", cfg.HTTPServer.Addr)
	}
	if cfg.Query.TimeLimitMs != 9000 {
		t.Fatalf("expected env override time limit 9000, got %d", cfg.Query.TimeLimitMs)
	}
	if cfg.ParquetPath != "/mnt/archive" {
		t.Fatalf("expected env override parquet path, got %q", cfg.ParquetPath)
	}
	// ARCHIVED_RESPONSE_SIZE_LIMIT_MB is not set here, so HTTPServer.ResponseSizeLimitMB keeps the file value.
	if cfg.HTTPServer.ResponseSizeLimitMB != 32 {
		t.Fatalf("expected response_size_limit_mb to remain 32, got %d", cfg.HTTPServer.ResponseSizeLimitMB)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
