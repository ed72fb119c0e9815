package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// clearEnv blanks the overlay variables so a developer's shell cannot leak
// into the assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"HTTP_ADDR", "DB_DRIVER", "DB_DSN", "REDIS_ADDR", "QUIZ_CACHE_TTL", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("addr=%q, want :8080", cfg.HTTPAddr)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("driver=%q, want sqlite", cfg.DBDriver)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("cors=%v", cfg.CORSOrigins)
	}
}

func TestLoadFileValuesApply(t *testing.T) {
	path := writeFile(t, `
http_addr: ":9100"
db_driver: postgres
db_dsn: postgres://db/quizcore
quiz_cache_ttl: 90s
cors_origins:
  - https://app.example.com
`)
	clearEnv(t)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9100" {
		t.Fatalf("addr=%q, want file value :9100", cfg.HTTPAddr)
	}
	if cfg.DBDriver != "postgres" || cfg.DBDSN != "postgres://db/quizcore" {
		t.Fatalf("db: %+v", cfg)
	}
	if got := cfg.CacheTTL(time.Minute); got != 90*time.Second {
		t.Fatalf("ttl=%v, want 90s", got)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://app.example.com" {
		t.Fatalf("cors=%v", cfg.CORSOrigins)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, `
http_addr: ":9100"
db_driver: sqlite
`)
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":9200")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9200" {
		t.Fatalf("addr=%q, env must win over file", cfg.HTTPAddr)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("cors=%v", cfg.CORSOrigins)
	}
}

func TestCacheTTLFallback(t *testing.T) {
	var cfg Config
	if got := cfg.CacheTTL(5 * time.Minute); got != 5*time.Minute {
		t.Fatalf("empty ttl must use fallback, got %v", got)
	}
	cfg.QuizCacheTTL = "not-a-duration"
	if got := cfg.CacheTTL(5 * time.Minute); got != 5*time.Minute {
		t.Fatalf("bad ttl must use fallback, got %v", got)
	}
}
