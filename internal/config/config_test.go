package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigMissingFileIsEmpty(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.URL != nil || cfg.History.PageSize != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigDecodesValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
url = "https://pass-intel.example.com"
timeout = "5s"

[history]
page-size = 20
sort = "score"

[log]
level = "debug"

[devserver]
addr = "127.0.0.1:9000"
breach-file = "/tmp/breached.txt"
rate = 2.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *cfg.API.URL != "https://pass-intel.example.com" || cfg.API.Timeout.Duration != 5*time.Second {
		t.Fatalf("unexpected api config: %+v", cfg.API)
	}
	if *cfg.History.PageSize != 20 || *cfg.History.Sort != "score" {
		t.Fatalf("unexpected history config: %+v", cfg.History)
	}
	if *cfg.Log.Level != "debug" || cfg.Log.File != nil {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
	if *cfg.DevServer.Addr != "127.0.0.1:9000" || *cfg.DevServer.Rate != 2.5 || cfg.DevServer.Burst != nil {
		t.Fatalf("unexpected devserver config: %+v", cfg.DevServer)
	}
}

func TestLoadConfigRejectsUnknownKeysAndBadDurations(t *testing.T) {
	for _, content := range []string{
		"[api]\nbase = \"http://x\"\n",
		"[api]\ntimeout = \"soon\"\n",
	} {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Fatalf("expected error for %q", content)
		}
	}
}

func TestApplyEnvOverridesFile(t *testing.T) {
	fileURL := "http://file"
	cfg := FileConfig{API: APIConfig{URL: &fileURL}}
	env := map[string]string{
		EnvAPIURL:   "http://env",
		EnvTimeout:  "2s",
		EnvLogLevel: "warn",
	}
	if err := ApplyEnv(&cfg, func(k string) string { return env[k] }); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if *cfg.API.URL != "http://env" || cfg.API.Timeout.Duration != 2*time.Second || *cfg.Log.Level != "warn" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Log.File != nil {
		t.Fatalf("unset env var must not override")
	}

	env[EnvTimeout] = "later"
	if err := ApplyEnv(&cfg, func(k string) string { return env[k] }); err == nil {
		t.Fatalf("expected invalid timeout to fail")
	}
}

func TestSetupLoggerWithWritersMasksSecrets(t *testing.T) {
	var console, file bytes.Buffer
	logger := SetupLoggerWithWriters(&console, &file, slog.LevelInfo)
	logger.Info("analyze", "password", "hunter2", "status", 200)

	if strings.Contains(console.String(), "hunter2") || strings.Contains(file.String(), "hunter2") {
		t.Fatalf("password leaked: console=%q file=%q", console.String(), file.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(file.Bytes(), &entry); err != nil {
		t.Fatalf("file sink is not JSON: %v", err)
	}
	if entry["status"] != float64(200) {
		t.Fatalf("status = %v", entry["status"])
	}
}

func TestSetupLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "passintel.log")
	logger, cleanup := SetupLogger(path, slog.LevelDebug, nil)
	logger.Debug("hello")
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Fatalf("unexpected log content: %s", data)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
