package termprobe

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Server.BaseURL != "http://localhost:11434" {
		t.Errorf("unexpected default base_url: %q", cfg.Server.BaseURL)
	}
	if cfg.Server.Model != "nemotron-mini:4b-instruct-q8_0" {
		t.Errorf("unexpected default model: %q", cfg.Server.Model)
	}
	if cfg.ListTimeout() != 5*time.Second {
		t.Errorf("unexpected list timeout: %v", cfg.ListTimeout())
	}
	if cfg.GenerateTimeout() != 45*time.Second {
		t.Errorf("unexpected generate timeout: %v", cfg.GenerateTimeout())
	}
	if cfg.Probe.Temperature != 0.1 {
		t.Errorf("unexpected temperature: %v", cfg.Probe.Temperature)
	}
	if cfg.Probe.NumPredict != 50 {
		t.Errorf("unexpected num_predict: %d", cfg.Probe.NumPredict)
	}
	if cfg.Pause() != time.Second {
		t.Errorf("unexpected pause: %v", cfg.Pause())
	}
	if cfg.PollInterval() != 100*time.Millisecond {
		t.Errorf("unexpected poll interval: %v", cfg.PollInterval())
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("TERMPROBE_CONFIG_DIR", t.TempDir())
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.BaseURL != DefaultConfig().Server.BaseURL {
		t.Errorf("expected default base_url, got %q", cfg.Server.BaseURL)
	}
}

func TestLoadConfigFillsMissingFields(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TERMPROBE_CONFIG_DIR", dir)

	partial := "[server]\nbase_url = \"http://10.0.0.2:11434\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(partial), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.BaseURL != "http://10.0.0.2:11434" {
		t.Errorf("expected configured base_url, got %q", cfg.Server.BaseURL)
	}
	if cfg.Server.Model != DefaultConfig().Server.Model {
		t.Errorf("expected default model fill, got %q", cfg.Server.Model)
	}
	if cfg.Probe.PauseMillis != 1000 {
		t.Errorf("expected default pause fill, got %d", cfg.Probe.PauseMillis)
	}
	if cfg.ModelCacheTTL() != 5*time.Second {
		t.Errorf("expected default model cache TTL fill, got %v", cfg.ModelCacheTTL())
	}
}

func TestLoadConfigRejectsInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TERMPROBE_CONFIG_DIR", dir)

	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for invalid TOML")
	}
}

func TestResolveBaseURLEnvOverride(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv("OLLAMA_HOST", "http://envhost:11434")
	if got := ResolveBaseURL(cfg); got != "http://envhost:11434" {
		t.Errorf("expected env override, got %q", got)
	}
}

func TestResolveBaseURLFallsBackToConfig(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv("OLLAMA_HOST", "")
	if got := ResolveBaseURL(cfg); got != cfg.Server.BaseURL {
		t.Errorf("expected config value, got %q", got)
	}
}

func TestConfigDirResolutionOrder(t *testing.T) {
	t.Setenv("TERMPROBE_CONFIG_DIR", "/custom/dir")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := ConfigDir(); got != "/custom/dir" {
		t.Errorf("expected TERMPROBE_CONFIG_DIR to win, got %q", got)
	}

	t.Setenv("TERMPROBE_CONFIG_DIR", "")
	if got := ConfigDir(); got != filepath.Join("/xdg", "termprobe") {
		t.Errorf("expected XDG_CONFIG_HOME path, got %q", got)
	}
}
