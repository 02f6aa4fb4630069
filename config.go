package termprobe

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	defaults "github.com/ai-terminal/termprobe/default"
)

// Config represents the user's termprobe configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Probe   ProbeConfig   `toml:"probe"`
	KeyEcho KeyEchoConfig `toml:"keyecho"`
}

// ServerConfig holds settings for the generation server.
type ServerConfig struct {
	BaseURL                string `toml:"base_url"`
	Model                  string `toml:"model"`
	ListTimeoutSeconds     int    `toml:"list_timeout_seconds"`
	GenerateTimeoutSeconds int    `toml:"generate_timeout_seconds"`
	// ModelCacheTTLSeconds bounds how long a model listing is reused
	// before hitting the server again. 0 disables the cache.
	ModelCacheTTLSeconds int `toml:"model_cache_ttl_seconds"`
}

// ProbeConfig holds generation parameters and run pacing for chatprobe.
type ProbeConfig struct {
	Temperature float64 `toml:"temperature"`
	NumPredict  int     `toml:"num_predict"`
	// PauseMillis is the pause inserted between checks.
	PauseMillis int `toml:"pause_ms"`
}

// KeyEchoConfig holds settings for the keyecho tool.
type KeyEchoConfig struct {
	// PollIntervalMillis is the sleep between input polls when the
	// terminal has nothing to read.
	PollIntervalMillis int `toml:"poll_interval_ms"`
}

// ConfigDir returns the config directory path.
// Resolution order: $TERMPROBE_CONFIG_DIR > $XDG_CONFIG_HOME/termprobe > ~/.config/termprobe
func ConfigDir() string {
	if dir := os.Getenv("TERMPROBE_CONFIG_DIR"); dir != "" {
		return dir
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "termprobe")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("/tmp", "termprobe-config")
	}
	return filepath.Join(home, ".config", "termprobe")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DefaultConfig returns the default configuration from the embedded default_config.toml.
func DefaultConfig() *Config {
	var cfg Config
	if err := toml.Unmarshal(defaults.DefaultConfigTOML, &cfg); err != nil {
		panic("termprobe: invalid embedded default_config.toml: " + err.Error())
	}
	return &cfg
}

// LoadConfig loads config from disk or returns defaults if not found.
func LoadConfig() (*Config, error) {
	path := ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Apply defaults for missing fields
	defaults := DefaultConfig()
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = defaults.Server.BaseURL
	}
	if cfg.Server.Model == "" {
		cfg.Server.Model = defaults.Server.Model
	}
	if cfg.Server.ListTimeoutSeconds == 0 {
		cfg.Server.ListTimeoutSeconds = defaults.Server.ListTimeoutSeconds
	}
	if cfg.Server.GenerateTimeoutSeconds == 0 {
		cfg.Server.GenerateTimeoutSeconds = defaults.Server.GenerateTimeoutSeconds
	}
	if cfg.Server.ModelCacheTTLSeconds == 0 {
		cfg.Server.ModelCacheTTLSeconds = defaults.Server.ModelCacheTTLSeconds
	}
	if cfg.Probe.Temperature == 0 {
		cfg.Probe.Temperature = defaults.Probe.Temperature
	}
	if cfg.Probe.NumPredict == 0 {
		cfg.Probe.NumPredict = defaults.Probe.NumPredict
	}
	if cfg.Probe.PauseMillis == 0 {
		cfg.Probe.PauseMillis = defaults.Probe.PauseMillis
	}
	if cfg.KeyEcho.PollIntervalMillis == 0 {
		cfg.KeyEcho.PollIntervalMillis = defaults.KeyEcho.PollIntervalMillis
	}

	return &cfg, nil
}

// ResolveBaseURL returns the generation server base URL.
// Priority: $OLLAMA_HOST env > config value.
func ResolveBaseURL(cfg *Config) string {
	if url := os.Getenv("OLLAMA_HOST"); url != "" {
		return url
	}
	if cfg != nil {
		return cfg.Server.BaseURL
	}
	return ""
}

// ResolveModel returns the default model name.
// Priority: $TERMPROBE_MODEL env > config value.
func ResolveModel(cfg *Config) string {
	if model := os.Getenv("TERMPROBE_MODEL"); model != "" {
		return model
	}
	if cfg != nil {
		return cfg.Server.Model
	}
	return ""
}

// ListTimeout returns the model-listing request timeout.
func (c *Config) ListTimeout() time.Duration {
	return time.Duration(c.Server.ListTimeoutSeconds) * time.Second
}

// GenerateTimeout returns the generation request timeout.
func (c *Config) GenerateTimeout() time.Duration {
	return time.Duration(c.Server.GenerateTimeoutSeconds) * time.Second
}

// ModelCacheTTL returns the model listing cache TTL.
func (c *Config) ModelCacheTTL() time.Duration {
	return time.Duration(c.Server.ModelCacheTTLSeconds) * time.Second
}

// Pause returns the inter-check pause.
func (c *Config) Pause() time.Duration {
	return time.Duration(c.Probe.PauseMillis) * time.Millisecond
}

// PollInterval returns the keyecho poll sleep.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.KeyEcho.PollIntervalMillis) * time.Millisecond
}
