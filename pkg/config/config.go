package config

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

// Config defines the global application configuration structure.
// This structure maps directly to the config.json file and holds
// business-level settings like channel credentials and the capability
// proxy location.
type Config struct {
	// ProxyBaseURL is the base URL of the endpoint that proxies all
	// capability integrations (and holds their API keys). The relative
	// endpoints of the catalog are resolved against it.
	ProxyBaseURL string `json:"proxy_base_url"`
	// Channels contains a map of channel identifiers (e.g., "telegram", "web")
	// to their specific configuration payloads in raw JSON format.
	Channels map[string]jsoniter.RawMessage `json:"channels"`
	// HistoryPath points at the sqlite file recording past submissions.
	// Empty disables history.
	HistoryPath string `json:"history_path"`
}

// Validate ensures the configuration structure contains all mandatory fields.
// It acts as a primary guard before the system proceeds to initialization.
func (c *Config) Validate() error {
	if c.ProxyBaseURL == "" {
		return fmt.Errorf("mandatory 'proxy_base_url' configuration is missing or empty")
	}
	if len(c.Channels) == 0 {
		return fmt.Errorf("mandatory 'channels' configuration is missing or empty")
	}
	return nil
}

// SystemConfig defines engine-level technical parameters.
// These settings are usually stored in system.json and control the
// performance, reliability, and technical behavior of the hub.
type SystemConfig struct {
	// HTTPTimeoutMs is the transport-default timeout (in milliseconds)
	// applied to the single attempt of each capability invocation.
	HTTPTimeoutMs int `json:"http_timeout_ms"`
	// DownloadTimeoutMs is the timeout (in milliseconds) applied when
	// fetching external media (e.g., photos from Telegram servers).
	DownloadTimeoutMs int `json:"download_timeout_ms"`
	// WebPort is the listen port of the web channel when its own config
	// does not override it.
	WebPort int `json:"web_port"`
	// HistoryLimit caps how many records the history endpoint returns.
	HistoryLimit int `json:"history_limit"`
	// TelegramMessageLimit is the maximum character count for a single
	// Telegram message. Longer results are truncated.
	TelegramMessageLimit int `json:"telegram_message_limit"`
	// RatePerMinute and RateBurst shape the per-chat limiter of the
	// Telegram channel.
	RatePerMinute int `json:"rate_per_minute"`
	RateBurst     int `json:"rate_burst"`
	// LogLevel sets the minimum severity for log output.
	// Accepted values: "debug", "info", "warn", "error". Default: "info".
	LogLevel string `json:"log_level"`
}

// DefaultSystemConfig returns a SystemConfig pointer initialized with hardcoded
// safe default values. This is used as a fallback when the system.json file
// is missing or corrupt, ensuring the hub can always start.
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		HTTPTimeoutMs:        30000,
		DownloadTimeoutMs:    10000,
		WebPort:              8080,
		HistoryLimit:         50,
		TelegramMessageLimit: 4000,
		RatePerMinute:        20,
		RateBurst:            5,
		LogLevel:             "info",
	}
}

// Load reads and parses the JSON configuration files from the current working directory.
// It first attempts to load 'config.json' (app config). If this file is missing, it returns an error.
// Then it calls LoadSystemConfig to load 'system.json'.
// Returns pointers to the loaded Config and SystemConfig, or an error if the mandatory app config fails.
func Load() (*Config, *SystemConfig, error) {
	// 1. Load Application Config
	appPath := "config.json"
	if _, err := os.Stat(appPath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("config file '%s' not found. please create one", appPath)
	}

	appFile, err := os.ReadFile(appPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(appFile, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// 1a. Validate structure integrity
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	// 2. Load System Config independently
	sysCfg := LoadSystemConfig("system.json")

	return &cfg, sysCfg, nil
}

// LoadSystemConfig attempts to load system settings, returns defaults if it fails
func LoadSystemConfig(path string) *SystemConfig {
	cfg := DefaultSystemConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		return cfg // File not found, use defaults
	}

	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(file, cfg); err != nil {
		return cfg // Parse failed, use defaults
	}

	return cfg
}
