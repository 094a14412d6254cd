package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScraperConfig configures the study site scraper.
type ScraperConfig struct {
	BaseURL        string `yaml:"base_url,omitempty"`
	DelayMS        int    `yaml:"delay_ms,omitempty"`
	MaxRetries     int    `yaml:"max_retries,omitempty"`
	UserAgent      string `yaml:"user_agent,omitempty"`
	MaxPages       int    `yaml:"max_pages,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// GlobalConfig represents configuration stored in ~/.config/hdb/config.yml.
type GlobalConfig struct {
	DataPath string        `yaml:"data_path,omitempty"` // Default repository when not inside one
	LogMode  string        `yaml:"log_mode,omitempty"`  // dev, prod or quiet
	Scraper  ScraperConfig `yaml:"scraper,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "hdb"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"

	EnvLogMode        = "HDB_LOG_MODE"
	EnvScraperBaseURL = "HDB_SCRAPER_BASE_URL"
	EnvDataPath       = "HDB_DATA_PATH"
)

// Scraper defaults.
const (
	DefaultBaseURL        = "https://hydrogenstudies.com"
	DefaultDelayMS        = 1000
	DefaultMaxRetries     = 3
	DefaultUserAgent      = "EchoWater-Data-Extractor/1.0"
	DefaultMaxPages       = 54
	DefaultTimeoutSeconds = 30
	DefaultLogMode        = "quiet"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/hdb/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.DataPath != "" {
		cfg.DataPath = ExpandPath(cfg.DataPath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetConfigValue returns the environment variable envKey if set, otherwise
// configValue.
func GetConfigValue(envKey, configValue string) string {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v
	}
	return configValue
}

// GetLogMode returns the log mode, HDB_LOG_MODE taking priority.
func GetLogMode() string {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		cfg = &GlobalConfig{}
	}
	if mode := GetConfigValue(EnvLogMode, cfg.LogMode); mode != "" {
		return mode
	}
	return DefaultLogMode
}

// GetDataPath returns the default repository root, HDB_DATA_PATH taking priority.
func GetDataPath() string {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		cfg = &GlobalConfig{}
	}
	return ExpandPath(GetConfigValue(EnvDataPath, cfg.DataPath))
}

// ScraperSettings returns the scraper configuration with defaults filled in
// and HDB_SCRAPER_BASE_URL applied.
func ScraperSettings() (ScraperConfig, error) {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ScraperConfig{}, err
	}
	return cfg.Scraper.WithDefaults(), nil
}

// WithDefaults returns a copy of c with unset fields defaulted.
func (c ScraperConfig) WithDefaults() ScraperConfig {
	c.BaseURL = strings.TrimRight(GetConfigValue(EnvScraperBaseURL, c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.DelayMS <= 0 {
		c.DelayMS = DefaultDelayMS
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxPages <= 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	return c
}

// HelpfulConfigMessage returns a helpful message when no repository is found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No hydrodb repository found.

Run 'hdb init' in the directory that should hold the study database, or
create %s to set a default:
  mkdir -p %s
  echo 'data_path: /path/to/your/studies' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
