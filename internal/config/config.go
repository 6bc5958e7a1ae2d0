package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"glowbook/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Remote     RemoteConfig     `yaml:"remote"`
	Sync       SyncConfig       `yaml:"sync"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type RemoteConfig struct {
	BaseURL        string          `yaml:"base_url"`
	TimeoutSeconds int             `yaml:"timeout_seconds"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type SyncConfig struct {
	MaxRetries            int  `yaml:"max_retries"`
	RetryDelaySeconds     int  `yaml:"retry_delay_seconds"`
	PeriodicIntervalHours int  `yaml:"periodic_interval_hours"`
	BatchSize             int  `yaml:"batch_size"`
	RequireNetwork        bool `yaml:"require_network"`
	RespectBatteryLow     bool `yaml:"respect_battery_low"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type ExportConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads the yaml config file, expanding ${VAR} references from the
// environment (a .env file is loaded first when present).
func Load(configPath string) (*Config, error) {
	// .env is optional; missing file is not an error.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Remote.BaseURL == "" {
		return errors.New("remote base_url is required")
	}

	if c.Sync.MaxRetries < 1 {
		return fmt.Errorf("sync.max_retries must be positive, got %d", c.Sync.MaxRetries)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "glowbook"
	}
	if c.Remote.TimeoutSeconds == 0 {
		c.Remote.TimeoutSeconds = 15
	}
	if c.Remote.RateLimit.RPS == 0 {
		c.Remote.RateLimit.RPS = 10
	}
	if c.Remote.RateLimit.Burst == 0 {
		c.Remote.RateLimit.Burst = 5
	}
	if c.Sync.MaxRetries == 0 {
		c.Sync.MaxRetries = models.DefaultMaxRetries
	}
	if c.Sync.RetryDelaySeconds == 0 {
		c.Sync.RetryDelaySeconds = int(models.DefaultRetryDelay / time.Second)
	}
	if c.Sync.PeriodicIntervalHours == 0 {
		c.Sync.PeriodicIntervalHours = int(models.DefaultSyncInterval / time.Hour)
	}
	if c.Sync.BatchSize == 0 {
		c.Sync.BatchSize = models.DefaultBatchSize
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Exports.Enabled && c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}

// RemoteTimeout returns the per-request deadline for remote calls.
func (c *Config) RemoteTimeout() time.Duration {
	return time.Duration(c.Remote.TimeoutSeconds) * time.Second
}

// RetryDelay returns the base delay of the per-item linear backoff.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Sync.RetryDelaySeconds) * time.Second
}

// PeriodicInterval returns the background sync interval.
func (c *Config) PeriodicInterval() time.Duration {
	return time.Duration(c.Sync.PeriodicIntervalHours) * time.Hour
}
