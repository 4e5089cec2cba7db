package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	API      APIConfig      `mapstructure:"api"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Health   HealthConfig   `mapstructure:"health"`
	Sources  SourcesConfig  `mapstructure:"sources"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type APIConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

type IngestConfig struct {
	WorkerCount  int           `mapstructure:"worker_count"`
	SettleDelay  time.Duration `mapstructure:"settle_delay"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	ReclaimEvery time.Duration `mapstructure:"reclaim_every"`
}

type MonitorConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type HealthConfig struct {
	Window          time.Duration `mapstructure:"window"`
	ErrorCountMax   int           `mapstructure:"error_count_max"`
	FailedChecksMax int           `mapstructure:"failed_checks_max"`
	OpenAlertsMax   int           `mapstructure:"open_alerts_max"`
}

// SourcesConfig maps a webhook source name (e.g. "stripe") to its shared
// signing secret. Sources without a secret can never produce a valid signature.
type SourcesConfig struct {
	Secrets map[string]string `mapstructure:"secrets"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.path", "data/healthdeck.db")
	viper.SetDefault("database.max_connections", 10)
	viper.SetDefault("api.default_limit", 50)
	viper.SetDefault("api.max_limit", 500)
	viper.SetDefault("ingest.worker_count", 4)
	viper.SetDefault("ingest.settle_delay", time.Second)
	viper.SetDefault("ingest.max_attempts", 3)
	viper.SetDefault("ingest.retry_backoff", 2*time.Second)
	viper.SetDefault("ingest.reclaim_every", time.Minute)
	viper.SetDefault("monitor.interval", 5*time.Minute)
	viper.SetDefault("monitor.timeout", 30*time.Second)
	viper.SetDefault("health.window", 24*time.Hour)
	viper.SetDefault("health.error_count_max", 3)
	viper.SetDefault("health.failed_checks_max", 5)
	viper.SetDefault("health.open_alerts_max", 3)
	viper.SetDefault("logging.level", "info")
}
