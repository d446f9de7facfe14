package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultLogLevel      = "info"
	defaultEnv           = "local"
	defaultConfigDir     = ".citizenconnect"
)

type Config struct {
	Env             string `mapstructure:"app_env"`
	ServerAddress   string `mapstructure:"server_address"`
	LogLevel        string `mapstructure:"log_level"`
	ConfigDir       string `mapstructure:"config_dir"`
	QueuePath       string `mapstructure:"queue_path"`
	SyncInterval    int    `mapstructure:"sync_interval_seconds"`
	SyncParallelism int    `mapstructure:"sync_parallelism"`
	MaxAttempts     int    `mapstructure:"sync_max_attempts"`
	RetryBaseMS     int    `mapstructure:"sync_retry_base_ms"`
	RetryMaxMS      int    `mapstructure:"sync_retry_max_ms"`
	SubmitTimeout   int    `mapstructure:"submit_timeout_seconds"`
	ProbeInterval   int    `mapstructure:"probe_interval_seconds"`
	EnableTLS       bool   `mapstructure:"enable_tls"`
}

// MustLoad loads the client configuration from the environment, panicking on
// invalid values so misconfiguration is caught at startup.
func MustLoad() *Config {
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}

	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("failed to load .env file: %v\n", err)
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	viper.SetDefault("LOG_LEVEL", defaultLogLevel)
	viper.SetDefault("CONFIG_DIR", defaultConfigDir)
	viper.SetDefault("SYNC_INTERVAL_SECONDS", 30)
	viper.SetDefault("SYNC_PARALLELISM", 1)
	viper.SetDefault("SYNC_MAX_ATTEMPTS", 5)
	viper.SetDefault("SYNC_RETRY_BASE_MS", 2000)
	viper.SetDefault("SYNC_RETRY_MAX_MS", 300000)
	viper.SetDefault("SUBMIT_TIMEOUT_SECONDS", 30)
	viper.SetDefault("PROBE_INTERVAL_SECONDS", 10)
	viper.SetDefault("ENABLE_TLS", false)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		fmt.Printf("failed to create config directory: %v\n", err)
	}

	config := &Config{
		Env:             viper.GetString("APP_ENV"),
		ServerAddress:   viper.GetString("SERVER_ADDRESS"),
		LogLevel:        viper.GetString("LOG_LEVEL"),
		ConfigDir:       configDir,
		QueuePath:       filepath.Join(configDir, "queue.db"),
		SyncInterval:    viper.GetInt("SYNC_INTERVAL_SECONDS"),
		SyncParallelism: viper.GetInt("SYNC_PARALLELISM"),
		MaxAttempts:     viper.GetInt("SYNC_MAX_ATTEMPTS"),
		RetryBaseMS:     viper.GetInt("SYNC_RETRY_BASE_MS"),
		RetryMaxMS:      viper.GetInt("SYNC_RETRY_MAX_MS"),
		SubmitTimeout:   viper.GetInt("SUBMIT_TIMEOUT_SECONDS"),
		ProbeInterval:   viper.GetInt("PROBE_INTERVAL_SECONDS"),
		EnableTLS:       viper.GetBool("ENABLE_TLS"),
	}

	if err := config.validate(); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}

	return config
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address must not be empty")
	}
	if c.SyncParallelism < 1 {
		return fmt.Errorf("sync_parallelism must be at least 1")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("sync_max_attempts must be at least 1")
	}
	return nil
}

// IsProd reports whether the client runs in the prod environment.
func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

// IsLocal reports whether the client runs in the local environment.
func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == ""
}
