package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env    string
	DB     DB
	Server Server
	Logger Logger
}

type DB struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type Server struct {
	RunAddress string `env:"RUN_ADDRESS"`
}

type Logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// MustLoad loads the server configuration from the environment.
func MustLoad() *Config {
	if err := godotenv.Load(envPath); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}

	viper.AutomaticEnv()
	viper.SetDefault("RUN_ADDRESS", "localhost:8080")
	viper.SetDefault("APP_ENV", EnvLocal)
	viper.SetDefault("MIGRATIONS_PATH", "migrations")
	viper.SetDefault("LOG_LEVEL", "info")

	return &Config{
		Env: viper.GetString("APP_ENV"),
		DB: DB{
			DatabaseURI: viper.GetString("DATABASE_URI"),
			Migrations:  viper.GetString("MIGRATIONS_PATH"),
		},
		Server: Server{RunAddress: viper.GetString("RUN_ADDRESS")},
		Logger: Logger{LogLevel: viper.GetString("LOG_LEVEL")},
	}
}
