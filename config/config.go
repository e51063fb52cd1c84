package config

import (
	"log"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	BackendURL           string `mapstructure:"BACKEND_URL"`
	SessionID            string `mapstructure:"SESSION_ID"`
	ChatTimeoutSeconds   int    `mapstructure:"CHAT_TIMEOUT_SECONDS"`
	HealthTimeoutSeconds int    `mapstructure:"HEALTH_TIMEOUT_SECONDS"`

	// DBPath locates the transcript database; empty disables persistence.
	DBPath string `mapstructure:"DB_PATH"`

	// The TUI owns the terminal, so logs go to a file.
	LogFile  string `mapstructure:"LOG_FILE"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
}

// Load reads configuration from an optional config.yaml plus environment
// variables, filling in defaults. A missing SESSION_ID gets a generated
// one; the backend keys conversation memory on it, so it stays fixed for
// the life of the process.
func Load() Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("BACKEND_URL", "https://ai-calendar-assistant-grdx.onrender.com")
	viper.SetDefault("SESSION_ID", "")
	viper.SetDefault("CHAT_TIMEOUT_SECONDS", 35)
	viper.SetDefault("HEALTH_TIMEOUT_SECONDS", 10)
	viper.SetDefault("DB_PATH", "calchat.db")
	viper.SetDefault("LOG_FILE", "calchat.log")
	viper.SetDefault("LOG_LEVEL", "info")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.SessionID == "" {
		cfg.SessionID = "tui-" + uuid.NewString()
	}
	return cfg
}
