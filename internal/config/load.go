package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "TASKMGR"

// Load configuration from environment variables and optionally config files.
// A .env file in the working directory is loaded first if present.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("auth.token_lifetime_minutes", 7*24*60)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("email.from_address", "noreply@taskmanager.local")
	v.SetDefault("email.from_name", "Task Manager")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ratelimit.requests", 10)
	v.SetDefault("ratelimit.window_seconds", 60)
	v.SetDefault("notify.queue_size", 100)
	v.SetDefault("notify.worker_count", 2)
	v.SetDefault("sweeper.schedule", "@every 1h")
	v.SetDefault("avatar.max_bytes", 1_000_000)
	v.SetDefault("avatar.size", 250)
}

// bindEnvs registers keys that have no default so AutomaticEnv picks them up
// during Unmarshal.
func bindEnvs(v *viper.Viper) {
	for _, key := range []string{
		"database.url",
		"auth.jwt_secret",
		"email.sendgrid_api_key",
		"redis.addr",
		"redis.password",
	} {
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(key)
	}
}
