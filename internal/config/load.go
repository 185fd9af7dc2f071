package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Default values applied before reading the environment or config file.
const (
	defaultPort                 = 8080
	defaultLogLevel             = "info"
	defaultSMTPPort             = 587
	defaultTokenLifetime        = 60
	defaultRefreshTokenLifetime = 7 * 24 * 60
)

// Load reads configuration from environment variables (prefix TSPL_) and an
// optional config.yaml in the working directory. Environment variables take
// precedence over file values. The result is validated before being returned.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", defaultPort)
	v.SetDefault("server.log_level", defaultLogLevel)
	v.SetDefault("smtp.port", defaultSMTPPort)
	v.SetDefault("auth.token_lifetime_minutes", defaultTokenLifetime)
	v.SetDefault("auth.refresh_token_lifetime_minutes", defaultRefreshTokenLifetime)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TSPL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Viper only unmarshals env-sourced values for keys it already knows
	// about, so bind every key explicitly.
	for _, key := range []string{
		"server.port", "server.log_level",
		"database.url",
		"auth.jwt_secret", "auth.token_lifetime_minutes", "auth.refresh_token_lifetime_minutes",
		"smtp.host", "smtp.port", "smtp.username", "smtp.password", "smtp.from",
		"payment.base_url", "payment.key_id", "payment.key_secret",
		"jobs.ingestion_queue_size",
		"jobs.mail_workers", "jobs.mail_queue_size",
		"jobs.bulk_mail_workers", "jobs.bulk_mail_queue_size",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; the environment can supply everything.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
