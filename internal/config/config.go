package config

// Config holds all application configuration, organized into logical groups.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	SMTP     SMTPConfig     `mapstructure:"smtp"     validate:"required"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// TokenLifetimeMinutes is the lifetime of access tokens in minutes.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"gte=0"`

	// RefreshTokenLifetimeMinutes is the lifetime of refresh tokens in minutes.
	RefreshTokenLifetimeMinutes int `mapstructure:"refresh_token_lifetime_minutes" validate:"gte=0"`
}

// SMTPConfig contains mail transport settings.
type SMTPConfig struct {
	Host     string `mapstructure:"host"     validate:"required"`
	Port     int    `mapstructure:"port"     validate:"required,gt=0,lt=65536"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"     validate:"required,email"`
}

// PaymentConfig contains payment gateway settings. Key credentials may also
// be supplied through the general settings record; these act as defaults.
type PaymentConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	KeyID     string `mapstructure:"key_id"`
	KeySecret string `mapstructure:"key_secret"`
}

// JobsConfig contains background job pool settings. Zero values fall back to
// the documented defaults: one ingestion worker, ten transactional mail
// workers, three bulk mail workers.
type JobsConfig struct {
	IngestionQueueSize int `mapstructure:"ingestion_queue_size" validate:"gte=0"`
	MailWorkers        int `mapstructure:"mail_workers"         validate:"gte=0"`
	MailQueueSize      int `mapstructure:"mail_queue_size"      validate:"gte=0"`
	BulkMailWorkers    int `mapstructure:"bulk_mail_workers"    validate:"gte=0"`
	BulkMailQueueSize  int `mapstructure:"bulk_mail_queue_size" validate:"gte=0"`
}
