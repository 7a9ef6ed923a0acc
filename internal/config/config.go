package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Email     EmailConfig     `mapstructure:"email"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Sweeper   SweeperConfig   `mapstructure:"sweeper"`
	Avatar    AvatarConfig    `mapstructure:"avatar"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BCryptCost           int    `mapstructure:"bcrypt_cost"            validate:"required,gte=4,lte=31"`
}

// EmailConfig configures account notification emails.
// An empty SendGridAPIKey selects the log-only notifier.
type EmailConfig struct {
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	FromAddress    string `mapstructure:"from_address"     validate:"required,email"`
	FromName       string `mapstructure:"from_name"        validate:"required"`
}

// RedisConfig configures the shared rate limiter backend.
// An empty Addr selects the in-process limiter.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"       validate:"gte=0"`
}

// RateLimitConfig bounds unauthenticated account endpoints per client IP.
type RateLimitConfig struct {
	Requests      int `mapstructure:"requests"       validate:"required,gt=0"`
	WindowSeconds int `mapstructure:"window_seconds" validate:"required,gt=0"`
}

// NotifyConfig sizes the background queue used for fire-and-forget emails.
type NotifyConfig struct {
	QueueSize   int `mapstructure:"queue_size"   validate:"required,gt=0"`
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`
}

// SweeperConfig schedules removal of expired session tokens.
type SweeperConfig struct {
	Schedule string `mapstructure:"schedule" validate:"required"`
}

// AvatarConfig bounds avatar uploads and the stored image size.
type AvatarConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes" validate:"required,gt=0"`
	Size     int   `mapstructure:"size"      validate:"required,gt=0"`
}
