package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `env:"ENV" env-required:"true"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info" env-description:"logging level, debug, info, etc."`
	HttpServer HttpServer
	Database   Database
	Limiter    Limiter
	Auth       AuthConfig
	SMTP       SMTPConfig
	Email      EmailConfig
	Cache      Cache
}

type HttpServer struct {
	Port           string        `env:"HTTP_PORT" env-default:"8080"`
	Timeout        time.Duration `env:"HTTP_TIMEOUT" env-default:"4s"`
	IdleTimeout    time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	SwaggerEnabled bool          `env:"HTTP_SWAGGER_ENABLED" env-default:"false"`
	CORSOrigins    []string      `env:"HTTP_CORS_ORIGINS" env-default:"http://localhost:3000"`
}

type Database struct {
	Net                string        `env:"DB_NET" env-default:"tcp"`
	Server             string        `env:"DB_SERVER" env-required:"true"`
	DBName             string        `env:"DB_NAME" env-required:"true"`
	User               string        `env:"DB_USER" env-required:"true"`
	Password           string        `env:"DB_PASSWORD" env-required:"true"`
	TimeZone           string        `env:"DB_TIMEZONE"`
	Timeout            time.Duration `env:"DB_TIMEOUT" env-default:"2s"`
	MaxIdleConnections int           `env:"DB_MAX_IDLE_CONNECTIONS" env-default:"40"`
	MaxOpenConnections int           `env:"DB_MAX_OPEN_CONNECTIONS" env-default:"40"`
}

type Limiter struct {
	RPS   int           `env:"LIMITER_RPS" env-default:"10"`
	Burst int           `env:"LIMITER_BURST" env-default:"20"`
	TTL   time.Duration `env:"LIMITER_TTL" env-default:"10m"`
}

type AuthConfig struct {
	JWT     JWTConfig
	Refresh RefreshConfig
}

type JWTConfig struct {
	AccessTokenTTL time.Duration `env:"JWT_ACCESS_TOKEN_TTL" env-default:"15m"`
	SigningKey     string        `env:"JWT_SIGNING_KEY" env-required:"true"`
}

// RefreshConfig drives the refresh-session lifecycle: every rotation extends
// the session by SlidingWindowDays from the moment of rotation, never past
// AbsoluteMaxDays from the lineage origin.
type RefreshConfig struct {
	SlidingWindowDays int    `env:"AUTH_REFRESH_SLIDING_WINDOW_DAYS" env-default:"7"`
	AbsoluteMaxDays   int    `env:"AUTH_REFRESH_ABSOLUTE_MAX_DAYS" env-default:"30"`
	CookieName        string `env:"AUTH_REFRESH_COOKIE_NAME" env-default:"refresh_token"`
	CookiePath        string `env:"AUTH_REFRESH_COOKIE_PATH" env-default:"/api/auth"`
	CookieDomain      string `env:"AUTH_REFRESH_COOKIE_DOMAIN" env-default:""`
	CookieSecure      bool   `env:"AUTH_REFRESH_COOKIE_SECURE" env-default:"false"`
}

func (c RefreshConfig) SlidingWindow() time.Duration {
	return time.Duration(c.SlidingWindowDays) * 24 * time.Hour
}

func (c RefreshConfig) AbsoluteMax() time.Duration {
	return time.Duration(c.AbsoluteMaxDays) * 24 * time.Hour
}

type SMTPConfig struct {
	Host string `env:"SMTP_HOST" env-default:""`
	Port int    `env:"SMTP_PORT" env-default:"587"`
	From string `env:"SMTP_FROM" env-default:""`
	Pass string `env:"SMTP_PASS" env-default:""`
}

type EmailConfig struct {
	Enabled   bool `env:"EMAIL_ENABLED" env-default:"false"`
	Templates EmailTemplates
}

type EmailTemplates struct {
	Welcome string `env:"EMAIL_TEMPLATE_WELCOME" env-default:"welcome.html"`
}

type Cache struct {
	Type  string `env:"REDIS_TYPE" env-required:"true" env-description:"specifies provider, one of redis/redisCluster"`
	Redis struct {
		Address  string `env:"REDIS_ADDR" env-default:"" env-description:"redis host:port single instance"`
		Password string `env:"REDIS_PASSWORD" env-default:"" env-description:"redis password if exists"`
		PoolSize int    `env:"REDIS_POOL_SIZE" env-default:"70" env-description:"max tcp connections pool size"`
	}
	RedisCluster struct {
		Addresses []string `env:"REDIS_CLUSTER_ADDRS" env-default:"" env-description:"redis cluster nodes"`
		Password  string   `env:"REDIS_PASSWORD" env-default:"" env-description:"redis password if exists"`
		PoolSize  int      `env:"REDIS_POOL_SIZE" env-default:"70" env-description:"max tcp connections pool size"`
	}
}

func MustLoad() *Config {
	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("cannot read config from environment: %s", err)
	}

	if cfg.Auth.Refresh.SlidingWindowDays <= 0 {
		log.Fatalf("refresh sliding window must be positive, got %d days", cfg.Auth.Refresh.SlidingWindowDays)
	}
	if cfg.Auth.Refresh.AbsoluteMaxDays <= 0 {
		log.Fatalf("refresh absolute max must be positive, got %d days", cfg.Auth.Refresh.AbsoluteMaxDays)
	}
	if cfg.Auth.JWT.AccessTokenTTL <= 0 {
		log.Fatalf("access token ttl must be positive, got %s", cfg.Auth.JWT.AccessTokenTTL)
	}
	if cfg.Auth.Refresh.SlidingWindowDays > cfg.Auth.Refresh.AbsoluteMaxDays {
		// legal, but the absolute cap then dominates every renewal
		log.Printf("warning: refresh sliding window (%dd) exceeds absolute max (%dd)",
			cfg.Auth.Refresh.SlidingWindowDays, cfg.Auth.Refresh.AbsoluteMaxDays)
	}

	return &cfg
}
