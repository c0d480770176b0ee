package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// LocalDevOrigin is always part of the CORS allow-list.
const LocalDevOrigin = "http://localhost:5173"

// DevJWTSecret is used when JWT_SECRET is not set. Never rely on it outside development.
const DevJWTSecret = "pos-dev-secret"

type Config struct {
	Port       string        `env:"PORT,        default=8000"`
	CORSOrigin string        `env:"CORS_ORIGIN"`
	JWTSecret  string        `env:"JWT_SECRET"`
	JWTTTL     time.Duration `env:"JWT_TTL,     default=24h"`
	GinMode    string        `env:"GIN_MODE,    default=debug"`
	LogLevel   string        `env:"LOG_LEVEL,   default=info"`
	RateLimit  int           `env:"RATE_LIMIT,  default=50"`

	DB      DBConfig
	Redis   RedisConfig
	Session SessionConfig
	Admin   AdminConfig
}

type DBConfig struct {
	Driver string `env:"DB_DRIVER, default=sqlite"`
	DSN    string `env:"DB_DSN,    default=pos.db"`
}

// RedisConfig is optional. An empty Addr keeps the token blacklist in memory.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

type SessionConfig struct {
	// Source selects how a newly mounted client learns its session: "token" reads the
	// accessToken cookie, "mock" resolves to a fixed demo manager after FetchDelay.
	Source      string        `env:"SESSION_SOURCE,       default=token"`
	FetchDelay  time.Duration `env:"SESSION_FETCH_DELAY,  default=1s"`
	LoaderGrace time.Duration `env:"SESSION_LOADER_GRACE, default=150ms"`
	MaxIdle     time.Duration `env:"SESSION_MAX_IDLE,     default=12h"`
}

type AdminConfig struct {
	Name     string `env:"ADMIN_NAME,     default=Admin"`
	Email    string `env:"ADMIN_EMAIL,    default=admin@pos.local"`
	Password string `env:"ADMIN_PASSWORD"`
}

// Load reads .env (when present) and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom decodes configuration from an arbitrary lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: process env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DB.Driver)
	}
	switch c.Session.Source {
	case "token", "mock":
	default:
		return fmt.Errorf("config: unsupported SESSION_SOURCE %q", c.Session.Source)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: unsupported GIN_MODE %q", c.GinMode)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("config: JWT_TTL must be positive")
	}
	return nil
}

// Secret returns the signing secret and whether the development fallback was used.
func (c *Config) Secret() (string, bool) {
	if c.JWTSecret == "" {
		return DevJWTSecret, true
	}
	return c.JWTSecret, false
}

// AllowedOrigins is the CORS allow-list: the local dev origin plus CORS_ORIGIN when set.
func (c *Config) AllowedOrigins() []string {
	origins := make([]string, 0, 2)
	for _, o := range []string{LocalDevOrigin, c.CORSOrigin} {
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
