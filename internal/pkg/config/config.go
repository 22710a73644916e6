package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	// PublicOrigin prefixes share links and public photo URLs.
	PublicOrigin string `env:"PUBLIC_ORIGIN, default=http://localhost:8080"`

	Mongo        MongoConfig
	Redis        RedisConfig
	Photos       PhotoConfig
	Confirmation ConfirmationConfig
	Admin        AdminConfig

	AuditWorkers int `env:"AUDIT_WORKERS, default=4"`
}

type MongoConfig struct {
	URI         string `env:"MONGO_URI,       default=mongodb://localhost:27017"`
	Database    string `env:"MONGO_DB,        default=porto_geoloc"`
	AppName     string `env:"MONGO_APP_NAME,  default=entregas-api"`
	MaxPoolSize uint64 `env:"MONGO_MAX_POOL,  default=50"`
}

type RedisConfig struct {
	Addr         string        `env:"REDIS_ADDR,          default=localhost:6379"`
	Password     string        `env:"REDIS_PASSWORD"`
	DB           int           `env:"REDIS_DB,            default=0"`
	PoolSize     int           `env:"REDIS_POOL_SIZE,     default=20"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT,  default=5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT,  default=2s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT, default=2s"`
}

// AdminConfig seeds the first admin account. Registration is admin-only, so
// without it nobody can create sellers on an empty database.
type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME, default=admin"`
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

// Enabled reports whether a bootstrap admin was configured.
func (a AdminConfig) Enabled() bool {
	return a.Email != ""
}

type PhotoConfig struct {
	// Backend selects where photos live: "gridfs" or "local".
	Backend  string `env:"PHOTO_BACKEND,   default=gridfs"`
	Bucket   string `env:"PHOTO_BUCKET,    default=entregas-fotos"`
	Dir      string `env:"PHOTO_DIR,       default=./data/storage"`
	MaxBytes int64  `env:"PHOTO_MAX_BYTES, default=10485760"`
}

type ConfirmationConfig struct {
	SessionTTL         time.Duration `env:"CONFIRM_SESSION_TTL, default=30m"`
	GeolocationTimeout time.Duration `env:"GEOLOCATION_TIMEOUT, default=20s"`
	SubmitLockTTL      time.Duration `env:"SUBMIT_LOCK_TTL,     default=1m"`
}

// IsDevelopment reports whether the service runs with ENV=development.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads a .env file when present, then environment variables.
// Variables already set in the environment win over the file.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Sprintf("config: failed to read .env: %v", err))
	}
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom resolves the configuration from an arbitrary lookuper and
// validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Photos.Backend {
	case "gridfs", "local":
	default:
		return fmt.Errorf("PHOTO_BACKEND must be gridfs or local, got %q", c.Photos.Backend)
	}
	if c.Photos.MaxBytes <= 0 {
		return fmt.Errorf("PHOTO_MAX_BYTES must be positive")
	}
	if c.Admin.Enabled() && len(c.Admin.Password) < 8 {
		return fmt.Errorf("ADMIN_PASSWORD must have at least 8 characters")
	}
	if !c.IsDevelopment() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required outside development")
	}
	c.PublicOrigin = strings.TrimRight(c.PublicOrigin, "/")
	return nil
}
