package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds the settings of the REST API server.
type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	// Storage selects the persistence backend: "mongo" or "memory".
	Storage string `env:"STORAGE, default=mongo"`

	ActivityWorkers int `env:"ACTIVITY_WORKERS, default=8"`

	Mongo MongoConfig
	Redis RedisConfig
	Admin AdminConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=safecity"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// AdminConfig describes the account bootstrapped at start-up. Leaving the
// email empty disables the bootstrap.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
	Name     string `env:"ADMIN_NAME, default=Administrador"`
}

// InMemory reports whether the server keeps its data in process memory.
func (c *Config) InMemory() bool {
	return c.Storage == "memory"
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ClientConfig holds the settings of the dashboard client.
type ClientConfig struct {
	APIURL          string        `env:"SAFECITY_API_URL, default=http://localhost:8080/api/v1"`
	CredentialsFile string        `env:"SAFECITY_CREDENTIALS_FILE"`
	Lang            string        `env:"SAFECITY_LANG, default=es"`
	HTTPTimeout     time.Duration `env:"SAFECITY_HTTP_TIMEOUT, default=30s"`
	LogLevel        string        `env:"LOG_LEVEL, default=warn"`
}

// Load reads the server configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// LoadClient reads the dashboard configuration from the given lookuper.
// Pass nil to read the process environment.
func LoadClient(ctx context.Context, l envconfig.Lookuper) (*ClientConfig, error) {
	if l == nil {
		l = envconfig.OsLookuper()
	}
	var cfg ClientConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
