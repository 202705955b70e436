package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/adanyl0v/go-todo-tracker/internal/services"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMongoDB  = "mongodb"
	StorageDriverRedis    = "redis"
	StorageDriverMemory   = "memory"
)

type Config struct {
	Env           string `env:"ENV" env-required:"true"`
	StorageDriver string `env:"STORAGE_DRIVER" env-default:"postgres"`
	HTTP          HTTPConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Postgres      PostgresConfig
	MongoDB       MongoDBConfig
	Redis         RedisConfig
}

type HTTPConfig struct {
	Host               string        `env:"HTTP_HOST" env-default:""`
	Port               string        `env:"HTTP_PORT,PORT" env-default:"3001"`
	ShutdownTimeout    time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3000" env-separator:","`
}

type JWTConfig struct {
	SigningKey string        `env:"JWT_SECRET" env-required:"true"`
	Issuer     string        `env:"JWT_ISSUER" env-default:"go-todo-tracker"`
	TokenTTL   time.Duration `env:"JWT_TOKEN_TTL" env-default:"1h"`
}

type PasswordConfig struct {
	HashAlgorithm string `env:"PASSWORD_HASH_ALGORITHM" env-default:"bcrypt"`
	BcryptCost    int    `env:"PASSWORD_BCRYPT_COST" env-default:"10"`
}

type PostgresConfig struct {
	Host           string        `env:"POSTGRES_HOST" env-default:"localhost"`
	Port           int           `env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `env:"POSTGRES_USERNAME"`
	Password       string        `env:"POSTGRES_PASSWORD"`
	Database       string        `env:"POSTGRES_DATABASE"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
	Migrate        bool          `env:"POSTGRES_MIGRATE" env-default:"true"`
}

// URL returns the postgres:// connection string.
func (c PostgresConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

type MongoDBConfig struct {
	URI            string        `env:"MONGODB_URI" env-default:"mongodb://localhost:27017"`
	Username       string        `env:"MONGO_USER"`
	Password       string        `env:"MONGO_PASSWORD"`
	Database       string        `env:"MONGODB_DATABASE" env-default:"todo"`
	ConnectTimeout time.Duration `env:"MONGODB_CONNECT_TIMEOUT" env-default:"10s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// Validate reports settings that parse but cannot be used.
func (c *Config) Validate() error {
	var errs []error

	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		errs = append(errs, fmt.Errorf("unknown env: %q", c.Env))
	}

	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.Postgres.Username == "" || c.Postgres.Database == "" {
			errs = append(errs, errors.New("postgres storage requires POSTGRES_USERNAME and POSTGRES_DATABASE"))
		}
	case StorageDriverMongoDB, StorageDriverRedis, StorageDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver: %q", c.StorageDriver))
	}

	switch c.Password.HashAlgorithm {
	case services.HashAlgorithmBcrypt, services.HashAlgorithmArgon2id:
	default:
		errs = append(errs, fmt.Errorf("unknown password hash algorithm: %q", c.Password.HashAlgorithm))
	}

	if c.JWT.SigningKey == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.JWT.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("jwt token ttl must be positive, got %s", c.JWT.TokenTTL))
	}

	return errors.Join(errs...)
}
