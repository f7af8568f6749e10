package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendFile     = "file"
	BackendS3       = "s3"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

const defaultLeagueKey = "data/db.json"

// Config holds every setting of the server and the CLI tools. The YAML file
// layout mirrors the struct; environment variables take precedence.
type Config struct {
	ServerPort     int      `yaml:"server_port"`
	LogLevel       string   `yaml:"log_level"`
	CORSOrigins    []string `yaml:"cors_allowed_origins"`
	StorageBackend string   `yaml:"storage_backend"`
	LeagueKey      string   `yaml:"league_key"`

	File     FileConfig     `yaml:"file"`
	S3       S3Config       `yaml:"s3"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type FileConfig struct {
	DataDir string `yaml:"data_dir"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccountID       string `yaml:"r2_account_id"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type PostgresConfig struct {
	DatabaseURL string `yaml:"database_url"`
}

func defaults() *Config {
	return &Config{
		ServerPort:     8080,
		LogLevel:       "info",
		CORSOrigins:    []string{"*"},
		StorageBackend: BackendFile,
		LeagueKey:      defaultLeagueKey,
		File:           FileConfig{DataDir: "."},
		S3:             S3Config{Region: "us-east-1"},
		Redis:          RedisConfig{Addr: "localhost:6379"},
	}
}

// Load builds the configuration from defaults, the optional YAML file named by
// CONFIG_FILE and the environment, in that order. A .env file is loaded into
// the environment first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
		}
		c.ServerPort = port
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB environment variable: %w", err)
		}
		c.Redis.DB = db
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}

	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.StorageBackend, "STORAGE_BACKEND")
	setString(&c.LeagueKey, "LEAGUE_KEY")
	setString(&c.File.DataDir, "DATA_DIR")
	setString(&c.S3.Bucket, "STORAGE_JSONSTORAGE_BUCKET")
	setString(&c.S3.Bucket, "S3_BUCKET")
	setString(&c.S3.Region, "AWS_REGION")
	setString(&c.S3.Endpoint, "S3_ENDPOINT")
	setString(&c.S3.AccountID, "R2_ACCOUNT_ID")
	setString(&c.S3.AccessKeyID, "S3_ACCESS_KEY_ID")
	setString(&c.S3.SecretAccessKey, "S3_SECRET_ACCESS_KEY")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Postgres.DatabaseURL, "DATABASE_URL")

	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	return nil
}

func (c *Config) Validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if strings.TrimSpace(c.LeagueKey) == "" {
		return errors.New("LEAGUE_KEY must not be empty")
	}
	if len(c.CORSOrigins) == 0 {
		return errors.New("CORS_ALLOWED_ORIGINS must list at least one origin")
	}

	switch c.StorageBackend {
	case BackendFile:
		if c.File.DataDir == "" {
			return errors.New("DATA_DIR is required for the file storage backend")
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			return errors.New("S3_BUCKET is required for the s3 storage backend")
		}
		if (c.S3.AccessKeyID == "") != (c.S3.SecretAccessKey == "") {
			return errors.New("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR is required for the redis storage backend")
		}
	case BackendPostgres:
		if c.Postgres.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (want file, s3, redis or postgres)", c.StorageBackend)
	}

	return nil
}

func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
