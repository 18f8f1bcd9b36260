package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	BackendFile     = "file"
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"

	defaultConfigPath = "./config/local.yaml"
)

type Config struct {
	Env         string   `yaml:"env" env:"ENV" env-default:"prod"`
	HTTPServer  `yaml:"http_server"`
	Storage     Storage  `yaml:"storage"`
	LegacyPath  string   `yaml:"legacy_path" env:"LEGACY_PATH"`
	ErrorLog    ErrorLog `yaml:"error_log"`
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:"," env-default:"http://localhost:5173"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout         time.Duration `yaml:"timeout"  env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"  env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

// Storage — где лежит образ базы. dsn нужен только для mysql и postgres.
type Storage struct {
	Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"file"`
	Dir     string `yaml:"dir" env:"STORAGE_DIR" env-default:"./data"`
	DSN     string `yaml:"dsn" env:"STORAGE_DSN"`
	DBName  string `yaml:"db_name" env-default:"ChequeosDB"`
}

type ErrorLog struct {
	Path       string `yaml:"path" env-default:"errors.log"`
	MaxSizeMB  int    `yaml:"max_size_mb" env-default:"10"`
	MaxBackups int    `yaml:"max_backups" env-default:"5"`
	MaxAgeDays int    `yaml:"max_age_days" env-default:"30"`
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendMemory:
	case BackendMySQL, BackendPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for backend %q", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustConfig() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("config: %s", err)
	}
	return cfg
}
