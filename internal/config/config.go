package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPAddr  string    `yaml:"http-addr" env:"HTTP_ADDR" env-default:":8080"`
	Storage   Storage   `yaml:"storage"`
	Redis     Redis     `yaml:"redis"`
	Telemetry Telemetry `yaml:"telemetry"`
	Game      Game      `yaml:"game"`
	JWT       JWT       `yaml:"jwt"`
}

type Storage struct {
	Driver     string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`
	SQLitePath string `yaml:"sqlite-path" env:"SQLITE_PATH" env-default:"./tictactoe.db"`
}

// Redis is optional unless Storage.Driver is "redis"; an empty Addr disables it.
type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR" env-default:""`
}

type Telemetry struct {
	Enabled      bool   `yaml:"enabled" env:"OTEL_ENABLED" env-default:"false"`
	Endpoint     string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"otel-collector:4317"`
	ServiceName  string `yaml:"service-name" env:"OTEL_SERVICE_NAME" env-default:"tic-tac-toe"`
	StdoutTraces bool   `yaml:"stdout-traces" env:"OTEL_STDOUT_TRACES" env-default:"false"`
}

type Game struct {
	OpponentDelay  time.Duration `yaml:"opponent-delay" env:"GAME_OPPONENT_DELAY" env-default:"300ms"`
	OpeningDelay   time.Duration `yaml:"opening-delay" env:"GAME_OPENING_DELAY" env-default:"500ms"`
	ReplayInterval time.Duration `yaml:"replay-interval" env:"GAME_REPLAY_INTERVAL" env-default:"500ms"`
	SaveTimeout    time.Duration `yaml:"save-timeout" env:"GAME_SAVE_TIMEOUT" env-default:"5s"`
	IdleTimeout    time.Duration `yaml:"idle-timeout" env:"GAME_IDLE_TIMEOUT" env-default:"30m"`
}

type JWT struct {
	Secret string        `yaml:"secret" env:"JWT_SECRET" env-default:"change-me"`
	TTL    time.Duration `yaml:"ttl" env:"JWT_TTL" env-default:"72h"`
}

// Load reads the optional .env file, then the YAML file at path (if it exists),
// then the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("unable to load .env file: %w", err)
	}

	config := &Config{}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, config); err != nil {
				return nil, fmt.Errorf("unable to load config file: %w", err)
			}
			return config, config.validate()
		}
	}

	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("unable to read environment: %w", err)
	}
	return config, config.validate()
}

// MustLoad - load all configurations, panicking on failure.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}
	return config
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageSQLite:
	case StorageRedis:
		if c.Redis.Addr == "" {
			return errors.New("storage driver redis requires redis.addr")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}
