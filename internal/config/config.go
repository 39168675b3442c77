package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	Server struct {
		Port        string   `yaml:"port"`
		Mode        string   `yaml:"mode"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		Path   string `yaml:"path"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Log struct {
		Mode       string `yaml:"mode"`
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
	Simulation struct {
		AuthLatency       time.Duration `yaml:"auth_latency"`
		DetectionLatency  time.Duration `yaml:"detection_latency"`
		CameraAllowed     bool          `yaml:"camera_allowed"`
		MicrophoneAllowed bool          `yaml:"microphone_allowed"`
		PrefersDark       bool          `yaml:"prefers_dark"`
	} `yaml:"simulation"`
	Schedule struct {
		Reminder string `yaml:"reminder"`
		Quote    string `yaml:"quote"`
		Summary  string `yaml:"summary"`
	} `yaml:"schedule"`
}

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.Server.Mode = gin.DebugMode
	cfg.Server.CORSOrigins = []string{"*"}
	cfg.Database.Driver = DriverSQLite
	cfg.Database.Path = "/data/emoheal.db"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.Prefix = "emoheal:"
	cfg.Log.Mode = "development"
	cfg.Log.Level = "info"
	cfg.Log.MaxSizeMB = 100
	cfg.Log.MaxBackups = 3
	cfg.Log.MaxAgeDays = 30
	cfg.Simulation.AuthLatency = time.Second
	cfg.Simulation.DetectionLatency = 2 * time.Second
	cfg.Simulation.CameraAllowed = true
	cfg.Simulation.MicrophoneAllowed = true
	cfg.Schedule.Reminder = "0 18 * * *"
	cfg.Schedule.Quote = "0 8 * * *"
	cfg.Schedule.Summary = "55 21 * * *"
	return cfg
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	paths := []string{"etc/emoheal.yaml", "/etc/emoheal/config.yaml"}
	if path != "" {
		paths = []string{path}
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			if path != "" {
				return nil, fmt.Errorf("read config %s: %w", p, err)
			}
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", p, err)
		}
		break
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Telegram.Token = getEnv("TG_TOKEN", c.Telegram.Token)
	if v := getEnv("TG_CHAT_ID", ""); v != "" {
		chatID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TG_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = chatID
	}

	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Mode = getEnv("GIN_MODE", c.Server.Mode)
	if v := getEnv("CORS_ORIGINS", ""); v != "" {
		c.Server.CORSOrigins = strings.Split(v, ",")
	}

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.Path = getEnv("DB_PATH", c.Database.Path)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.Prefix = getEnv("REDIS_PREFIX", c.Redis.Prefix)
	if err := envInt(&c.Redis.DB, "REDIS_DB"); err != nil {
		return err
	}

	c.Log.Mode = getEnv("LOG_MODE", c.Log.Mode)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnv("LOG_FILE", c.Log.File)

	if err := envDuration(&c.Simulation.AuthLatency, "AUTH_LATENCY"); err != nil {
		return err
	}
	if err := envDuration(&c.Simulation.DetectionLatency, "DETECTION_LATENCY"); err != nil {
		return err
	}
	if err := envBool(&c.Simulation.CameraAllowed, "CAMERA_ALLOWED"); err != nil {
		return err
	}
	if err := envBool(&c.Simulation.MicrophoneAllowed, "MICROPHONE_ALLOWED"); err != nil {
		return err
	}
	if err := envBool(&c.Simulation.PrefersDark, "PREFERS_DARK"); err != nil {
		return err
	}

	c.Schedule.Reminder = getEnv("REMINDER_CRON", c.Schedule.Reminder)
	c.Schedule.Quote = getEnv("QUOTE_CRON", c.Schedule.Quote)
	c.Schedule.Summary = getEnv("SUMMARY_CRON", c.Schedule.Summary)
	return nil
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			return errors.New("database path is required for sqlite driver")
		}
	case DriverRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return errors.New("redis addr is required for redis driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	switch c.Server.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("unknown server mode %q (want debug, release or test)", c.Server.Mode)
	}
	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		return errors.New("TG_CHAT_ID is required when TG_TOKEN is set")
	}
	if c.Simulation.AuthLatency < 0 || c.Simulation.DetectionLatency < 0 {
		return errors.New("simulated latencies must not be negative")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// TelegramEnabled reports whether the bot should be started.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.Token != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func envInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func envBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func envDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
