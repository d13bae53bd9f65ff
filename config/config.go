// config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ViniZap4/stride-server/streak"
	"github.com/ViniZap4/stride-server/trash"
)

type Config struct {
	Port        string `yaml:"port"`
	Password    string `yaml:"password"`
	JWTSecret   string `yaml:"jwt_secret"`
	DataPath    string `yaml:"data"`
	DatabaseURL string `yaml:"database_url"`
	CORSOrigins string `yaml:"cors_origins"`

	Streak StreakConfig `yaml:"streak"`
	Trash  TrashConfig  `yaml:"trash"`
	Log    LogConfig    `yaml:"log"`
}

type StreakConfig struct {
	Policy   string `yaml:"policy"`
	Timezone string `yaml:"timezone"`
}

type TrashConfig struct {
	Retention time.Duration `yaml:"retention"`
	Sweep     time.Duration `yaml:"sweep"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

func Default() Config {
	return Config{
		Port:        "8080",
		Password:    "dev",
		DataPath:    "./data/stride.db",
		CORSOrigins: "*",
		Streak:      StreakConfig{Policy: string(streak.PolicyGap), Timezone: "Local"},
		Trash:       TrashConfig{Retention: trash.DefaultRetention, Sweep: trash.DefaultSweepInterval},
		Log:         LogConfig{Level: "info"},
	}
}

// Load layers defaults, a .env file, the YAML file at path (or
// $STRIDE_CONFIG) and STRIDE_* environment variables, in that order.
// Missing files are skipped.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv("STRIDE_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"STRIDE_PORT":          &c.Port,
		"STRIDE_PASSWORD":      &c.Password,
		"STRIDE_JWT_SECRET":    &c.JWTSecret,
		"STRIDE_DATA":          &c.DataPath,
		"STRIDE_DATABASE_URL":  &c.DatabaseURL,
		"STRIDE_CORS_ORIGINS":  &c.CORSOrigins,
		"STRIDE_STREAK_POLICY": &c.Streak.Policy,
		"STRIDE_TIMEZONE":      &c.Streak.Timezone,
		"STRIDE_LOG_LEVEL":     &c.Log.Level,
	}
	for name, dst := range str {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	dur := map[string]*time.Duration{
		"STRIDE_TRASH_RETENTION": &c.Trash.Retention,
		"STRIDE_TRASH_SWEEP":     &c.Trash.Sweep,
	}
	for name, dst := range dur {
		if v, ok := os.LookupEnv(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = d
		}
	}

	if v, ok := os.LookupEnv("STRIDE_LOG_PRETTY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("STRIDE_LOG_PRETTY: %w", err)
		}
		c.Log.Pretty = b
	}
	return nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.Password == "" {
		return errors.New("password is required")
	}
	if c.DataPath == "" {
		return errors.New("data path is required")
	}
	if _, err := streak.ParsePolicy(c.Streak.Policy); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Trash.Retention <= 0 || c.Trash.Sweep <= 0 {
		return errors.New("trash retention and sweep interval must be positive")
	}
	return nil
}

func (c Config) Location() (*time.Location, error) {
	if c.Streak.Timezone == "" || c.Streak.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Streak.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Streak.Timezone, err)
	}
	return loc, nil
}

// Tracker builds the streak tracker described by the config. Validate must
// have succeeded.
func (c Config) Tracker() streak.Tracker {
	policy, _ := streak.ParsePolicy(c.Streak.Policy)
	loc, _ := c.Location()
	return streak.Tracker{Policy: policy, Location: loc}
}

// Secret returns the JWT signing key, falling back to the password when no
// dedicated secret is configured.
func (c Config) Secret() string {
	if c.JWTSecret != "" {
		return c.JWTSecret
	}
	return c.Password
}
