package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultDBPath   = "./dev.db"
	defaultPort     = "8080"
	defaultEnv      = "development"
	defaultTimezone = "Europe/London"
)

// Config holds application configuration sourced from a .env file and the environment.
type Config struct {
	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
	SessionSecret string `mapstructure:"SESSION_SECRET"`
	DBPath        string `mapstructure:"DB_PATH"`
	Port          string `mapstructure:"PORT"`
	Env           string `mapstructure:"ENV"`
	RatesFile     string `mapstructure:"RATES_FILE"`
	FareTimezone  string `mapstructure:"FARE_TIMEZONE"`
}

// Load reads .env from the working directory (if present) and the process
// environment, with the environment taking precedence.
func Load() (Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit dotenv path. A missing file is not an error.
func LoadFrom(envFile string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("DB_PATH", defaultDBPath)
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("ENV", defaultEnv)
	v.SetDefault("RATES_FILE", "")
	v.SetDefault("FARE_TIMEZONE", defaultTimezone)

	// Production injects real environment variables; the dotenv file is a
	// local development convenience.
	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.AdminEmail == "" {
		log.Print("warning: ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		log.Print("warning: ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		log.Print("warning: SESSION_SECRET is not set")
	}

	return cfg, nil
}

// IsDev reports whether the service runs in a development environment.
func (c Config) IsDev() bool {
	env := strings.ToLower(c.Env)
	return env == "" || env == "dev" || env == "development"
}

// Location resolves FareTimezone, the zone peak windows are evaluated in.
func (c Config) Location() (*time.Location, error) {
	if c.FareTimezone == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(c.FareTimezone)
	if err != nil {
		return nil, fmt.Errorf("load fare timezone %q: %w", c.FareTimezone, err)
	}
	return loc, nil
}
