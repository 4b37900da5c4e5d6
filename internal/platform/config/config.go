package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"site-analytics-service/internal/platform/database"
)

type Config struct {
	Port string `mapstructure:"PORT"`

	DBDriver       string        `mapstructure:"DB_DRIVER"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	SQLitePath     string        `mapstructure:"SQLITE_PATH"`
	DBQueryTimeout time.Duration `mapstructure:"DB_QUERY_TIMEOUT"`

	LogLevel string `mapstructure:"LOG_LEVEL"`

	OwnerUsername string `mapstructure:"OWNER_DASH_USERNAME"`
	OwnerPassword string `mapstructure:"OWNER_DASH_PASSWORD"`

	TimeZone        string        `mapstructure:"ANALYTICS_TIME_ZONE"`
	RecencyWindow   int           `mapstructure:"ANALYTICS_RECENCY_WINDOW"`
	ScrollSampleCap int           `mapstructure:"ANALYTICS_SCROLL_SAMPLE_CAP"`
	TopN            int           `mapstructure:"ANALYTICS_TOP_N"`
	RefreshInterval time.Duration `mapstructure:"DASHBOARD_REFRESH_INTERVAL"`

	location *time.Location
}

var defaults = map[string]any{
	"PORT":                        "8080",
	"DB_DRIVER":                   "",
	"DATABASE_URL":                "",
	"SQLITE_PATH":                 "analytics.db",
	"DB_QUERY_TIMEOUT":            "5s",
	"LOG_LEVEL":                   "info",
	"OWNER_DASH_USERNAME":         "owner",
	"OWNER_DASH_PASSWORD":         "",
	"ANALYTICS_TIME_ZONE":         "Europe/Bucharest",
	"ANALYTICS_RECENCY_WINDOW":    5000,
	"ANALYTICS_SCROLL_SAMPLE_CAP": 300,
	"ANALYTICS_TOP_N":             10,
	"DASHBOARD_REFRESH_INTERVAL":  "60s",
}

// LoadConfig reads .env from the working directory, if any, then the environment.
// A missing .env is fine; an unreadable one is an error.
func LoadConfig() (*Config, error) {
	return Load(".env")
}

func Load(envFile string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	if c.DBDriver == "" {
		c.DBDriver = database.DriverSQLite
		if c.DatabaseURL != "" {
			c.DBDriver = database.DriverPostgres
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

func (c *Config) validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}

	switch c.DBDriver {
	case database.DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case database.DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
		}
	case database.DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not one of postgres, sqlite, memory", c.DBDriver))
	}

	if c.OwnerUsername == "" || c.OwnerPassword == "" {
		errs = append(errs, errors.New("OWNER_DASH_USERNAME and OWNER_DASH_PASSWORD are required"))
	}

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		errs = append(errs, fmt.Errorf("ANALYTICS_TIME_ZONE: %w", err))
	}
	c.location = loc

	if c.RecencyWindow <= 0 {
		errs = append(errs, errors.New("ANALYTICS_RECENCY_WINDOW must be positive"))
	}
	if c.ScrollSampleCap <= 0 {
		errs = append(errs, errors.New("ANALYTICS_SCROLL_SAMPLE_CAP must be positive"))
	}
	if c.TopN <= 0 {
		errs = append(errs, errors.New("ANALYTICS_TOP_N must be positive"))
	}
	if c.RefreshInterval <= 0 {
		errs = append(errs, errors.New("DASHBOARD_REFRESH_INTERVAL must be positive"))
	}
	if c.DBQueryTimeout < 0 {
		errs = append(errs, errors.New("DB_QUERY_TIMEOUT must not be negative"))
	}

	return errors.Join(errs...)
}

// Location is the time zone used for calendar-day bucketing.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// DSN returns the connection string for the selected SQL driver.
func (c *Config) DSN() string {
	if c.DBDriver == database.DriverSQLite {
		return c.SQLitePath
	}
	return c.DatabaseURL
}
