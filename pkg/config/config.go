// Package config loads lotscraper settings from a dotenv file and the
// environment, and the dealer list from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/WessleyAI/lotscraper/engine/dealer"
	"github.com/WessleyAI/lotscraper/pkg/fetch"
)

// Config holds every setting of a run.
type Config struct {
	MongoURL string `mapstructure:"mongo_url"`
	DBName   string `mapstructure:"db_name"`

	MaxVehiclesPerDealer int           `mapstructure:"max_vehicles_per_dealer"`
	ListingTimeout       time.Duration `mapstructure:"listing_timeout"`
	DetailTimeout        time.Duration `mapstructure:"detail_timeout"`
	ImageTimeout         time.Duration `mapstructure:"image_timeout"`
	DetailDelay          time.Duration `mapstructure:"detail_delay"`
	MinImageBytes        int           `mapstructure:"min_image_bytes"`
	ImageCacheBytes      int64         `mapstructure:"image_cache_bytes"`
	UserAgent            string        `mapstructure:"user_agent"`

	NATSURL     string `mapstructure:"nats_url"`
	NATSSubject string `mapstructure:"nats_subject"`

	MetricsPort int    `mapstructure:"metrics_port"`
	LogLevel    string `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mongo_url", "mongodb://localhost:27017")
	v.SetDefault("db_name", "test_database")
	v.SetDefault("max_vehicles_per_dealer", 30)
	v.SetDefault("listing_timeout", 15*time.Second)
	v.SetDefault("detail_timeout", 10*time.Second)
	v.SetDefault("image_timeout", 8*time.Second)
	v.SetDefault("detail_delay", time.Second)
	v.SetDefault("min_image_bytes", 50_000)
	v.SetDefault("image_cache_bytes", 256<<20)
	v.SetDefault("user_agent", fetch.DefaultUserAgent)
	v.SetDefault("nats_url", "")
	v.SetDefault("nats_subject", "lotscraper.vehicles.saved")
	v.SetDefault("metrics_port", 0)
	v.SetDefault("log_level", "info")
}

// Load reads envFile (if it exists) and then the process environment, which
// takes precedence. An empty envFile skips the file.
func Load(envFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return c, c.Validate()
}

// Validate rejects settings no run can use.
func (c Config) Validate() error {
	var errs []error
	if c.MongoURL == "" {
		errs = append(errs, errors.New("MONGO_URL is empty"))
	}
	if c.DBName == "" {
		errs = append(errs, errors.New("DB_NAME is empty"))
	}
	if c.MaxVehiclesPerDealer < 0 {
		errs = append(errs, fmt.Errorf("MAX_VEHICLES_PER_DEALER must be >= 0, got %d", c.MaxVehiclesPerDealer))
	}
	if c.MinImageBytes <= 0 {
		errs = append(errs, fmt.Errorf("MIN_IMAGE_BYTES must be > 0, got %d", c.MinImageBytes))
	}
	if c.DetailDelay < 0 {
		errs = append(errs, fmt.Errorf("DETAIL_DELAY must be >= 0, got %s", c.DetailDelay))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel returns LogLevel as a slog.Level, defaulting to Info.
func (c Config) SlogLevel() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return l, nil
}

// LoadDealers reads the dealers list from a YAML file of the form
//
//	dealers:
//	  - name: Motor Max
//	    url: https://www.motormaxga.com
//	    inventory_path: /vehicles
//	    city: Atlanta
//	    state: GA
//
// An empty path returns dealer.Defaults().
func LoadDealers(path string) ([]dealer.Descriptor, error) {
	if path == "" {
		return dealer.Defaults(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read dealers %s: %w", path, err)
	}

	var ds []dealer.Descriptor
	if err := v.UnmarshalKey("dealers", &ds); err != nil {
		return nil, fmt.Errorf("decode dealers %s: %w", path, err)
	}
	if len(ds) == 0 {
		return nil, fmt.Errorf("%s: no dealers listed", path)
	}
	for _, d := range ds {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return ds, nil
}
