package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"equipment-manager/core/database"
	"equipment-manager/core/logger"
	"equipment-manager/core/server"
	"equipment-manager/core/storage"
	"equipment-manager/core/store"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application, one section per
// package that needs settings.
type Config struct {
	// Server holds configuration for the HTTP server and token auth.
	Server server.Config `mapstructure:"server"`
	// Store holds configuration for the JSON document store.
	Store store.Config `mapstructure:"store"`
	// Storage holds configuration for the image bucket.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the optional audit database.
	Database database.Config `mapstructure:"database"`
}

// LoadConfig reads dir/.env when present, then the environment, on top of
// the defaults declared in `default` struct tags. Keys map to variables by
// section: store.path is STORE_PATH.
func LoadConfig(dir string) (*Config, error) {
	// A missing .env is normal in production.
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()
	registerDefaults(v, reflect.TypeOf(Config{}), "")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Store.Path) == "" {
		errs = append(errs, errors.New("store.path must not be empty"))
	}
	if _, err := strconv.ParseUint(c.Server.Port, 10, 16); err != nil {
		errs = append(errs, fmt.Errorf("server.port %q is not a port number", c.Server.Port))
	}
	if c.Server.TokenTTL <= 0 {
		errs = append(errs, errors.New("server.token_ttl must be positive"))
	}
	if !c.Database.IsValidDriver() {
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}
	if f := c.Log.Format; f != "json" && f != "console" {
		errs = append(errs, fmt.Errorf("log.format %q must be json or console", f))
	}
	return errors.Join(errs...)
}

// registerDefaults walks the struct and registers every mapstructure key
// with its `default` tag. Keys without a default are registered empty so
// AutomaticEnv can still find them.
func registerDefaults(v *viper.Viper, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct && field.Type.PkgPath() != "time" {
			registerDefaults(v, field.Type, key)
			continue
		}
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
