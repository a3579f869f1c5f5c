package config

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"catalog-sync/core/database"
	"catalog-sync/core/logger"
	"catalog-sync/core/server"
	"catalog-sync/core/storage"
	"catalog-sync/feature/catalog"
	"catalog-sync/feature/pricing"
	"catalog-sync/feature/storefront"
	"catalog-sync/feature/supplier"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Pricing holds the tax and margin rates.
	Pricing pricing.Config `mapstructure:"pricing"`
	// Sync holds the write policy of a run.
	Sync catalog.Config `mapstructure:"sync"`
	// Source holds the supplier site and the categories to sync.
	Source SourceConfig `mapstructure:"source"`
	// Storefront holds the WooCommerce REST API credentials.
	Storefront storefront.Config `mapstructure:"storefront"`
	// Storage holds the object store for snapshots and reports.
	Storage storage.Config `mapstructure:"storage"`
	// Database holds the run history database.
	Database database.Config `mapstructure:"database"`
	// Server holds configuration for the HTTP status API.
	Server server.Config `mapstructure:"server"`
}

// SourceConfig is the supplier configuration plus the category list.
type SourceConfig struct {
	supplier.Config `mapstructure:",squash"`

	// Categories are category page URLs, as a JSON array or a comma separated list.
	Categories []string `mapstructure:"categories" default:""`
	// CategoriesFile is an optional TOML file with more category URLs.
	CategoriesFile string `mapstructure:"categories_file" default:""`
}

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// LoadConfig loads configuration from environment variables and .env file,
// then appends the categories of the categories file if one is set.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SOURCE_BASE_URL -> source.base_url)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		stringToListHook,
	)))
	if err != nil {
		return nil, err
	}

	if file := config.Source.CategoriesFile; file != "" {
		extra, err := LoadCategoriesFile(file)
		if err != nil {
			return nil, err
		}
		config.Source.Categories = append(config.Source.Categories, extra...)
	}
	config.Source.Categories = dedupe(config.Source.Categories)

	return &config, nil
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	var errs []error
	if _, err := pricing.NewFromConfig(c.Pricing); err != nil {
		errs = append(errs, fmt.Errorf("pricing: %w", err))
	}
	if err := c.Sync.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("sync: %w", err))
	}
	return errors.Join(errs...)
}

// ValidateForSync additionally checks what a sync run needs.
func (c *Config) ValidateForSync() error {
	errs := []error{c.Validate()}
	if len(c.Source.Categories) == 0 {
		errs = append(errs, errors.New("source: at least one category url is required"))
	}
	if c.Storefront.URL == "" {
		errs = append(errs, errors.New("storefront: url is required"))
	}
	return errors.Join(errs...)
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		if opts == "squash" {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), prefix)
			continue
		}

		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		// Nested sections recurse; values decoded from text (decimals) are leaves.
		if field.Type.Kind() == reflect.Struct && !reflect.PointerTo(field.Type).Implements(textUnmarshalerType) {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
