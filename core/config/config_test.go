package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.Pricing.TaxRate.Equal(decimal.RequireFromString("1.22")))
	assert.True(t, cfg.Pricing.MarginRate.Equal(decimal.RequireFromString("1.30")))
	assert.Equal(t, 10, cfg.Sync.StockIfAvailable)
	assert.Equal(t, 1, cfg.Sync.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Sync.CallTimeout)
	assert.Equal(t, "never", cfg.Sync.UpdateMedia)
	assert.True(t, cfg.Sync.CrossCategoryMatch)
	assert.Equal(t, "/login", cfg.Source.LoginPath)
	assert.Equal(t, 20, cfg.Source.MaxProducts)
	assert.Empty(t, cfg.Source.Categories)
	assert.Equal(t, "wc/v3", cfg.Storefront.APIVersion)
	assert.Equal(t, float64(5), cfg.Storefront.RequestsPerSecond)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)

	assert.NoError(t, cfg.Validate())
	assert.ErrorContains(t, cfg.ValidateForSync(), "at least one category")
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("PRICING_TAX_RATE", "1.10")
	t.Setenv("SYNC_CONCURRENCY", "4")
	t.Setenv("SYNC_CALL_TIMEOUT", "5s")
	t.Setenv("SYNC_UPDATE_MEDIA", "changed")
	t.Setenv("SOURCE_USER", "buyer@example.com")
	t.Setenv("SOURCE_CATEGORIES", `["https://s.test/a", "https://s.test/b"]`)
	t.Setenv("STOREFRONT_URL", "https://shop.test")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.Pricing.TaxRate.Equal(decimal.RequireFromString("1.1")))
	assert.Equal(t, 4, cfg.Sync.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.Sync.CallTimeout)
	assert.Equal(t, "buyer@example.com", cfg.Source.User)
	assert.Equal(t, []string{"https://s.test/a", "https://s.test/b"}, cfg.Source.Categories)
	assert.NoError(t, cfg.ValidateForSync())
}

func TestLoadConfig_DotEnvAndCategoriesFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "categories.toml")
	require.NoError(t, os.WriteFile(file, []byte(`
[[category]]
url = "https://s.test/b"

[[category]]
url = "https://s.test/c"
name = "Monitors"
`), 0o644))

	env := "SOURCE_CATEGORIES=https://s.test/a, https://s.test/b\nSOURCE_CATEGORIES_FILE=" + file + "\nPRICING_MARGIN_RATE=1.5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("SOURCE_CATEGORIES")
		os.Unsetenv("SOURCE_CATEGORIES_FILE")
		os.Unsetenv("PRICING_MARGIN_RATE")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://s.test/a", "https://s.test/b", "https://s.test/c"}, cfg.Source.Categories)
	assert.True(t, cfg.Pricing.MarginRate.Equal(decimal.RequireFromString("1.5")))
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Setenv("PRICING_TAX_RATE", "lots")

	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("PRICING_TAX_RATE", "1.0")
	t.Setenv("SYNC_STOCK_IF_AVAILABLE", "0")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tax rate")
	assert.Contains(t, err.Error(), "stock_if_available")
}

func TestStringToListHook(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{"Empty", "  ", []string{}, false},
		{"CSV", "a, b,,c", []string{"a", "b", "c"}, false},
		{"JSON", `["a","b"]`, []string{"a", "b"}, false},
		{"BrokenJSON", `["a"`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeList(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadCategoriesFile_Errors(t *testing.T) {
	_, err := LoadCategoriesFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(file, []byte("[[category]]\nname = \"x\"\n"), 0o644))
	_, err = LoadCategoriesFile(file)
	assert.ErrorContains(t, err, "has no url")
}
