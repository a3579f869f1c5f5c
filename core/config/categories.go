package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type categoriesFile struct {
	Category []struct {
		URL  string `toml:"url"`
		Name string `toml:"name"`
	} `toml:"category"`
}

// LoadCategoriesFile reads category URLs from a TOML file of
// [[category]] tables. Entries without a url are rejected.
func LoadCategoriesFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading categories file: %w", err)
	}

	var file categoriesFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing categories file %s: %w", path, err)
	}

	urls := make([]string, 0, len(file.Category))
	for i, c := range file.Category {
		url := strings.TrimSpace(c.URL)
		if url == "" {
			return nil, fmt.Errorf("categories file %s: entry %d has no url", path, i+1)
		}
		urls = append(urls, url)
	}
	return urls, nil
}
