// Package config provides configuration management for catalog-sync.
//
// It uses Viper to read environment variables (and an optional .env file),
// with defaults taken from the `default` struct tags of every section.
//
// # Configuration Structure
//
// The Config struct is divided into sections:
//   - Log: logging level and format
//   - Pricing: tax and margin rates
//   - Sync: stock policy, retries, concurrency and media policy
//   - Source: supplier site, credentials and category URLs
//   - Storefront: WooCommerce REST API credentials and rate limit
//   - Storage: S3/MinIO snapshot archive
//   - Database: run history (mysql or sqlite)
//   - Server: status API port and API key
//
// Keys map to environment variables by upper-casing and replacing dots with
// underscores, e.g. sync.call_timeout is SYNC_CALL_TIMEOUT. SOURCE_CATEGORIES
// accepts a JSON array or a comma separated list; SOURCE_CATEGORIES_FILE names
// a TOML file of [[category]] entries appended to it.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Storefront.URL)
package config
