package storage

// Config holds the object store used for scrape snapshots and run reports.
type Config struct {
	// Enabled turns snapshot archiving on.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Endpoint is host:port of the S3 compatible service. A scheme is tolerated.
	Endpoint  string `mapstructure:"endpoint" default:"localhost:9000"`
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	UseSSL    bool   `mapstructure:"use_ssl" default:"false"`
	Bucket    string `mapstructure:"bucket" default:"catalog-sync"`
	Region    string `mapstructure:"region" default:""`
	// TimeoutSeconds bounds connection setup and the wait for response headers.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// RetentionRuns is how many runs of snapshots are kept. Zero keeps all.
	RetentionRuns int `mapstructure:"retention_runs" default:"30"`
}
