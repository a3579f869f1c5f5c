package database

// Config holds configuration for the run history database.
type Config struct {
	// Enabled turns run history on.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Driver is mysql or sqlite.
	Driver   string `mapstructure:"driver" default:"sqlite"`
	Host     string `mapstructure:"host" default:"localhost"`
	Port     int    `mapstructure:"port" default:"3306"`
	User     string `mapstructure:"user" default:"root"`
	Password string `mapstructure:"password" default:""`
	// Name is the database name, or the file path for sqlite (":memory:" for tests).
	Name string `mapstructure:"name" default:"catalog-sync.db"`
	// TimeoutSeconds bounds connecting and every read or write.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
	// AutoMigrate creates or updates the history tables on start. When off the
	// schema is only verified.
	AutoMigrate bool `mapstructure:"auto_migrate" default:"true"`
}
