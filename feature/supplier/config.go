package supplier

// Config holds the supplier site settings.
type Config struct {
	// BaseURL is the site root, used to build the login URL.
	BaseURL string `mapstructure:"base_url" default:"https://www.cdrmedios.com"`
	// LoginPath is the path the login form posts to.
	LoginPath string `mapstructure:"login_path" default:"/login"`
	// UserField and PasswordField are the login form field names.
	UserField     string `mapstructure:"user_field" default:"email"`
	PasswordField string `mapstructure:"password_field" default:"password"`
	User          string `mapstructure:"user" default:""`
	Password      string `mapstructure:"password" default:""`
	// MaxProducts caps the product pages visited per category. Zero means no cap.
	MaxProducts int `mapstructure:"max_products" default:"20"`
	// TimeoutSeconds bounds every page request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"15"`
	// DelayMillis is the pause between two requests.
	DelayMillis int    `mapstructure:"delay_millis" default:"0"`
	UserAgent   string `mapstructure:"user_agent" default:"Mozilla/5.0 (compatible; catalog-sync/1.0)"`
}
