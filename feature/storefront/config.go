package storefront

// Config holds configuration for the WooCommerce REST API.
type Config struct {
	// URL is the base URL of the store (e.g. https://shop.example.com).
	URL string `mapstructure:"url" default:""`
	// ConsumerKey is the REST API consumer key (ck_...).
	ConsumerKey string `mapstructure:"consumer_key" default:""`
	// ConsumerSecret is the REST API consumer secret (cs_...).
	ConsumerSecret string `mapstructure:"consumer_secret" default:""`
	// APIVersion is the REST namespace appended to /wp-json/.
	APIVersion string `mapstructure:"api_version" default:"wc/v3"`
	// TimeoutSeconds bounds each HTTP request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// PerPage is the page size used when listing products.
	PerPage int `mapstructure:"per_page" default:"50"`
	// RequestsPerSecond is the sustained request rate against the store.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" default:"5"`
	// Burst is the maximum request burst.
	Burst int `mapstructure:"burst" default:"5"`
}
