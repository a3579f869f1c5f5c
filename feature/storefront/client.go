package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Client talks to the WooCommerce REST API of one store.
type Client struct {
	base    *url.URL
	key     string
	secret  string
	perPage int
	http    *http.Client
	limiter *RateLimiter

	mu         sync.RWMutex
	categories map[string]int64
	sf         singleflight.Group
}

// NewClient creates a store client from the configuration.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("storefront url is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid storefront url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid storefront url %q: scheme and host required", cfg.URL)
	}

	version := strings.Trim(cfg.APIVersion, "/")
	if version == "" {
		version = "wc/v3"
	}
	base.Path = base.Path + "/wp-json/" + version + "/"

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	perPage := cfg.PerPage
	if perPage <= 0 || perPage > 100 {
		perPage = 50
	}

	return &Client{
		base:       base,
		key:        cfg.ConsumerKey,
		secret:     cfg.ConsumerSecret,
		perPage:    perPage,
		http:       &http.Client{Timeout: time.Duration(timeout) * time.Second},
		limiter:    NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
		categories: make(map[string]int64),
	}, nil
}

// FindCategoryID returns the id of the category whose name equals name,
// ignoring case and surrounding spaces. It returns ErrCategoryNotFound when
// the store has no such category. Lookups are cached for the client's lifetime.
func (c *Client) FindCategoryID(ctx context.Context, name string) (int64, error) {
	wanted := strings.ToLower(strings.TrimSpace(name))
	if wanted == "" {
		return 0, ErrCategoryNotFound
	}

	c.mu.RLock()
	id, ok := c.categories[wanted]
	c.mu.RUnlock()
	if ok {
		return id, nil
	}

	result, err, _ := c.sf.Do(wanted, func() (interface{}, error) {
		query := url.Values{}
		query.Set("search", strings.TrimSpace(name))
		query.Set("per_page", "100")

		var cats []Category
		if _, err := c.do(ctx, http.MethodGet, "products/categories", query, nil, &cats); err != nil {
			return int64(0), err
		}

		for _, cat := range cats {
			if strings.ToLower(strings.TrimSpace(html.UnescapeString(cat.Name))) == wanted {
				c.mu.Lock()
				c.categories[wanted] = cat.ID
				c.mu.Unlock()
				return cat.ID, nil
			}
		}
		return int64(0), ErrCategoryNotFound
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

// ListProducts returns every product of a category keyed by SKU, or of the
// whole store when categoryID is 0. Products of any status are included so
// archived drafts still match. Products without a SKU are skipped.
func (c *Client) ListProducts(ctx context.Context, categoryID int64) (map[string]Product, error) {
	products := make(map[string]Product)

	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("per_page", strconv.Itoa(c.perPage))
		query.Set("page", strconv.Itoa(page))
		query.Set("status", "any")
		if categoryID > 0 {
			query.Set("category", strconv.FormatInt(categoryID, 10))
		}

		var batch []Product
		header, err := c.do(ctx, http.MethodGet, "products", query, nil, &batch)
		if err != nil {
			return nil, fmt.Errorf("listing products page %d: %w", page, err)
		}

		for _, p := range batch {
			if p.SKU == "" {
				continue
			}
			products[p.SKU] = p
		}

		if len(batch) == 0 || len(batch) < c.perPage {
			break
		}
		if total, err := strconv.Atoi(header.Get("X-WP-TotalPages")); err == nil && page >= total {
			break
		}
	}

	return products, nil
}

// FindBySKU returns the product with the given SKU, if any.
func (c *Client) FindBySKU(ctx context.Context, sku string) (*Product, bool, error) {
	query := url.Values{}
	query.Set("sku", sku)
	query.Set("status", "any")

	var found []Product
	if _, err := c.do(ctx, http.MethodGet, "products", query, nil, &found); err != nil {
		return nil, false, err
	}
	for i := range found {
		if found[i].SKU == sku {
			return &found[i], true, nil
		}
	}
	return nil, false, nil
}

// CreateProduct creates a product.
func (c *Client) CreateProduct(ctx context.Context, payload ProductPayload) (*Product, error) {
	var created Product
	if _, err := c.do(ctx, http.MethodPost, "products", nil, payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProduct applies a partial update to the product with the given id.
func (c *Client) UpdateProduct(ctx context.Context, id int64, payload ProductPayload) (*Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid product id %d", id)
	}
	var updated Product
	path := "products/" + strconv.FormatInt(id, 10)
	if _, err := c.do(ctx, http.MethodPut, path, nil, payload, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Ping checks that the store answers and accepts the credentials.
func (c *Client) Ping(ctx context.Context) error {
	query := url.Values{}
	query.Set("per_page", "1")

	var probe []Product
	_, err := c.do(ctx, http.MethodGet, "products", query, nil, &probe)
	return err
}

// do performs one rate-limited JSON request and decodes the response into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) (http.Header, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := c.base.ResolveReference(&url.URL{Path: path})
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.SetBasicAuth(c.key, c.secret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.RecordRateLimitError(parseRetryAfter(resp.Header.Get("Retry-After")))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newStatusError(req, resp, data)
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return nil, fmt.Errorf("decoding %s %s response: %w", method, path, err)
		}
	}

	return resp.Header, nil
}

func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		return time.Until(at)
	}
	return 0
}
