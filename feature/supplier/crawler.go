package supplier

import (
	"context"
	"errors"
	"fmt"
	"net/http/cookiejar"
	"strings"
	"time"

	"catalog-sync/feature/catalog"

	"github.com/gocolly/colly"
	"go.uber.org/zap"
)

// ErrLoginRejected is returned when the site answers the login with the login form again.
var ErrLoginRejected = errors.New("login rejected")

// Crawler reads categories and products from the supplier site.
// It keeps one cookie session and visits pages one at a time.
type Crawler struct {
	cfg       Config
	collector *colly.Collector
	logger    *zap.Logger
}

var _ catalog.Source = (*Crawler)(nil)

// NewCrawler creates a crawler for the configured site.
func NewCrawler(cfg Config, logger *zap.Logger) (*Crawler, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("supplier base url is required")
	}

	options := []func(*colly.Collector){colly.AllowURLRevisit()}
	if cfg.UserAgent != "" {
		options = append(options, colly.UserAgent(cfg.UserAgent))
	}
	c := colly.NewCollector(options...)

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 15
	}
	c.SetRequestTimeout(time.Duration(timeout) * time.Second)

	if cfg.DelayMillis > 0 {
		if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Delay: time.Duration(cfg.DelayMillis) * time.Millisecond}); err != nil {
			return nil, fmt.Errorf("setting request delay: %w", err)
		}
	}

	return &Crawler{cfg: cfg, collector: c, logger: logger}, nil
}

// Login posts the credentials to the login form. The session cookie is kept
// for every later request.
func (c *Crawler) Login(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	loginURL := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(c.cfg.LoginPath, "/")

	collector := c.collector.Clone()
	formShown := false
	collector.OnHTML(`input[type="password"]`, func(e *colly.HTMLElement) {
		formShown = true
	})

	err := collector.Post(loginURL, map[string]string{
		c.cfg.UserField:     c.cfg.User,
		c.cfg.PasswordField: c.cfg.Password,
	})
	if err != nil {
		return fmt.Errorf("posting login form: %w", err)
	}
	if formShown {
		return ErrLoginRejected
	}

	c.logger.Info("Logged into supplier", zap.String("url", loginURL))
	return nil
}

// ScrapeCategory returns the category name and the products linked from the
// category page. Products without a SKU or price are skipped.
func (c *Crawler) ScrapeCategory(ctx context.Context, url string) (string, []catalog.ProductRecord, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	name, links, err := c.listCategory(url)
	if err != nil {
		return "", nil, err
	}
	if c.cfg.MaxProducts > 0 && len(links) > c.cfg.MaxProducts {
		links = links[:c.cfg.MaxProducts]
	}

	log := c.logger.With(zap.String("category_url", url), zap.String("category", name))
	log.Debug("Listed category", zap.Int("links", len(links)))

	records := make([]catalog.ProductRecord, 0, len(links))
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return name, records, err
		}

		rec, err := c.scrapeProduct(link)
		if err != nil {
			log.Warn("Skipping product", zap.String("product_url", link), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	return name, records, nil
}

// Close drops the session cookies.
func (c *Crawler) Close() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	c.collector.SetCookieJar(jar)
	return nil
}

func (c *Crawler) listCategory(url string) (string, []string, error) {
	collector := c.collector.Clone()

	var title string
	var links []string
	seen := make(map[string]bool)

	collector.OnHTML("title", func(e *colly.HTMLElement) {
		if title == "" {
			title = e.Text
		}
	})
	collector.OnHTML("article.prod_item a[href]", func(e *colly.HTMLElement) {
		href := strings.TrimSpace(e.Attr("href"))
		if skipLink(href) {
			return
		}
		abs := e.Request.AbsoluteURL(href)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		links = append(links, abs)
	})

	if err := collector.Visit(url); err != nil {
		return "", nil, fmt.Errorf("visiting category page: %w", err)
	}

	return CategoryName(title), links, nil
}

func (c *Crawler) scrapeProduct(url string) (catalog.ProductRecord, error) {
	collector := c.collector.Clone()

	var (
		rec      catalog.ProductRecord
		parseErr error
		parsed   bool
	)
	collector.OnHTML("html", func(e *colly.HTMLElement) {
		parsed = true
		rec, parseErr = parseProduct(e)
	})

	if err := collector.Visit(url); err != nil {
		return rec, fmt.Errorf("visiting product page: %w", err)
	}
	if !parsed {
		return rec, fmt.Errorf("product page is not html")
	}
	if parseErr != nil {
		return rec, parseErr
	}

	rec.SourceURL = url
	return rec, nil
}

func skipLink(href string) bool {
	if href == "" || href == "#" {
		return true
	}
	lower := strings.ToLower(href)
	return strings.Contains(lower, "javascript") || strings.Contains(lower, "carrito")
}
