package supplier

import (
	"errors"
	"strings"

	"catalog-sync/core/utils"
	"catalog-sync/feature/catalog"
	"catalog-sync/feature/pricing"

	"github.com/gocolly/colly"
)

const (
	skuLabel       = "Código"
	outOfStockText = "Sin Stock"
	priceSelector  = ".pprecio, .product-price, .price-value-2"
)

var (
	errNoSKU   = errors.New("product page has no SKU")
	errNoPrice = errors.New("product page has no price")
)

// CategoryName extracts the category name from a page title: the part before
// the first dash ("Notebooks - Supplier" gives "Notebooks").
func CategoryName(title string) string {
	name, _, _ := strings.Cut(title, "-")
	return utils.CollapseSpaces(name)
}

func parseProduct(e *colly.HTMLElement) (catalog.ProductRecord, error) {
	sku := ""
	e.ForEach("tr", func(_ int, row *colly.HTMLElement) {
		if sku != "" || !strings.Contains(row.Text, skuLabel) {
			return
		}
		sku = strings.TrimSpace(row.DOM.Find(".data span").First().Text())
		if sku == "" {
			sku = strings.TrimSpace(row.DOM.Find("td").Last().Text())
		}
	})
	if sku == "" || strings.Contains(sku, skuLabel) {
		return catalog.ProductRecord{}, errNoSKU
	}

	price := e.DOM.Find(priceSelector).First()
	if price.Length() == 0 {
		return catalog.ProductRecord{}, errNoPrice
	}

	rec := catalog.ProductRecord{
		SKU:                    sku,
		Name:                   utils.CollapseSpaces(e.DOM.Find("h1").First().Text()),
		ManufacturerPartNumber: catalog.DefaultMPN,
		NetPrice:               pricing.ParseNetPrice(price.Text()),
		InStock:                !strings.Contains(e.DOM.Find("body").Text(), outOfStockText),
		Description:            utils.CollapseSpaces(e.DOM.Find(".product-description").First().Text()),
	}
	if src, ok := e.DOM.Find(".gallery img").First().Attr("src"); ok && strings.TrimSpace(src) != "" {
		rec.ImageURL = e.Request.AbsoluteURL(strings.TrimSpace(src))
	}

	return rec, nil
}
