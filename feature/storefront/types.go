package storefront

import (
	"encoding/json"
	"strings"

	"catalog-sync/core/utils"
)

// Status is the publication status of a product.
type Status string

const (
	StatusPublish Status = "publish"
	StatusDraft   Status = "draft"
)

// Visibility is the catalog visibility of a product.
type Visibility string

const (
	VisibilityVisible Visibility = "visible"
	VisibilityHidden  Visibility = "hidden"
)

// Image references a product image by source URL.
type Image struct {
	ID  int64  `json:"id,omitempty"`
	Src string `json:"src,omitempty"`
}

// CategoryRef references a product category by id.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// Category is a product category as returned by the store.
type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// Product is a product as returned by the store.
type Product struct {
	ID            int64         `json:"id"`
	SKU           string        `json:"sku"`
	Name          string        `json:"name"`
	RegularPrice  string        `json:"regular_price"`
	ManageStock   bool          `json:"manage_stock"`
	StockQuantity *int          `json:"stock_quantity"`
	Status        Status        `json:"status"`
	Visibility    Visibility    `json:"catalog_visibility"`
	Images        []Image       `json:"images"`
	Categories    []CategoryRef `json:"categories"`
}

// Stock returns the stock quantity, 0 when the store reports none.
func (p Product) Stock() int {
	if p.StockQuantity == nil {
		return 0
	}
	return *p.StockQuantity
}

// IsArchived reports whether the product is out of stock, draft and hidden.
func (p Product) IsArchived() bool {
	return p.Stock() == 0 && p.Status == StatusDraft && p.Visibility == VisibilityHidden
}

// UnmarshalJSON accepts the loose typing some stores and plugins emit
// (ids and quantities as strings, prices as numbers).
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID            any           `json:"id"`
		SKU           any           `json:"sku"`
		Name          string        `json:"name"`
		RegularPrice  any           `json:"regular_price"`
		ManageStock   any           `json:"manage_stock"`
		StockQuantity any           `json:"stock_quantity"`
		Status        Status        `json:"status"`
		Visibility    Visibility    `json:"catalog_visibility"`
		Images        []Image       `json:"images"`
		Categories    []CategoryRef `json:"categories"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Product{
		ID:         int64(utils.ToInt(raw.ID)),
		Name:       raw.Name,
		Status:     raw.Status,
		Visibility: raw.Visibility,
		Images:     raw.Images,
		Categories: raw.Categories,
	}
	if raw.SKU != nil {
		p.SKU = strings.TrimSpace(utils.ToString(raw.SKU))
	}
	if raw.RegularPrice != nil {
		p.RegularPrice = utils.ToString(raw.RegularPrice)
	}
	p.ManageStock = utils.ToBool(raw.ManageStock)
	if raw.StockQuantity != nil {
		q := utils.ToInt(raw.StockQuantity)
		p.StockQuantity = &q
	}
	return nil
}

// ProductPayload is the body of a create or update request.
// Zero-valued optional fields are omitted so updates stay partial.
type ProductPayload struct {
	SKU           string        `json:"sku,omitempty"`
	Name          string        `json:"name,omitempty"`
	Description   string        `json:"description,omitempty"`
	RegularPrice  string        `json:"regular_price,omitempty"`
	ManageStock   *bool         `json:"manage_stock,omitempty"`
	StockQuantity *int          `json:"stock_quantity,omitempty"`
	Status        Status        `json:"status,omitempty"`
	Visibility    Visibility    `json:"catalog_visibility,omitempty"`
	Images        []Image       `json:"images,omitempty"`
	Categories    []CategoryRef `json:"categories,omitempty"`
	MetaData      []MetaData    `json:"meta_data,omitempty"`
}

// MetaData is a custom field attached to a product.
type MetaData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
