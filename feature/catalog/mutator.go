package catalog

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"

	"catalog-sync/core/reconcile"
	"catalog-sync/feature/pricing"
	"catalog-sync/feature/storefront"
)

// MediaPolicy decides whether updates resend images and categories.
type MediaPolicy string

const (
	// MediaNever sends images and categories on create only.
	MediaNever MediaPolicy = "never"
	// MediaAlways resends them on every update.
	MediaAlways MediaPolicy = "always"
	// MediaChanged resends them when the store copy differs from the record.
	MediaChanged MediaPolicy = "changed"
)

// ParseMediaPolicy validates a policy name. An empty name means MediaNever.
func ParseMediaPolicy(s string) (MediaPolicy, error) {
	switch p := MediaPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return MediaNever, nil
	case MediaNever, MediaAlways, MediaChanged:
		return p, nil
	default:
		return "", fmt.Errorf("unknown update media policy %q", s)
	}
}

// MutatorConfig holds the write policy.
type MutatorConfig struct {
	// StockIfAvailable is the stock quantity written for in-stock products.
	StockIfAvailable int
	// Media is the update media policy.
	Media MediaPolicy
}

// Mutator turns reconcile actions into storefront calls.
type Mutator struct {
	store   Storefront
	pricer  *pricing.Transformer
	cfg     MutatorConfig
	onWrite func(storefront.Product)
}

var (
	_ reconcile.Mutator[ProductRecord, storefront.Product] = (*Mutator)(nil)
	_ reconcile.Deduper                                    = (*Mutator)(nil)
)

// NewMutator creates a mutator writing to store with the given prices and policy.
func NewMutator(store Storefront, pricer *pricing.Transformer, cfg MutatorConfig) *Mutator {
	if cfg.Media == "" {
		cfg.Media = MediaNever
	}
	return &Mutator{store: store, pricer: pricer, cfg: cfg}
}

// WithWriteHook returns a copy of m that calls fn with every product the store
// returns from a successful write.
func (m *Mutator) WithWriteHook(fn func(storefront.Product)) *Mutator {
	c := *m
	c.onWrite = fn
	return &c
}

// Create creates a product from the record.
func (m *Mutator) Create(ctx context.Context, r ProductRecord) error {
	p, err := m.store.CreateProduct(ctx, m.CreatePayload(r))
	if err != nil {
		return err
	}
	m.written(p)
	return nil
}

// Update rewrites price, stock and status of an existing product.
func (m *Mutator) Update(ctx context.Context, existing storefront.Product, r ProductRecord) error {
	p, err := m.store.UpdateProduct(ctx, existing.ID, m.UpdatePayload(existing, r))
	if err != nil {
		return err
	}
	m.written(p)
	return nil
}

// Archive hides an existing product and zeroes its stock. Products that are
// already archived are left untouched.
func (m *Mutator) Archive(ctx context.Context, existing storefront.Product) error {
	if existing.IsArchived() {
		return nil
	}
	p, err := m.store.UpdateProduct(ctx, existing.ID, ArchivePayload())
	if err != nil {
		return err
	}
	m.written(p)
	return nil
}

// Exists reports whether the store already has a product with the SKU.
func (m *Mutator) Exists(ctx context.Context, sku string) (bool, error) {
	_, ok, err := m.store.FindBySKU(ctx, sku)
	return ok, err
}

func (m *Mutator) written(p *storefront.Product) {
	if m.onWrite != nil && p != nil && p.SKU != "" {
		m.onWrite(*p)
	}
}

// CreatePayload builds the full payload for a new product.
func (m *Mutator) CreatePayload(r ProductRecord) storefront.ProductPayload {
	p := m.basePayload(r)
	p.SKU = r.SKU
	p.Description = r.Description
	if r.ImageURL != "" {
		p.Images = []storefront.Image{{Src: r.ImageURL}}
	}
	p.Categories = categoryRefs(r.CategoryIDs)
	if r.ManufacturerPartNumber != "" && r.ManufacturerPartNumber != DefaultMPN {
		p.MetaData = []storefront.MetaData{{Key: "mpn", Value: r.ManufacturerPartNumber}}
	}
	return p
}

// UpdatePayload builds the partial payload for an existing product.
// Images and categories follow the media policy; categories are merged with
// those the product already has.
func (m *Mutator) UpdatePayload(existing storefront.Product, r ProductRecord) storefront.ProductPayload {
	p := m.basePayload(r)
	p.SKU = r.SKU

	switch m.cfg.Media {
	case MediaAlways:
		if r.ImageURL != "" {
			p.Images = []storefront.Image{{Src: r.ImageURL}}
		}
		if len(r.CategoryIDs) > 0 {
			p.Categories = mergeCategories(existing.Categories, r.CategoryIDs)
		}
	case MediaChanged:
		if r.ImageURL != "" && !hasImage(existing.Images, r.ImageURL) {
			p.Images = []storefront.Image{{Src: r.ImageURL}}
		}
		if missingCategory(existing.Categories, r.CategoryIDs) {
			p.Categories = mergeCategories(existing.Categories, r.CategoryIDs)
		}
	}
	return p
}

// ArchivePayload zeroes stock and hides the product. It never deletes.
func ArchivePayload() storefront.ProductPayload {
	manage := true
	zero := 0
	return storefront.ProductPayload{
		ManageStock:   &manage,
		StockQuantity: &zero,
		Status:        storefront.StatusDraft,
		Visibility:    storefront.VisibilityHidden,
	}
}

func (m *Mutator) basePayload(r ProductRecord) storefront.ProductPayload {
	manage := true
	stock := 0
	status := storefront.StatusDraft
	visibility := storefront.VisibilityHidden
	if r.InStock {
		stock = m.cfg.StockIfAvailable
		status = storefront.StatusPublish
		visibility = storefront.VisibilityVisible
	}
	return storefront.ProductPayload{
		Name:          r.Name,
		RegularPrice:  strconv.FormatInt(m.pricer.Price(r.NetPrice), 10),
		ManageStock:   &manage,
		StockQuantity: &stock,
		Status:        status,
		Visibility:    visibility,
	}
}

func categoryRefs(ids []int64) []storefront.CategoryRef {
	if len(ids) == 0 {
		return nil
	}
	refs := make([]storefront.CategoryRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, storefront.CategoryRef{ID: id})
	}
	return refs
}

func mergeCategories(current []storefront.CategoryRef, ids []int64) []storefront.CategoryRef {
	merged := make([]storefront.CategoryRef, 0, len(current)+len(ids))
	seen := make(map[int64]bool, len(current)+len(ids))
	for _, c := range current {
		if !seen[c.ID] {
			seen[c.ID] = true
			merged = append(merged, storefront.CategoryRef{ID: c.ID})
		}
	}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			merged = append(merged, storefront.CategoryRef{ID: id})
		}
	}
	return merged
}

func missingCategory(current []storefront.CategoryRef, ids []int64) bool {
	for _, id := range ids {
		if !slices.ContainsFunc(current, func(c storefront.CategoryRef) bool { return c.ID == id }) {
			return true
		}
	}
	return false
}

// hasImage matches on the file name stem: the store renames uploads
// ("photo.jpg" becomes "photo-1.jpg" or "photo-scaled.jpg").
func hasImage(images []storefront.Image, src string) bool {
	want := imageStem(src)
	if want == "" {
		return false
	}
	for _, img := range images {
		stem := imageStem(img.Src)
		if stem == want || strings.HasPrefix(stem, want+"-") {
			return true
		}
	}
	return false
}

func imageStem(src string) string {
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	base := path.Base(src)
	if base == "." || base == "/" {
		return ""
	}
	return strings.ToLower(strings.TrimSuffix(base, path.Ext(base)))
}
