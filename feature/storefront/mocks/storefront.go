package mocks

import (
	"context"

	"catalog-sync/feature/storefront"

	"github.com/stretchr/testify/mock"
)

// Storefront is a mock implementation of catalog.Storefront
type Storefront struct {
	mock.Mock
}

func (m *Storefront) FindCategoryID(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Storefront) ListProducts(ctx context.Context, categoryID int64) (map[string]storefront.Product, error) {
	args := m.Called(ctx, categoryID)
	if products, ok := args.Get(0).(map[string]storefront.Product); ok {
		return products, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Storefront) FindBySKU(ctx context.Context, sku string) (*storefront.Product, bool, error) {
	args := m.Called(ctx, sku)
	if p, ok := args.Get(0).(*storefront.Product); ok {
		return p, args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func (m *Storefront) CreateProduct(ctx context.Context, payload storefront.ProductPayload) (*storefront.Product, error) {
	args := m.Called(ctx, payload)
	if p, ok := args.Get(0).(*storefront.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Storefront) UpdateProduct(ctx context.Context, id int64, payload storefront.ProductPayload) (*storefront.Product, error) {
	args := m.Called(ctx, id, payload)
	if p, ok := args.Get(0).(*storefront.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
