package mocks

import (
	"context"

	"catalog-sync/feature/catalog"

	"github.com/stretchr/testify/mock"
)

// Source is a mock implementation of catalog.Source
type Source struct {
	mock.Mock
}

func (m *Source) Login(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Source) ScrapeCategory(ctx context.Context, url string) (string, []catalog.ProductRecord, error) {
	args := m.Called(ctx, url)
	records, _ := args.Get(1).([]catalog.ProductRecord)
	return args.String(0), records, args.Error(2)
}

func (m *Source) Close() error {
	args := m.Called()
	return args.Error(0)
}
