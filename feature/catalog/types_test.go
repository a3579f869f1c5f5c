package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	in := []ProductRecord{
		{SKU: " A1 ", Name: "  Mouse \n Gamer ", NetPrice: decimal.NewFromInt(10)},
		{SKU: "", Name: "no sku"},
		{SKU: "   ", Name: "blank sku"},
		{SKU: "B2", ManufacturerPartNumber: "MX-1", NetPrice: decimal.NewFromInt(-5)},
	}

	out, dropped := Sanitize(in)
	require.Len(t, out, 2)
	assert.Equal(t, 2, dropped)

	assert.Equal(t, "A1", out[0].SKU)
	assert.Equal(t, "Mouse Gamer", out[0].Name)
	assert.Equal(t, DefaultMPN, out[0].ManufacturerPartNumber)

	assert.Equal(t, "MX-1", out[1].ManufacturerPartNumber)
	assert.True(t, out[1].NetPrice.IsZero())

	// Input untouched
	assert.Equal(t, " A1 ", in[0].SKU)
}

func TestRunSummary_Add(t *testing.T) {
	id := int64(3)
	var s RunSummary
	s.Add(CategorySyncResult{Status: CategoryOK, CategoryID: &id, Scraped: 5, Created: 2, Updated: 2, Archived: 1})
	s.Add(CategorySyncResult{Status: CategorySkipped, Scraped: 0})
	s.Add(CategorySyncResult{Status: CategoryOK, Scraped: 3, Created: 1, Updated: 1, Failed: 1})

	assert.Len(t, s.Categories, 3)
	assert.Equal(t, 8, s.Scraped)
	assert.Equal(t, 3, s.Created)
	assert.Equal(t, 3, s.Updated)
	assert.Equal(t, 1, s.Archived)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Skipped)

	assert.False(t, s.Categories[0].Degraded())
	assert.False(t, s.Categories[1].Degraded())
	assert.True(t, s.Categories[2].Degraded())
}
