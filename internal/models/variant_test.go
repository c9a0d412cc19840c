package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariantKey_DefaultDoesNotCollideWithLiteralDefault(t *testing.T) {
	literal := CharacteristicVariant("default")

	assert.True(t, DefaultVariant.IsDefault())
	assert.False(t, literal.IsDefault())
	assert.NotEqual(t, DefaultVariant, literal)
	assert.Equal(t, "default", literal.CharacteristicID())
	assert.Equal(t, "", DefaultVariant.CharacteristicID())
}

func TestPriceBook_Lookup(t *testing.T) {
	book := PriceBook{}
	book.Put("p1", DefaultVariant, PriceEntry{Amount: decimal.RequireFromString("5")})
	book.Put("p1", CharacteristicVariant("c1"), PriceEntry{Amount: decimal.RequireFromString("10.5"), Currency: "RUB"})

	exact, ok := book.Lookup("p1", CharacteristicVariant("c1"))
	require.True(t, ok)
	assert.Equal(t, "10.50", exact.FormattedAmount())
	assert.Equal(t, "RUB", exact.Currency)

	fallback, ok := book.Lookup("p1", CharacteristicVariant("c2"))
	require.True(t, ok)
	assert.Equal(t, "5.00", fallback.FormattedAmount())

	_, ok = book.Lookup("p2", DefaultVariant)
	assert.False(t, ok)
}

func TestPriceBook_LookupWithoutDefault(t *testing.T) {
	book := PriceBook{}
	book.Put("p1", CharacteristicVariant("c1"), PriceEntry{Amount: decimal.NewFromInt(1)})

	_, ok := book.Lookup("p1", CharacteristicVariant("c2"))
	assert.False(t, ok)
}

func TestBalanceBook_Quantity(t *testing.T) {
	book := BalanceBook{}
	book.Put("p1", DefaultVariant, BalanceEntry{Quantity: 3})
	book.Put("p1", CharacteristicVariant("c1"), BalanceEntry{Quantity: 7})

	assert.Equal(t, int64(7), book.Quantity("p1", CharacteristicVariant("c1")))
	assert.Equal(t, int64(3), book.Quantity("p1", CharacteristicVariant("c9")))
	assert.Equal(t, int64(0), book.Quantity("missing", DefaultVariant))
}

func TestProduct_PutCharacteristicKeepsFirstPosition(t *testing.T) {
	p := Product{ID: "p1"}
	p.PutCharacteristic(Characteristic{ID: "a", Name: "first"})
	p.PutCharacteristic(Characteristic{ID: "b", Name: "second"})
	p.PutCharacteristic(Characteristic{ID: "a", Name: "replaced"})

	require.Len(t, p.Characteristics, 2)
	assert.Equal(t, "a", p.Characteristics[0].ID)
	assert.Equal(t, "replaced", p.Characteristics[0].Name)

	c, ok := p.Characteristic("b")
	require.True(t, ok)
	assert.Equal(t, "second", c.Name)
}

func TestProduct_OfferCode(t *testing.T) {
	assert.Equal(t, "SKU1", (&Product{ID: "p1", Code: "SKU1"}).OfferCode())
	assert.Equal(t, "p1", (&Product{ID: "p1"}).OfferCode())
}

func TestDatasetKind_ServiceName(t *testing.T) {
	assert.Equal(t, "NOMENCLATURETYPELIST", DatasetCategories.ServiceName())
	assert.Equal(t, "BRAND", DatasetBrands.ServiceName())
	assert.Equal(t, "NOMENCLATURE", DatasetProducts.ServiceName())
	assert.Equal(t, "PRICELIST", DatasetPrices.ServiceName())
	assert.Equal(t, "BALANCE", DatasetBalances.ServiceName())
	assert.False(t, DatasetKind("nope").Valid())
	assert.Len(t, ExportOrder, 5)
}
