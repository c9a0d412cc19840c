package models

// VariantKey identifies which variant of a product a price, balance or offer
// belongs to. The zero value is the default variant ("no characteristic"),
// which can never be confused with a real characteristic id, including one
// literally named "default".
type VariantKey struct {
	characteristicID string
	characteristic   bool
}

// DefaultVariant is the key for a product without a characteristic.
var DefaultVariant = VariantKey{}

// CharacteristicVariant returns the key for the given characteristic id.
func CharacteristicVariant(id string) VariantKey {
	return VariantKey{characteristicID: id, characteristic: true}
}

// IsDefault reports whether k is the default variant.
func (k VariantKey) IsDefault() bool {
	return !k.characteristic
}

// CharacteristicID returns the characteristic id, or "" for the default variant.
func (k VariantKey) CharacteristicID() string {
	return k.characteristicID
}

func (k VariantKey) String() string {
	if k.IsDefault() {
		return "default"
	}
	return k.characteristicID
}

// PriceBook holds prices grouped by product id then variant.
type PriceBook map[string]map[VariantKey]PriceEntry

// Put stores a price, replacing any previous entry for the same key.
func (b PriceBook) Put(productID string, key VariantKey, entry PriceEntry) {
	byVariant, ok := b[productID]
	if !ok {
		byVariant = make(map[VariantKey]PriceEntry)
		b[productID] = byVariant
	}
	byVariant[key] = entry
}

// Lookup resolves the price for (productID, key), falling back to the
// product's default entry when the exact variant has none.
func (b PriceBook) Lookup(productID string, key VariantKey) (PriceEntry, bool) {
	byVariant, ok := b[productID]
	if !ok {
		return PriceEntry{}, false
	}
	if entry, ok := byVariant[key]; ok {
		return entry, true
	}
	entry, ok := byVariant[DefaultVariant]
	return entry, ok
}

// BalanceBook holds stock balances grouped by product id then variant.
type BalanceBook map[string]map[VariantKey]BalanceEntry

// Put stores a balance, replacing any previous entry for the same key.
func (b BalanceBook) Put(productID string, key VariantKey, entry BalanceEntry) {
	byVariant, ok := b[productID]
	if !ok {
		byVariant = make(map[VariantKey]BalanceEntry)
		b[productID] = byVariant
	}
	byVariant[key] = entry
}

// Quantity resolves the stock for (productID, key) with the same fallback as
// PriceBook.Lookup. Unresolved balances are 0.
func (b BalanceBook) Quantity(productID string, key VariantKey) int64 {
	byVariant, ok := b[productID]
	if !ok {
		return 0
	}
	if entry, ok := byVariant[key]; ok {
		return entry.Quantity
	}
	return byVariant[DefaultVariant].Quantity
}
