package models

import "github.com/shopspring/decimal"

// Category is a node of the product category tree. ParentID is empty for roots.
type Category struct {
	ID        string
	ParentID  string
	Name      string
	SortOrder int
}

// Brand is a read-only lookup record used while building offers.
type Brand struct {
	ID       string
	Name     string
	ImageURL string
}

// Property is a single name/value/type triple attached to a product or
// one of its characteristics.
type Property struct {
	Name  string
	Value string
	Type  string
}

// Characteristic is a sellable variant of a product (size, color, ...).
type Characteristic struct {
	ID         string
	Name       string
	Images     []string
	Properties []Property
}

// Product is a nomenclature record with its nested characteristics.
// Characteristics keep source order and hold unique ids.
type Product struct {
	ID              string
	Code            string
	Name            string
	FullName        string
	Description     string
	Article         string
	BrandID         string
	CategoryID      string
	Images          []string
	Characteristics []Characteristic
	Properties      []Property
}

// OfferCode is the human-facing offer identifier base: the product code,
// or the product id when the code is empty.
func (p *Product) OfferCode() string {
	if p.Code != "" {
		return p.Code
	}
	return p.ID
}

// PutCharacteristic adds c, replacing an existing characteristic with the same
// id in place so that ids stay unique and first-seen order is preserved.
func (p *Product) PutCharacteristic(c Characteristic) {
	for i := range p.Characteristics {
		if p.Characteristics[i].ID == c.ID {
			p.Characteristics[i] = c
			return
		}
	}
	p.Characteristics = append(p.Characteristics, c)
}

// Characteristic returns the characteristic with the given id.
func (p *Product) Characteristic(id string) (*Characteristic, bool) {
	for i := range p.Characteristics {
		if p.Characteristics[i].ID == id {
			return &p.Characteristics[i], true
		}
	}
	return nil, false
}

// PriceEntry is the price of a product variant.
type PriceEntry struct {
	Amount   decimal.Decimal
	Currency string
}

// FormattedAmount renders the amount with exactly two decimal places.
func (p PriceEntry) FormattedAmount() string {
	return p.Amount.StringFixed(2)
}

// BalanceEntry is the stock quantity of a product variant.
type BalanceEntry struct {
	Quantity int64
}
