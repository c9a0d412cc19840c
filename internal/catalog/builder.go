package catalog

import (
	"strings"
	"time"

	"github.com/GTDGit/ultra_import/internal/models"
)

const (
	articleParamName = "Артикул"
	articleParamCode = "article"
)

// Input is the parsed content of the five datasets.
type Input struct {
	Categories []models.Category
	Brands     map[string]models.Brand
	Products   []models.Product
	Prices     models.PriceBook
	Balances   models.BalanceBook
}

// Stats summarizes a built document.
type Stats struct {
	Categories         int `json:"categories"`
	Products           int `json:"products"`
	Offers             int `json:"offers"`
	OffersWithoutPrice int `json:"offers_without_price"`
}

// Builder fuses parsed datasets into a yml_catalog document.
type Builder struct {
	// URLTemplate is the product page URL; "{code}" is replaced with the product code.
	URLTemplate string
	Vendor      string
	Now         func() time.Time
}

// NewBuilder constructs a Builder using the wall clock.
func NewBuilder(urlTemplate, vendor string) *Builder {
	return &Builder{URLTemplate: urlTemplate, Vendor: vendor, Now: time.Now}
}

// Build produces the catalog. Categories and offers keep input order.
func (b *Builder) Build(in Input) (*Document, Stats) {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}

	doc := &Document{Date: now().Format(DateFormat)}
	stats := Stats{Categories: len(in.Categories), Products: len(in.Products)}

	doc.Shop.Categories.Items = make([]CategoryNode, 0, len(in.Categories))
	for _, c := range in.Categories {
		doc.Shop.Categories.Items = append(doc.Shop.Categories.Items, CategoryNode{
			ID:       c.ID,
			ParentID: c.ParentID,
			Name:     c.Name,
		})
	}

	doc.Shop.Offers.Items = []Offer{}
	for i := range in.Products {
		p := &in.Products[i]
		if len(p.Characteristics) == 0 {
			doc.Shop.Offers.Items = append(doc.Shop.Offers.Items, b.offer(in, p, models.DefaultVariant, nil))
			continue
		}
		for j := range p.Characteristics {
			c := &p.Characteristics[j]
			doc.Shop.Offers.Items = append(doc.Shop.Offers.Items, b.offer(in, p, models.CharacteristicVariant(c.ID), c))
		}
	}

	stats.Offers = len(doc.Shop.Offers.Items)
	for i := range doc.Shop.Offers.Items {
		if doc.Shop.Offers.Items[i].Price == "" {
			stats.OffersWithoutPrice++
		}
	}
	return doc, stats
}

// offer builds the offer for one variant. c is nil for the default variant.
func (b *Builder) offer(in Input, p *models.Product, key models.VariantKey, c *models.Characteristic) Offer {
	o := Offer{
		ID:          p.OfferCode(),
		ProductID:   p.ID,
		Quantity:    in.Balances.Quantity(p.ID, key),
		URL:         strings.ReplaceAll(b.URLTemplate, "{code}", p.Code),
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		XMLID:       p.ID,
		ProductName: p.FullName,
		Vendor:      b.Vendor,
	}
	if o.ProductName == "" {
		o.ProductName = p.Name
	}
	if !key.IsDefault() {
		o.ID += "-" + key.CharacteristicID()
		o.CharacteristicID = key.CharacteristicID()
	}

	if price, ok := in.Prices.Lookup(p.ID, key); ok {
		o.Price = price.FormattedAmount()
		o.PriceAttr = o.Price
	}

	o.Pictures = appendNonEmpty(o.Pictures, p.Images)
	specs := p.Properties
	if c != nil {
		o.Pictures = appendNonEmpty(o.Pictures, c.Images)
		specs = append(append([]models.Property{}, p.Properties...), c.Properties...)
		name := c.Name
		o.CharacteristicName = &name
	}

	if brand, ok := in.Brands[p.BrandID]; ok && p.BrandID != "" {
		o.Brand = &BrandNode{Name: brand.Name, Picture: brand.ImageURL}
	}

	if p.Article != "" {
		o.Params = []Param{{Name: articleParamName, Code: articleParamCode, Value: p.Article}}
	}

	for _, prop := range specs {
		o.Specifications = append(o.Specifications, Specification{
			Name:  prop.Name,
			Type:  prop.Type,
			Value: prop.Value,
		})
	}
	return o
}

func appendNonEmpty(dst, src []string) []string {
	for _, s := range src {
		if s != "" {
			dst = append(dst, s)
		}
	}
	return dst
}
