package parser

import (
	"encoding/xml"

	"github.com/GTDGit/ultra_import/internal/models"
)

type propertyRecord struct {
	PropertyName *string `xml:"property>name"`
	SimpleValue  *string `xml:"value>simpleValue"`
	ValueName    *string `xml:"value>name"`
	ValueType    *string `xml:"value>type"`
}

type characteristicRecord struct {
	UUID       *string          `xml:"UUID"`
	Name       *string          `xml:"name"`
	Images     []imageRecord    `xml:"imageList>image"`
	Properties []propertyRecord `xml:"propertyList>propertyValue"`
}

type productRecord struct {
	UUID            *string                `xml:"UUID"`
	Code            *string                `xml:"code"`
	Name            *string                `xml:"name"`
	FullName        *string                `xml:"fullName"`
	Description     *string                `xml:"description"`
	Article         *string                `xml:"article"`
	Brand           *string                `xml:"brand"`
	Category        *string                `xml:"nomenclatureType"`
	Images          []imageRecord          `xml:"imageList>image"`
	Characteristics []characteristicRecord `xml:"characteristicList>characteristic"`
	Properties      []propertyRecord       `xml:"propertyList>propertyValue"`
}

// ParseProducts extracts nomenclature records with their characteristics in
// document order.
func ParseProducts(payload string) ([]models.Product, error) {
	products := []models.Product{}
	if isEmpty(payload) {
		return products, nil
	}

	err := eachElement(models.DatasetProducts, payload, "nomenclature", func(d *xml.Decoder, start *xml.StartElement) error {
		var rec productRecord
		if err := d.DecodeElement(&rec, start); err != nil {
			return err
		}
		products = append(products, rec.toModel())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRecord) toModel() models.Product {
	p := models.Product{
		ID:          text(r.UUID),
		Code:        text(r.Code),
		Name:        text(r.Name),
		FullName:    text(r.FullName),
		Description: text(r.Description),
		Article:     text(r.Article),
		BrandID:     text(r.Brand),
		CategoryID:  text(r.Category),
		Images:      imageURLs(r.Images),
		Properties:  properties(r.Properties),
	}
	for i := range r.Characteristics {
		c := &r.Characteristics[i]
		// prices and balances cannot reference a characteristic without an id
		id := text(c.UUID)
		if id == "" {
			continue
		}
		p.PutCharacteristic(models.Characteristic{
			ID:         id,
			Name:       text(c.Name),
			Images:     imageURLs(c.Images),
			Properties: properties(c.Properties),
		})
	}
	return p
}

// imageURLs resolves each image to its preferred path, skipping images with
// neither path set.
func imageURLs(images []imageRecord) []string {
	urls := make([]string, 0, len(images))
	for i := range images {
		if u := images[i].url(); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// properties resolves values preferring the simple value over the named value.
func properties(records []propertyRecord) []models.Property {
	props := make([]models.Property, 0, len(records))
	for i := range records {
		r := &records[i]
		props = append(props, models.Property{
			Name:  text(r.PropertyName),
			Value: coalesce(r.SimpleValue, r.ValueName),
			Type:  text(r.ValueType),
		})
	}
	return props
}
