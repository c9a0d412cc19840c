package parser

import (
	"encoding/xml"
	"math"

	"github.com/GTDGit/ultra_import/internal/models"
)

type categoryRecord struct {
	UUID    *string `xml:"UUID"`
	Parent  *string `xml:"parent"`
	Name    *string `xml:"name"`
	OrderBy *string `xml:"orderBy"`
}

// ParseCategories extracts nomenclatureType records in document order.
func ParseCategories(payload string) ([]models.Category, error) {
	categories := []models.Category{}
	if isEmpty(payload) {
		return categories, nil
	}

	err := eachElement(models.DatasetCategories, payload, "nomenclatureType", func(d *xml.Decoder, start *xml.StartElement) error {
		var rec categoryRecord
		if err := d.DecodeElement(&rec, start); err != nil {
			return err
		}
		categories = append(categories, models.Category{
			ID:        text(rec.UUID),
			ParentID:  text(rec.Parent),
			Name:      text(rec.Name),
			SortOrder: int(min(integer(rec.OrderBy), math.MaxInt)),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

type imageRecord struct {
	PathGlobal *string `xml:"pathGlobal"`
	Path       *string `xml:"path"`
}

// url prefers the global path over the local one.
func (r *imageRecord) url() string {
	if r == nil {
		return ""
	}
	return firstNonEmpty(r.PathGlobal, r.Path)
}

type brandRecord struct {
	UUID  *string      `xml:"UUID"`
	Name  *string      `xml:"name"`
	Image *imageRecord `xml:"image"`
}

// ParseBrands extracts brand records keyed by id. A repeated id replaces the
// earlier record.
func ParseBrands(payload string) (map[string]models.Brand, error) {
	brands := map[string]models.Brand{}
	if isEmpty(payload) {
		return brands, nil
	}

	err := eachElement(models.DatasetBrands, payload, "brand", func(d *xml.Decoder, start *xml.StartElement) error {
		var rec brandRecord
		if err := d.DecodeElement(&rec, start); err != nil {
			return err
		}
		id := text(rec.UUID)
		brands[id] = models.Brand{
			ID:       id,
			Name:     text(rec.Name),
			ImageURL: rec.Image.url(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return brands, nil
}
