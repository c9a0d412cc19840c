package catalog

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// DateFormat is the layout of the yml_catalog date attribute.
const DateFormat = "2006-01-02 15:04"

// Document is the yml_catalog feed.
type Document struct {
	XMLName xml.Name `xml:"yml_catalog"`
	Date    string   `xml:"date,attr"`
	Shop    Shop     `xml:"shop"`
}

// Shop always carries both sections, even when they are empty.
type Shop struct {
	Categories Categories `xml:"categories"`
	Offers     Offers     `xml:"offers"`
}

type Categories struct {
	Items []CategoryNode `xml:"category"`
}

type Offers struct {
	Items []Offer `xml:"offer"`
}

type CategoryNode struct {
	ID       string `xml:"id,attr"`
	ParentID string `xml:"parentId,attr,omitempty"`
	Name     string `xml:"name"`
}

// Offer is one sellable variant of a product. Attributes and children are
// declared in output order.
type Offer struct {
	ID               string          `xml:"id,attr"`
	ProductID        string          `xml:"productId,attr"`
	CharacteristicID string          `xml:"characteristicId,attr,omitempty"`
	Quantity         int64           `xml:"quantity,attr"`
	PriceAttr        string          `xml:"price,attr,omitempty"`
	URL              string          `xml:"url"`
	Price            string          `xml:"price,omitempty"`
	CategoryID       string          `xml:"categoryId"`
	Pictures         []string        `xml:"picture"`
	Name             string          `xml:"name"`
	XMLID            string          `xml:"xmlId"`
	ProductName      string          `xml:"productName"`
	Brand            *BrandNode      `xml:"brand"`
	Vendor           string          `xml:"vendor"`
	Params           []Param         `xml:"param"`
	Specifications   []Specification `xml:"specification"`
	// CharacteristicName is nil for the default variant.
	CharacteristicName *string `xml:"characteristicName"`
}

type BrandNode struct {
	Name    string `xml:"name"`
	Picture string `xml:"picture,omitempty"`
}

type Param struct {
	Name  string `xml:"name,attr"`
	Code  string `xml:"code,attr"`
	Value string `xml:",chardata"`
}

type Specification struct {
	Name  string `xml:"name,attr"`
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

// Marshal serializes the document with an XML declaration and two-space
// indentation.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal catalog: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
