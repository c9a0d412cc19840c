package parser

import (
	"encoding/xml"

	"github.com/GTDGit/ultra_import/internal/models"
)

type priceRecord struct {
	UUID           *string `xml:"UUID"`
	Characteristic *string `xml:"Characteristic"`
	Price          *string `xml:"Price"`
	Currency       *string `xml:"PriceType>valute"`
}

// ParsePrices groups price records by product id and variant. A repeated key
// replaces the earlier record.
func ParsePrices(payload string) (models.PriceBook, error) {
	prices := models.PriceBook{}
	if isEmpty(payload) {
		return prices, nil
	}

	err := eachElement(models.DatasetPrices, payload, "price", func(d *xml.Decoder, start *xml.StartElement) error {
		var rec priceRecord
		if err := d.DecodeElement(&rec, start); err != nil {
			return err
		}
		prices.Put(text(rec.UUID), variantKey(rec.Characteristic), models.PriceEntry{
			Amount:   number(rec.Price),
			Currency: text(rec.Currency),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return prices, nil
}

type balanceRecord struct {
	UUID           *string `xml:"UUID"`
	Characteristic *string `xml:"Characteristic"`
	Quantity       *string `xml:"quantity"`
}

// ParseBalances groups stock balance records the same way as ParsePrices.
func ParseBalances(payload string) (models.BalanceBook, error) {
	balances := models.BalanceBook{}
	if isEmpty(payload) {
		return balances, nil
	}

	err := eachElement(models.DatasetBalances, payload, "balance", func(d *xml.Decoder, start *xml.StartElement) error {
		var rec balanceRecord
		if err := d.DecodeElement(&rec, start); err != nil {
			return err
		}
		balances.Put(text(rec.UUID), variantKey(rec.Characteristic), models.BalanceEntry{
			Quantity: integer(rec.Quantity),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balances, nil
}
