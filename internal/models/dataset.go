package models

// DatasetKind names one of the five datasets served by the Ultra web service.
type DatasetKind string

const (
	DatasetCategories DatasetKind = "categories"
	DatasetBrands     DatasetKind = "brands"
	DatasetProducts   DatasetKind = "products"
	DatasetPrices     DatasetKind = "prices"
	DatasetBalances   DatasetKind = "balances"
)

// ExportOrder is the order in which datasets are fetched during an export.
var ExportOrder = []DatasetKind{
	DatasetCategories,
	DatasetBrands,
	DatasetProducts,
	DatasetPrices,
	DatasetBalances,
}

var serviceNames = map[DatasetKind]string{
	DatasetCategories: "NOMENCLATURETYPELIST",
	DatasetBrands:     "BRAND",
	DatasetProducts:   "NOMENCLATURE",
	DatasetPrices:     "PRICELIST",
	DatasetBalances:   "BALANCE",
}

// ServiceName returns the remote service identifier for the dataset
// (the value sent as `Service` in requestData).
func (k DatasetKind) ServiceName() string {
	if name, ok := serviceNames[k]; ok {
		return name
	}
	return string(k)
}

// Valid reports whether k is one of the known dataset kinds.
func (k DatasetKind) Valid() bool {
	_, ok := serviceNames[k]
	return ok
}

func (k DatasetKind) String() string {
	return string(k)
}
