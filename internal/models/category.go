package models

// Category is the document type a page was classified as.
type Category string

const (
	CategoryDeliveryChallan Category = "Delivery Challan"
	CategoryLRCopy          Category = "LR Copy"
	CategoryTaxInvoice      Category = "Tax Invoice"
	CategoryWeighbridge     Category = "Weighbridge"
	CategoryEWayBill        Category = "E Way Bill"
	CategoryUnknown         Category = "Unknown"
)

// Categories lists every recognised category in classification priority order.
var Categories = []Category{
	CategoryEWayBill,
	CategoryDeliveryChallan,
	CategoryLRCopy,
	CategoryWeighbridge,
	CategoryTaxInvoice,
}

// ParseCategory matches a label exactly against the known categories.
func ParseCategory(label string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == label {
			return c, true
		}
	}
	return CategoryUnknown, false
}
