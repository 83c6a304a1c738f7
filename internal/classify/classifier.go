// Package classify assigns OCR text to one of the known transport document
// categories using keyword rules.
package classify

import (
	"regexp"
	"strings"

	"github.com/vrsandeep/docscan/internal/models"
)

var weighBridgeHeader = regexp.MustCompile(`weigh\s*bridge`)

// Category returns the document category for raw OCR text. Rules are
// checked in priority order; text matching none is CategoryUnknown.
func Category(rawText string) models.Category {
	if strings.TrimSpace(rawText) == "" {
		return models.CategoryUnknown
	}
	text := Normalize(rawText)

	switch {
	case containsAny(text, "eway bill", "e-way bill") &&
		containsAll(text, "generated date", "vehicle", "quantity"):
		return models.CategoryEWayBill

	case containsAny(text, "delivery challan", "dc no"):
		return models.CategoryDeliveryChallan

	case containsAny(text, "lr copy", "lorry receipt", "consignment note"):
		return models.CategoryLRCopy

	// "net wt" alone is not enough: it also appears on LR copies and invoices.
	case containsAll(text, "gross wt", "tare wt") || weighBridgeHeader.MatchString(text):
		return models.CategoryWeighbridge

	case containsAny(text, "tax invoice", "invoice no"):
		return models.CategoryTaxInvoice
	}
	return models.CategoryUnknown
}

func containsAny(text string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func containsAll(text string, needles ...string) bool {
	for _, n := range needles {
		if !strings.Contains(text, n) {
			return false
		}
	}
	return true
}
