package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vrsandeep/docscan/internal/models"
)

// RegisterRegex binds the built-in pattern extractors for every category.
func RegisterRegex(r *Registry) {
	r.Register(models.CategoryDeliveryChallan, SourceRegex, Text(DeliveryChallan))
	r.Register(models.CategoryLRCopy, SourceRegex, Text(LRCopy))
	r.Register(models.CategoryTaxInvoice, SourceRegex, Text(TaxInvoice))
	r.Register(models.CategoryWeighbridge, SourceRegex, Text(Weighbridge))
	r.Register(models.CategoryEWayBill, SourceRegex, Text(EWayBill))
}

// FieldNames lists the fields each category extracts, in display order.
var FieldNames = map[models.Category][]string{
	models.CategoryDeliveryChallan: {"Vehicle Number", "Date", "No.", "Transporter Name", "Qty", "Consignor", "Consignee", "From State", "To State"},
	models.CategoryLRCopy:          {"Vehicle Number", "Date", "No.", "Transporter Name", "Qty", "Consignor", "Consignee", "From State", "To State"},
	models.CategoryWeighbridge:     {"Date", "Vehicle No", "Weighbridge Name", "Material", "Net Weight (Tons)"},
	models.CategoryTaxInvoice:      {"Vehicle Number", "Date", "Invoice No", "Material Name", "Net Weight (Tons)"},
	models.CategoryEWayBill:        {"Generated Date", "Bill No", "Net Weight (Tons)", "Valid Upto", "From State", "To State", "Categorization of Plastic"},
}

var (
	dcDateRe     = regexp.MustCompile(`(?i)\bdate[d]?\s*[:\-]?\s*` + datePattern)
	dcNoRe       = regexp.MustCompile(`(?i)\b(?:dc|challan)\s*no\b\.?\s*[:\-]?\s*([A-Z0-9][A-Z0-9\-/]*)`)
	dcItemsRe    = regexp.MustCompile(`(?is)\bsr\.?\s*no(.{20,800}?)(?:total|special instructions)`)
	decimalQtyRe = regexp.MustCompile(`\b(\d{1,3}\.\d{1,3})\b`)
	dispatchRe   = regexp.MustCompile(`(?i)place of dispatch\s*[:\-]?\s*[A-Za-z ]*\n?\s*\(([A-Za-z ]+)\)`)
	deliveryRe   = regexp.MustCompile(`(?i)place of delivery\s*[:\-]?\s*[A-Za-z ]*\n?\s*\(([A-Za-z ]+)\)`)
)

// DeliveryChallan extracts the fields of a delivery challan.
func DeliveryChallan(text string) models.Fields {
	lines := splitLines(text)
	fields := models.Fields{
		"Vehicle Number":   findVehicle(text),
		"Date":             find(dcDateRe, text),
		"No.":              find(dcNoRe, text),
		"Transporter Name": labelValue(lines, "transporter name", "transporter", "transport name"),
		"Qty":              challanQty(text),
		"Consignor":        labelValue(lines, "consignor"),
		"Consignee":        labelValue(lines, "consignee"),
		"From State":       find(dispatchRe, text),
		"To State":         find(deliveryRe, text),
	}
	if fields["From State"] == models.NotFound {
		fields["From State"] = stateNear(lines, 4, "place of dispatch", "dispatch from")
	}
	if fields["To State"] == models.NotFound {
		fields["To State"] = stateNear(lines, 4, "place of delivery", "ship to")
	}
	return fields
}

// challanQty sums the metric-ton quantities of the item table.
func challanQty(text string) string {
	m := dcItemsRe.FindStringSubmatch(text)
	if m == nil {
		return models.NotFound
	}
	var total float64
	var seen bool
	for _, q := range decimalQtyRe.FindAllStringSubmatch(m[1], -1) {
		if v, ok := parseNumber(q[1]); ok {
			total += v
			seen = true
		}
	}
	if !seen {
		return models.NotFound
	}
	return fmt.Sprintf("%.3f MT", total)
}

var (
	lrNoRe        = regexp.MustCompile(`(?i)\b(?:lr|g\.?r|c\.?n|consignment(?:\s*note)?)\s*no\b\.?\s*[:\-]?\s*([A-Z0-9][A-Z0-9\-/]*)`)
	lrDateLineRe  = regexp.MustCompile(`(?i)\bdate\s*[:\-]?\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`)
	bareNumberRe  = regexp.MustCompile(`^\s*(\d{3,6})\s*$`)
	lrQtyRe       = regexp.MustCompile(`(?i)\b(?:qty|quantity|actual weight|charged weight|weight)\s*[:\-]?\s*(\d[\d,]*(?:\.\d+)?)\s*(mt|kgs?|tons?)?`)
	transporterRe = regexp.MustCompile(`(?i)\b(carrier|carriers|carrying|roadlines|roadways|transport|transports|logistics|movers)\b`)
)

// LRCopy extracts the fields of a lorry receipt.
func LRCopy(text string) models.Fields {
	lines := splitLines(text)
	return models.Fields{
		"Vehicle Number":   findVehicle(text),
		"Date":             find(dcDateRe, text),
		"No.":              lrNumber(text, lines),
		"Transporter Name": lrTransporter(lines),
		"Qty":              lrQty(text),
		"Consignor":        labelValue(lines, "consignor"),
		"Consignee":        labelValue(lines, "consignee"),
		"From State":       stateAfter(lines, headingIndex(lines, "from"), 2),
		"To State":         stateAfter(lines, headingIndex(lines, "to"), 2),
	}
}

// lrNumber prefers a labelled consignment number. Printed LR forms often
// carry the number alone a few lines above the date box instead.
func lrNumber(text string, lines []string) string {
	if no := find(lrNoRe, text); no != models.NotFound {
		return no
	}
	for i, ln := range lines {
		if !lrDateLineRe.MatchString(ln) {
			continue
		}
		for back := 1; back < 10 && i-back >= 0; back++ {
			if m := bareNumberRe.FindStringSubmatch(lines[i-back]); m != nil {
				return m[1]
			}
		}
		break
	}
	return models.NotFound
}

func lrTransporter(lines []string) string {
	for _, ln := range lines {
		if transporterRe.MatchString(ln) {
			return strings.TrimSpace(ln)
		}
	}
	return models.NotFound
}

func lrQty(text string) string {
	m := lrQtyRe.FindStringSubmatch(text)
	if m == nil {
		return models.NotFound
	}
	v, ok := parseNumber(m[1])
	if !ok {
		return models.NotFound
	}
	return fmt.Sprintf("%.3f MT", toTons(v, m[2]))
}

var (
	invoiceNoRe   = regexp.MustCompile(`(?i)\binvoice\s*(?:no|number)\b\.?\s*[:\-]?\s*([A-Z0-9][A-Z0-9\-/]*)`)
	invoiceDateRe = regexp.MustCompile(`(?i)\b(?:invoice\s*date|dated|date)\s*[:\-]?\s*` + datePattern)
	netWeightRe   = regexp.MustCompile(`(?i)\b(?:net\s*(?:weight|wt)\.?|quantity|qty)\s*[:\-]?\s*(\d[\d,]*(?:\.\d+)?)\s*(mt|kgs?|tons?)?`)
)

// TaxInvoice extracts the fields of a GST tax invoice.
func TaxInvoice(text string) models.Fields {
	lines := splitLines(text)
	return models.Fields{
		"Vehicle Number":    findVehicle(text),
		"Date":              find(invoiceDateRe, text),
		"Invoice No":        find(invoiceNoRe, text),
		"Material Name":     labelValue(lines, "description of goods", "material", "product"),
		"Net Weight (Tons)": invoiceWeight(text),
	}
}

func invoiceWeight(text string) string {
	m := netWeightRe.FindStringSubmatch(text)
	if m == nil {
		return models.NotFound
	}
	v, ok := parseNumber(m[1])
	if !ok {
		return models.NotFound
	}
	return formatTons(toTons(v, m[2]))
}

var (
	wbNameRe    = regexp.MustCompile(`(?i)weigh\s*bridge`)
	inlineNetRe = regexp.MustCompile(`(?i)net\s*(?:weight|wt)\.?[:\s\-]{0,3}(\d{3,6}(?:,\d{3})*(?:\.\d+)?)`)
	digitsRe    = regexp.MustCompile(`[^\d.]`)
	plainNumRe  = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

// Weighbridge extracts the fields of a weighbridge slip.
func Weighbridge(text string) models.Fields {
	lines := splitLines(text)
	return models.Fields{
		"Date":              find(anyDateRe, text),
		"Vehicle No":        findVehicle(text),
		"Weighbridge Name":  weighbridgeName(lines),
		"Material":          labelValue(lines, "material", "item", "product"),
		"Net Weight (Tons)": weighbridgeNet(lines),
	}
}

func weighbridgeName(lines []string) string {
	for _, ln := range lines {
		if wbNameRe.MatchString(ln) {
			return strings.TrimSpace(ln)
		}
	}
	if i := nextNonEmpty(lines, 0); i >= 0 {
		return strings.TrimSpace(lines[i])
	}
	return models.NotFound
}

// weighbridgeNet reads the net weight in kilograms. Slips print it inline
// ("Net Wt: 12340") or as a label with the figure on a neighbouring line.
func weighbridgeNet(lines []string) string {
	for _, ln := range lines {
		if m := inlineNetRe.FindStringSubmatch(ln); m != nil {
			if v, ok := parseNumber(m[1]); ok {
				return formatTons(v / 1000)
			}
		}
	}
	i, _ := labelIndex(lines, "net weight", "net wt", "net")
	if i < 0 {
		return models.NotFound
	}
	for _, step := range []int{-1, -2, -3, 1, 2, 3} {
		j := i + step
		if j < 0 || j >= len(lines) {
			continue
		}
		raw := lines[j]
		if strings.ContainsAny(raw, "/:") {
			continue
		}
		low := strings.ToLower(raw)
		if strings.Contains(low, "tare") || strings.Contains(low, "gross") || strings.Contains(low, "weight") {
			continue
		}
		val := digitsRe.ReplaceAllString(raw, "")
		if !plainNumRe.MatchString(val) {
			continue
		}
		if v, ok := parseNumber(val); ok {
			return formatTons(v / 1000)
		}
	}
	return models.NotFound
}

var (
	generatedDateRe = regexp.MustCompile(`(?i)generated\s+date\s*[:\-]?\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`)
	validUptoRe     = regexp.MustCompile(`(?i)valid\s+upto\s*[:\-]?\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`)
	billNoRe        = regexp.MustCompile(`\b(\d{10,15})\b`)
	qtyUnitRe       = regexp.MustCompile(`(?i)\b(kgs|kg|mt|tons?)\b`)
	qtyNumberRe     = regexp.MustCompile(`\b(\d{1,6}(?:\.\d+)?)\b`)
	productRe       = regexp.MustCompile(`(?i)product\s+name\s*&\s*desc[^\n]*\n\s*([A-Za-z][A-Za-z\s&]*)`)
)

// EWayBill extracts the fields of a GST e-way bill.
func EWayBill(text string) models.Fields {
	lines := splitLines(text)
	return models.Fields{
		"Generated Date":            find(generatedDateRe, text),
		"Bill No":                   ewayBillNo(lines),
		"Net Weight (Tons)":         ewayQty(lines),
		"Valid Upto":                find(validUptoRe, text),
		"From State":                stateNear(lines, 4, "dispatch from", "from place"),
		"To State":                  stateNear(lines, 4, "ship to", "bill to"),
		"Categorization of Plastic": plasticCategory(text, lines),
	}
}

func ewayBillNo(lines []string) string {
	i, _ := labelIndex(lines, "e-way bill no", "eway bill no", "e-way bill", "eway bill", "transporter doc")
	if i < 0 {
		i = 0
	}
	for j := i; j < len(lines) && j < i+3; j++ {
		if m := billNoRe.FindStringSubmatch(lines[j]); m != nil {
			return m[1]
		}
	}
	return models.NotFound
}

// ewayQty reads the quantity block: a number followed by its unit on the
// same line or the next one.
func ewayQty(lines []string) string {
	i, _ := labelIndex(lines, "quantity")
	if i < 0 {
		return models.NotFound
	}
	for j := i; j < len(lines) && j < i+6; j++ {
		num := qtyNumberRe.FindStringSubmatch(lines[j])
		if num == nil {
			continue
		}
		unit := qtyUnitRe.FindStringSubmatch(lines[j])
		if unit == nil && j+1 < len(lines) {
			unit = qtyUnitRe.FindStringSubmatch(lines[j+1])
		}
		if unit == nil {
			continue
		}
		if v, ok := parseNumber(num[1]); ok {
			return formatTons(toTons(v, unit[1]))
		}
	}
	return models.NotFound
}

func plasticCategory(text string, lines []string) string {
	material := find(productRe, text)
	if material == models.NotFound {
		for _, ln := range lines {
			low := strings.ToLower(ln)
			if strings.Contains(low, "plastic") || strings.Contains(low, "waste") {
				material = strings.TrimSpace(ln)
				break
			}
		}
	}
	if material == models.NotFound {
		return material
	}
	if strings.Contains(strings.ToLower(material), "pet") {
		return "PET"
	}
	return titleCaser.String(strings.ToLower(material))
}
