package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vrsandeep/docscan/internal/models"
)

const challanText = `DELIVERY CHALLAN
DC No: DC-2024/118
Date: 12/03/2024
Vehicle No: MH12AB1234
Consignor: Shree Polymers
Consignee: Green Recyclers
Transporter Name: Bharat Roadlines
Place of Dispatch: Pune
(Maharashtra)
Place of Delivery: Surat
(Gujarat)
SR NO  DESCRIPTION  QTY
1  PET Flakes  12.500
2  HDPE Regrind  3.250
TOTAL`

const lrText = `SHREE BALAJI ROADLINES
Consignment Note
LR No: 4587
Date: 05/02/2024
Truck No: GJ05AB7781
Consignor
Shree Polymers Pvt Ltd
Consignee
Green Recyclers
From
Vapi
(Gujarat)
To
Nashik
(Maharashtra)
Actual Weight: 9500 KGS`

const weighbridgeText = `SAI KRUPA WEIGH BRIDGE
Date: 14/03/2024
Vehicle No: MH 04 GH 5521
Material: HDPE Scrap
Gross Wt: 24560 Kg
Tare Wt: 12220 Kg
Net Wt: 12340 Kg`

const invoiceText = `TAX INVOICE
Invoice No: GST/2024/556
Invoice Date: 02-04-2024
Vehicle No. KA01MN4321
Description of Goods
PP Granules
Net Weight: 8,750 KG`

const ewayText = `e-Way Bill
E-Way Bill No: 331009876543
Generated Date: 10/04/2024 11:32 AM
Valid Upto: 12/04/2024
Dispatch From
Plot 12, GIDC Vapi, Gujarat 396195
Ship To
MIDC Nashik, Maharashtra 422010
Quantity
9500
KGS
Product Name & Desc
PET BOTTLE SCRAP`

func TestRegexExtractors(t *testing.T) {
	testCases := []struct {
		name     string
		extract  func(string) models.Fields
		text     string
		expected models.Fields
	}{
		{
			name:    "Delivery challan",
			extract: DeliveryChallan,
			text:    challanText,
			expected: models.Fields{
				"Vehicle Number":   "MH12AB1234",
				"Date":             "12/03/2024",
				"No.":              "DC-2024/118",
				"Transporter Name": "Bharat Roadlines",
				"Qty":              "15.750 MT",
				"Consignor":        "Shree Polymers",
				"Consignee":        "Green Recyclers",
				"From State":       "Maharashtra",
				"To State":         "Gujarat",
			},
		},
		{
			name:    "LR copy",
			extract: LRCopy,
			text:    lrText,
			expected: models.Fields{
				"Vehicle Number":   "GJ05AB7781",
				"Date":             "05/02/2024",
				"No.":              "4587",
				"Transporter Name": "SHREE BALAJI ROADLINES",
				"Qty":              "9.500 MT",
				"Consignor":        "Shree Polymers Pvt Ltd",
				"Consignee":        "Green Recyclers",
				"From State":       "Gujarat",
				"To State":         "Maharashtra",
			},
		},
		{
			name:    "Weighbridge slip",
			extract: Weighbridge,
			text:    weighbridgeText,
			expected: models.Fields{
				"Date":              "14/03/2024",
				"Vehicle No":        "MH04GH5521",
				"Weighbridge Name":  "SAI KRUPA WEIGH BRIDGE",
				"Material":          "HDPE Scrap",
				"Net Weight (Tons)": "12.340",
			},
		},
		{
			name:    "Tax invoice",
			extract: TaxInvoice,
			text:    invoiceText,
			expected: models.Fields{
				"Vehicle Number":    "KA01MN4321",
				"Date":              "02-04-2024",
				"Invoice No":        "GST/2024/556",
				"Material Name":     "PP Granules",
				"Net Weight (Tons)": "8.750",
			},
		},
		{
			name:    "E-way bill",
			extract: EWayBill,
			text:    ewayText,
			expected: models.Fields{
				"Generated Date":            "10/04/2024",
				"Bill No":                   "331009876543",
				"Net Weight (Tons)":         "9.500",
				"Valid Upto":                "12/04/2024",
				"From State":                "Gujarat",
				"To State":                  "Maharashtra",
				"Categorization of Plastic": "PET",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.extract(tc.text))
		})
	}
}

func TestRegexExtractorsReportMissingFields(t *testing.T) {
	for category, fields := range FieldNames {
		t.Run(string(category), func(t *testing.T) {
			r := NewRegistry()
			RegisterRegex(r)
			fn, ok := r.Lookup(category)
			assert.True(t, ok)

			got, err := fn(t.Context(), Input{Text: ""})
			assert.NoError(t, err)
			assert.Len(t, got, len(fields))
			for _, f := range fields {
				assert.Equal(t, models.NotFound, got[f], f)
			}
		})
	}
}

func TestWeighbridgeNetWeightOnNextLine(t *testing.T) {
	text := "KRISHNA WEIGHBRIDGE\nNet Weight\n12340"
	assert.Equal(t, "12.340", Weighbridge(text)["Net Weight (Tons)"])
}

func TestLRNumberAboveDateBox(t *testing.T) {
	text := "GATI ROADWAYS\n7781\n\nDate: 01/01/2024"
	assert.Equal(t, "7781", LRCopy(text)["No."])
}
