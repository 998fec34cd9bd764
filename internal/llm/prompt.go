package llm

import (
	"encoding/json"
	"strings"
)

// exampleValues feeds the example payload embedded in the instruction.
var exampleValues = map[string]string{
	"invoice_number":   "INV-12345",
	"date":             "15-05-2023",
	"due_date":         "20-05-2023",
	"vendor_name":      "ABC Corporation",
	"vendor_address":   "123 Main St, City, Country",
	"customer_name":    "XYZ Company",
	"customer_address": "456 Business Ave, Town, Country",
	"customer_email":   "contact@xyzcompany.com",
	"customer_phone":   "+1-234-567-8900",
	"customer_tax_id":  "TAX123456",
	"invoice_total":    "1250.50",
	"tax_amount":       "125.05",
	"shipping_amount":  "25.00",
	"payment_terms":    "Net 30",
	"payment_method":   "Bank Transfer",
	"description":      "Widget A",
	"quantity":         "2",
	"unit_price":       "500.00",
	"total":            "1000.00",
	"tax_rate":         "10%",
	"discount":         "0.00",
}

// BuildPrompt composes the fixed instruction: field list from the schema
// descriptor, the normalized invoice text, and an example payload. The
// oracle is asked for a single bare JSON object.
func BuildPrompt(req ExtractRequest) string {
	var b strings.Builder

	b.WriteString("Extract the following fields from this invoice text. Return only a JSON object with these fields:\n")
	for _, f := range req.Schema.InvoiceFields() {
		b.WriteString("- ")
		b.WriteString(f.Key)
		b.WriteString("\n")
	}
	b.WriteString("- items: a list of objects, each with:\n")
	for _, f := range req.Schema.Item {
		b.WriteString("    - ")
		b.WriteString(f.Key)
		b.WriteString("\n")
	}
	b.WriteString("\nIf any field is not found, return an empty string for that field. For items, return an empty list if not found.\n")

	b.WriteString("\nInvoice Text:\n")
	b.WriteString(req.Text)
	b.WriteString("\n")

	b.WriteString("\nReturn ONLY the JSON object, nothing else. Example format:\n")
	b.WriteString(examplePayload(req.Schema))

	return b.String()
}

func examplePayload(s Schema) string {
	obj := map[string]any{}
	for _, f := range s.InvoiceFields() {
		obj[f.Key] = exampleValues[f.Key]
	}
	item := map[string]any{}
	for _, f := range s.Item {
		item[f.Key] = exampleValues[f.Key]
	}
	obj["items"] = []any{item}

	out, _ := json.MarshalIndent(obj, "", "    ")
	return string(out)
}
