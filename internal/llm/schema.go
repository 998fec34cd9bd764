package llm

import "fmt"

// SourceFileColumn is the provenance column appended to every output row.
const SourceFileColumn = "Source File"

// Field pairs a JSON key in the oracle contract with its output column label.
type Field struct {
	Key   string
	Label string
}

// Schema describes one field-set variant of the extraction contract. The
// pipeline is parameterized by a Schema so adding or narrowing fields never
// duplicates the pipeline itself.
//
// Head fields come before the item columns in tabular output, Tail fields
// after them; both are invoice-level.
type Schema struct {
	Name string
	Head []Field
	Item []Field
	Tail []Field
}

// Full is the canonical schema: every field the richer contract variant knows.
func Full() Schema {
	return Schema{
		Name: "full",
		Head: []Field{
			{"invoice_number", "Invoice Number"},
			{"date", "Date"},
			{"due_date", "Due Date"},
			{"vendor_name", "Vendor Name"},
			{"vendor_address", "Vendor Address"},
			{"customer_name", "Customer Name"},
			{"customer_address", "Customer Address"},
			{"customer_email", "Customer Email"},
			{"customer_phone", "Customer Phone"},
			{"customer_tax_id", "Customer Tax ID"},
			{"tax_amount", "Tax Amount"},
			{"shipping_amount", "Shipping Amount"},
			{"payment_terms", "Payment Terms"},
			{"payment_method", "Payment Method"},
		},
		Item: []Field{
			{"description", "Item Description"},
			{"quantity", "Quantity"},
			{"unit_price", "Unit Price"},
			{"total", "Item Total"},
			{"tax_rate", "Item Tax Rate"},
			{"discount", "Item Discount"},
		},
		Tail: []Field{
			{"invoice_total", "Invoice Total"},
		},
	}
}

// Basic is the narrower variant: header essentials plus plain line items.
func Basic() Schema {
	return Schema{
		Name: "basic",
		Head: []Field{
			{"invoice_number", "Invoice Number"},
			{"date", "Date"},
			{"due_date", "Due Date"},
			{"vendor_name", "Vendor Name"},
			{"vendor_address", "Vendor Address"},
		},
		Item: []Field{
			{"description", "Item Description"},
			{"quantity", "Quantity"},
			{"unit_price", "Unit Price"},
			{"total", "Item Total"},
		},
		Tail: []Field{
			{"invoice_total", "Invoice Total"},
		},
	}
}

// SchemaByName resolves a configured schema name.
func SchemaByName(name string) (Schema, error) {
	switch name {
	case "", "full":
		return Full(), nil
	case "basic":
		return Basic(), nil
	}
	return Schema{}, fmt.Errorf("unknown schema %q (want full or basic)", name)
}

// InvoiceFields returns the invoice-level fields in contract order.
func (s Schema) InvoiceFields() []Field {
	out := make([]Field, 0, len(s.Head)+len(s.Tail))
	out = append(out, s.Head...)
	out = append(out, s.Tail...)
	return out
}

// Columns returns the ordered output column labels, provenance last.
func (s Schema) Columns() []string {
	cols := make([]string, 0, len(s.Head)+len(s.Item)+len(s.Tail)+1)
	for _, f := range s.Head {
		cols = append(cols, f.Label)
	}
	for _, f := range s.Item {
		cols = append(cols, f.Label)
	}
	for _, f := range s.Tail {
		cols = append(cols, f.Label)
	}
	return append(cols, SourceFileColumn)
}

// JSONSchema builds the validation schema for an oracle response. Every
// field is an optional string; items is an array of objects over the item
// sub-schema. Unknown keys are rejected (the lenient sanitize pass removes
// them before validation).
func (s Schema) JSONSchema() map[string]any {
	props := map[string]any{}
	for _, f := range s.InvoiceFields() {
		props[f.Key] = map[string]any{"type": "string"}
	}

	itemProps := map[string]any{}
	for _, f := range s.Item {
		itemProps[f.Key] = map[string]any{"type": "string"}
	}
	props["items"] = map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties":           itemProps,
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}
