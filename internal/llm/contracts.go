package llm

import "context"

// LineItem is one invoice line. Numeric-looking values stay strings so the
// layer never loses locale or formatting information.
type LineItem struct {
	Description string `json:"description,omitempty"`
	Quantity    string `json:"quantity,omitempty"`
	UnitPrice   string `json:"unit_price,omitempty"`
	Total       string `json:"total,omitempty"`
	TaxRate     string `json:"tax_rate,omitempty"`
	Discount    string `json:"discount,omitempty"`
}

// InvoiceFields is the normalized shape we want from the oracle.
type InvoiceFields struct {
	InvoiceNumber   string     `json:"invoice_number,omitempty"`
	Date            string     `json:"date,omitempty"`
	DueDate         string     `json:"due_date,omitempty"`
	VendorName      string     `json:"vendor_name,omitempty"`
	VendorAddress   string     `json:"vendor_address,omitempty"`
	CustomerName    string     `json:"customer_name,omitempty"`
	CustomerAddress string     `json:"customer_address,omitempty"`
	CustomerEmail   string     `json:"customer_email,omitempty"`
	CustomerPhone   string     `json:"customer_phone,omitempty"`
	CustomerTaxID   string     `json:"customer_tax_id,omitempty"`
	TaxAmount       string     `json:"tax_amount,omitempty"`
	ShippingAmount  string     `json:"shipping_amount,omitempty"`
	PaymentTerms    string     `json:"payment_terms,omitempty"`
	PaymentMethod   string     `json:"payment_method,omitempty"`
	InvoiceTotal    string     `json:"invoice_total,omitempty"`
	Items           []LineItem `json:"items"`
}

// Value returns the invoice-level field for a schema key.
func (f InvoiceFields) Value(key string) string {
	switch key {
	case "invoice_number":
		return f.InvoiceNumber
	case "date":
		return f.Date
	case "due_date":
		return f.DueDate
	case "vendor_name":
		return f.VendorName
	case "vendor_address":
		return f.VendorAddress
	case "customer_name":
		return f.CustomerName
	case "customer_address":
		return f.CustomerAddress
	case "customer_email":
		return f.CustomerEmail
	case "customer_phone":
		return f.CustomerPhone
	case "customer_tax_id":
		return f.CustomerTaxID
	case "tax_amount":
		return f.TaxAmount
	case "shipping_amount":
		return f.ShippingAmount
	case "payment_terms":
		return f.PaymentTerms
	case "payment_method":
		return f.PaymentMethod
	case "invoice_total":
		return f.InvoiceTotal
	}
	return ""
}

// Value returns the item-level field for a schema key.
func (it LineItem) Value(key string) string {
	switch key {
	case "description":
		return it.Description
	case "quantity":
		return it.Quantity
	case "unit_price":
		return it.UnitPrice
	case "total":
		return it.Total
	case "tax_rate":
		return it.TaxRate
	case "discount":
		return it.Discount
	}
	return ""
}

// ExtractRequest carries one document's normalized text to an extractor.
type ExtractRequest struct {
	Text       string
	SourceFile string
	Schema     Schema
}

// FieldExtractor is the interface the pipeline depends on.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (InvoiceFields, []byte /*rawJSON*/, error)
}
