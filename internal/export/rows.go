// Package export flattens invoice records into per-item rows and writes the
// tabular and structured artifacts.
package export

import (
	"bytes"
	"encoding/json"

	"invoice2csv/internal/llm"
)

// Row is one flattened line item keyed by output column label. Columns keeps
// the schema's order so CSV, JSON and XLSX emit identical layouts.
type Row struct {
	Columns []string
	Values  map[string]string
}

// MarshalJSON emits the row as an object in column order, not key-sorted.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.Values[col])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Flatten expands one invoice record into one row per line item, repeating
// invoice-level fields on every row. A record with zero items still yields
// exactly one row with empty item fields. Pure, no I/O.
func Flatten(schema llm.Schema, fields llm.InvoiceFields, sourceFile string) []Row {
	items := fields.Items
	if len(items) == 0 {
		items = []llm.LineItem{{}}
	}

	columns := schema.Columns()
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		values := make(map[string]string, len(columns))
		for _, f := range schema.Head {
			values[f.Label] = fields.Value(f.Key)
		}
		for _, f := range schema.Item {
			values[f.Label] = item.Value(f.Key)
		}
		for _, f := range schema.Tail {
			values[f.Label] = fields.Value(f.Key)
		}
		values[llm.SourceFileColumn] = sourceFile
		rows = append(rows, Row{Columns: columns, Values: values})
	}
	return rows
}
