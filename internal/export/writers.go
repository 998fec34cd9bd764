package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"invoice2csv/internal/llm"
)

// WriteCSV writes the tabular artifact: one header row from the schema, one
// record per flattened row, in input order.
func WriteCSV(w io.Writer, schema llm.Schema, rows []Row) error {
	cw := csv.NewWriter(w)
	columns := schema.Columns()
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(columns))
	for _, r := range rows {
		for i, col := range columns {
			record[i] = r.Values[col]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the structured artifact: a pretty-printed JSON array with
// the same keys and values as the tabular rows.
func WriteJSON(w io.Writer, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	out, err := json.MarshalIndent(rows, "", "    ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	_, err = w.Write([]byte("\n"))
	return err
}
