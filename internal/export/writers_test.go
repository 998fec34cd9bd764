package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"invoice2csv/internal/llm"
)

func TestWriteCSVHeaderAndRecords(t *testing.T) {
	schema := llm.Full()
	rows := Flatten(schema, sampleFields(), "inv.pdf")

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, schema, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + 2 items

	assert.Equal(t, schema.Columns(), records[0])
	for i, rec := range records[1:] {
		require.Len(t, rec, len(schema.Columns()))
		for j, col := range schema.Columns() {
			assert.Equal(t, rows[i].Values[col], rec[j])
		}
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	schema := llm.Full()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, schema, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1) // header only
}

func TestWriteJSONMatchesCSVContent(t *testing.T) {
	schema := llm.Full()
	rows := Flatten(schema, sampleFields(), "inv.pdf")

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, rows))

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, len(rows))

	for i, obj := range decoded {
		assert.Len(t, obj, len(schema.Columns()))
		for _, col := range schema.Columns() {
			assert.Equal(t, rows[i].Values[col], obj[col])
		}
	}
}

func TestWriteJSONKeyOrderFollowsColumns(t *testing.T) {
	schema := llm.Basic()
	rows := Flatten(schema, sampleFields(), "inv.pdf")

	b, err := json.Marshal(rows[0])
	require.NoError(t, err)

	dec := json.NewDecoder(bytes.NewReader(b))
	_, err = dec.Token() // opening {
	require.NoError(t, err)

	var keys []string
	for i := 0; i < len(schema.Columns()); i++ {
		tok, err := dec.Token()
		require.NoError(t, err)
		keys = append(keys, tok.(string))
		_, err = dec.Token() // value
		require.NoError(t, err)
	}
	assert.Equal(t, schema.Columns(), keys)
}

func TestWriteJSONNilRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	schema := llm.Full()
	rows := Flatten(schema, sampleFields(), "inv.pdf")

	b, err := WriteXLSX(schema, rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Invoices")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, schema.Columns(), got[0])
	assert.Equal(t, "Widget A", got[1][14]) // first item column in the full layout
}
