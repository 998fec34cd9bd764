package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackReturnsEmptySchemaConformantRecord(t *testing.T) {
	fb := NewFallback(nil)
	fields, raw, err := fb.ExtractFields(context.Background(), ExtractRequest{
		Text:       "anything at all",
		SourceFile: "doc.pdf",
		Schema:     Full(),
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), raw)
	assert.NotNil(t, fields.Items)
	assert.Empty(t, fields.Items)
	for _, f := range Full().InvoiceFields() {
		assert.Equal(t, "", fields.Value(f.Key))
	}
}
