// Package extract classifies input documents and turns them into raw text.
package extract

import (
	"fmt"
	"path/filepath"

	"invoice2csv/constants"
)

// Document is an immutable reference to one input file.
type Document struct {
	Path   string
	Format string // constants.PDF | constants.IMAGE
}

// NewDocument builds a Document from a file path, deriving the format from
// the extension. Unsupported extensions are an error.
func NewDocument(path string) (Document, error) {
	format := constants.MapExtToFormat(filepath.Ext(path))
	if format == "" {
		return Document{}, fmt.Errorf("unsupported file extension: %q", filepath.Ext(path))
	}
	return Document{Path: path, Format: format}, nil
}
