// Package pdftext reads the machine-readable text layer of PDF documents.
package pdftext

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Source yields the text layer of each page of a PDF, in page order.
// An interface so tests can stub documents without real files.
type Source interface {
	PageTexts(path string) ([]string, error)
}

// Reader is the production Source backed by github.com/ledongthuc/pdf.
type Reader struct{}

// PageTexts returns one string per page; pages with no usable text layer
// contribute "". The pdf library panics on some malformed documents, so the
// whole read is guarded and reported as an error instead.
func (Reader) PageTexts(path string) (texts []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			texts = nil
			err = fmt.Errorf("pdf read panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	n := r.NumPage()
	texts = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			texts = append(texts, "")
			continue
		}
		txt, perr := p.GetPlainText(nil)
		if perr != nil {
			texts = append(texts, "")
			continue
		}
		texts = append(texts, txt)
	}
	return texts, nil
}
