package extract

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"invoice2csv/constants"
	"invoice2csv/internal/pdftext"
)

// Classification says whether a document carries a usable text layer.
type Classification string

const (
	Digital Classification = "digital"
	Scanned Classification = "scanned"
)

// DigitalTextThreshold is the trimmed character count a single page must
// exceed for a PDF to count as digital.
const DigitalTextThreshold = 50

// Classifier decides between the text-layer path and the OCR path.
type Classifier struct {
	pages  pdftext.Source
	logger *slog.Logger
}

func NewClassifier(pages pdftext.Source, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{pages: pages, logger: logger}
}

// Classify is a read-only heuristic probe. Images are always scanned. A PDF
// is digital iff some page's trimmed text exceeds the threshold. Any read
// error resolves to scanned; classification never fails.
func (c *Classifier) Classify(doc Document) Classification {
	if doc.Format == constants.IMAGE {
		return Scanned
	}
	texts, err := c.pages.PageTexts(doc.Path)
	if err != nil {
		c.logger.Debug("classify.pdf_unreadable", "path", doc.Path, "error", err)
		return Scanned
	}
	for _, t := range texts {
		if utf8.RuneCountInString(strings.TrimSpace(t)) > DigitalTextThreshold {
			return Digital
		}
	}
	return Scanned
}
