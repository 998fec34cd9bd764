package extract

import (
	"context"
	"log/slog"
	"strings"

	"invoice2csv/constants"
	"invoice2csv/internal/common"
	"invoice2csv/internal/pdftext"
)

// OCREngine is the OCR backend the extractor shells out to for scanned input.
type OCREngine interface {
	ImageText(ctx context.Context, path string) (string, error)
	PDFText(ctx context.Context, path string) (text string, pages int, err error)
}

// TextExtractor produces raw text for a classified document.
type TextExtractor struct {
	pages  pdftext.Source
	engine OCREngine
	logger *slog.Logger
}

func NewTextExtractor(pages pdftext.Source, engine OCREngine, logger *slog.Logger) *TextExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextExtractor{pages: pages, engine: engine, logger: logger}
}

// Extract returns the raw text of a document, choosing the strategy from its
// classification. Errors carry common.ExtractionFailed; the caller degrades
// them to empty text.
func (t *TextExtractor) Extract(ctx context.Context, doc Document, class Classification) (string, error) {
	switch {
	case doc.Format == constants.IMAGE:
		txt, err := t.engine.ImageText(ctx, doc.Path)
		if err != nil {
			t.logger.Warn("extract.image_ocr_failed", "path", doc.Path, "error", err)
			return "", common.NewStageError(common.ExtractionFailed, err)
		}
		return txt, nil

	case class == Digital:
		texts, err := t.pages.PageTexts(doc.Path)
		if err != nil {
			t.logger.Warn("extract.text_layer_failed", "path", doc.Path, "error", err)
			return "", common.NewStageError(common.ExtractionFailed, err)
		}
		return strings.TrimSpace(strings.Join(texts, "\n")), nil

	default:
		txt, pages, err := t.engine.PDFText(ctx, doc.Path)
		if err != nil {
			t.logger.Warn("extract.pdf_ocr_failed", "path", doc.Path, "error", err)
			return "", common.NewStageError(common.ExtractionFailed, err)
		}
		t.logger.Debug("extract.pdf_ocr_ok", "path", doc.Path, "pages", pages, "bytes", len(txt))
		return txt, nil
	}
}
