// Package pipeline drives one document through classify, text extraction,
// normalization, field extraction and flattening, and runs whole batches.
package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"invoice2csv/internal/common"
	"invoice2csv/internal/export"
	"invoice2csv/internal/extract"
	"invoice2csv/internal/llm"
)

// DocumentResult is the outcome of one document-processing pass. A non-empty
// ErrKind means a stage degraded to its safe default; the rows are still
// well-formed.
type DocumentResult struct {
	Doc            extract.Document
	Classification extract.Classification
	RawText        string
	RawJSON        []byte
	Rows           []export.Row
	ErrKind        common.ErrorKind
	Err            error
}

// Processor runs the per-document pipeline.
type Processor struct {
	logger     *slog.Logger
	classifier *extract.Classifier
	text       *extract.TextExtractor
	oracle     llm.FieldExtractor
	fallback   llm.FieldExtractor
	schema     llm.Schema
}

func NewProcessor(
	classifier *extract.Classifier,
	text *extract.TextExtractor,
	oracle llm.FieldExtractor,
	fallback llm.FieldExtractor,
	schema llm.Schema,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if fallback == nil {
		fallback = llm.NewFallback(logger)
	}
	return &Processor{
		logger:     logger,
		classifier: classifier,
		text:       text,
		oracle:     oracle,
		fallback:   fallback,
		schema:     schema,
	}
}

// Process runs one document through the full pipeline. Stage failures
// degrade (empty text, empty record) and are recorded on the result; the
// pass always produces at least one row.
func (p *Processor) Process(ctx context.Context, doc extract.Document) DocumentResult {
	res := DocumentResult{Doc: doc}

	res.Classification = p.classifier.Classify(doc)
	p.logger.Info("pipeline.document.start",
		"path", doc.Path, "format", doc.Format, "classification", res.Classification)

	text, err := p.text.Extract(ctx, doc, res.Classification)
	if err != nil {
		res.ErrKind = common.KindOf(err)
		res.Err = err
		text = ""
	}
	res.RawText = text

	// Raw (non-normalized) text goes to the diagnostic sidecar.
	p.writeSidecar(doc.Path, text)

	req := llm.ExtractRequest{
		Text:       extract.Normalize(text),
		SourceFile: filepath.Base(doc.Path),
		Schema:     p.schema,
	}

	fields, raw, ferr := p.oracle.ExtractFields(ctx, req)
	if ferr != nil {
		kind := common.KindOf(ferr)
		if kind == "" {
			kind = common.OracleFailed
		}
		res.ErrKind = kind
		res.Err = ferr
		p.logger.Warn("pipeline.oracle_degraded",
			"path", doc.Path, "kind", kind, "error", ferr)
		fields, raw, _ = p.fallback.ExtractFields(ctx, req)
	}
	res.RawJSON = raw
	res.Rows = export.Flatten(p.schema, fields, filepath.Base(doc.Path))

	p.logger.Info("pipeline.document.ok",
		"path", doc.Path,
		"classification", res.Classification,
		"rows", len(res.Rows),
		"degraded", res.ErrKind != "",
	)
	return res
}

// writeSidecar persists the raw extracted text next to the input, with the
// extension replaced by .txt. Failures are diagnostic-only.
func (p *Processor) writeSidecar(path, text string) {
	sidecar := strings.TrimSuffix(path, filepath.Ext(path)) + ".txt"
	if err := os.WriteFile(sidecar, []byte(text), 0o644); err != nil {
		p.logger.Warn("pipeline.sidecar_write_failed", "path", sidecar, "error", err)
	}
}
