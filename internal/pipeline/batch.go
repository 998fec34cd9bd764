package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"invoice2csv/internal/common"
	"invoice2csv/internal/export"
	"invoice2csv/internal/extract"
	"invoice2csv/internal/repository"
)

// BatchResult accumulates every flattened row plus per-document outcomes,
// both in input document order.
type BatchResult struct {
	Rows      []export.Row
	Documents []DocumentResult
}

// Batch processes a list of input files and writes the output artifacts.
type Batch struct {
	logger    *slog.Logger
	processor *Processor
	workers   int
	archive   *repository.Archive // optional
}

func NewBatch(processor *Processor, workers int, archive *repository.Archive, logger *slog.Logger) *Batch {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}
	return &Batch{logger: logger, processor: processor, workers: workers, archive: archive}
}

// Preflight validates every input path before any processing: each must
// exist and carry a supported extension. All problems are reported at once.
func Preflight(paths []string) ([]extract.Document, error) {
	var problems []string
	docs := make([]extract.Document, 0, len(paths))
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			problems = append(problems, fmt.Sprintf("file not found: %s", path))
			continue
		}
		doc, err := extract.NewDocument(path)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		docs = append(docs, doc)
	}
	if len(problems) > 0 {
		return nil, common.NewAppError("PREFLIGHT_ERROR", strings.Join(problems, "; "), common.ErrInvalidInput)
	}
	return docs, nil
}

// Run processes the documents and returns the accumulated rows. A failure in
// one document degrades that document's fields but never aborts the batch;
// output row order always equals input document order.
func (b *Batch) Run(ctx context.Context, docs []extract.Document) (*BatchResult, error) {
	results := make([]DocumentResult, len(docs))

	if b.workers <= 1 || len(docs) <= 1 {
		for i, doc := range docs {
			results[i] = b.processor.Process(ctx, doc)
		}
	} else {
		// Bounded parallelism across independent documents; the indexed
		// result slot keeps the final order equal to the input order.
		sem := make(chan struct{}, b.workers)
		var wg sync.WaitGroup
		for i, doc := range docs {
			wg.Add(1)
			go func(i int, doc extract.Document) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				results[i] = b.processor.Process(ctx, doc)
			}(i, doc)
		}
		wg.Wait()
	}

	res := &BatchResult{Documents: results}
	for _, dr := range results {
		res.Rows = append(res.Rows, dr.Rows...)
	}

	if b.archive != nil {
		if err := b.archiveRun(ctx, res); err != nil {
			b.logger.Warn("pipeline.archive_failed", "error", err)
		}
	}

	b.logger.Info("pipeline.batch.ok", "documents", len(docs), "rows", len(res.Rows))
	return res, nil
}

func (b *Batch) archiveRun(ctx context.Context, res *BatchResult) error {
	runID, err := b.archive.StartRun(ctx)
	if err != nil {
		return err
	}
	for _, dr := range res.Documents {
		rec := repository.DocumentRecord{
			SourcePath:     dr.Doc.Path,
			Format:         dr.Doc.Format,
			Classification: string(dr.Classification),
			ErrorKind:      string(dr.ErrKind),
			RowCount:       len(dr.Rows),
			RawJSON:        dr.RawJSON,
		}
		if err := b.archive.RecordDocument(ctx, runID, rec); err != nil {
			return err
		}
	}
	return b.archive.FinishRun(ctx, runID, len(res.Documents), len(res.Rows))
}

// WriteArtifacts writes the tabular and structured artifacts, and an XLSX
// workbook when xlsxPath is non-empty.
func (b *Batch) WriteArtifacts(res *BatchResult, csvPath, jsonPath, xlsxPath string) error {
	schema := b.processor.schema

	cf, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := export.WriteCSV(cf, schema, res.Rows); err != nil {
		_ = cf.Close()
		return err
	}
	if err := cf.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}

	jf, err := os.Create(jsonPath)
	if err != nil {
		return fmt.Errorf("create json: %w", err)
	}
	if err := export.WriteJSON(jf, res.Rows); err != nil {
		_ = jf.Close()
		return err
	}
	if err := jf.Close(); err != nil {
		return fmt.Errorf("close json: %w", err)
	}

	if xlsxPath != "" {
		buf, err := export.WriteXLSX(schema, res.Rows)
		if err != nil {
			return err
		}
		if err := os.WriteFile(xlsxPath, buf, 0o644); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
	}

	b.logger.Info("pipeline.artifacts.ok",
		"csv", csvPath, "json", jsonPath, "xlsx", xlsxPath, "rows", len(res.Rows))
	return nil
}
