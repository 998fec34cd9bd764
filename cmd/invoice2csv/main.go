// invoice2csv converts PDF and image invoices into flat per-line-item
// records, written as CSV and JSON (and optionally XLSX).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"invoice2csv/internal/common"
	"invoice2csv/internal/extract"
	"invoice2csv/internal/llm"
	"invoice2csv/internal/llm/gemini"
	"invoice2csv/internal/llm/openai"
	"invoice2csv/internal/ocr"
	"invoice2csv/internal/pdftext"
	"invoice2csv/internal/pipeline"
	"invoice2csv/internal/repository"
)

// closeArchive closes the run archive if one was opened. Close failures are
// diagnostic-only.
func closeArchive(arch *repository.Archive, logger *slog.Logger) {
	if arch == nil {
		return
	}
	if err := arch.Close(); err != nil {
		logger.Warn("archive close error", "error", err)
	}
}

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		csvOut   = flag.String("csv", "extracted_invoices.csv", "output CSV file path")
		jsonOut  = flag.String("json", "extracted_invoices.json", "output JSON file path")
		xlsxOut  = flag.String("xlsx", "", "output XLSX file path (optional)")
		schemaNm = flag.String("schema", "", "field schema: full or basic (default from INVOICE_SCHEMA)")
		workers  = flag.Int("workers", 1, "documents processed concurrently (output order is preserved)")
		archive  = flag.String("archive", "", "SQLite archive path (optional)")
		offline  = flag.Bool("offline", false, "skip the extraction oracle; every record comes from the fallback")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		printError("usage: invoice2csv [flags] <invoice.pdf|invoice.png> ...\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *schemaNm == "" {
		*schemaNm = cfg.Schema
	}
	if err := cfg.Validate(*offline); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	schema, err := llm.SchemaByName(*schemaNm)
	if err != nil {
		logger.Error("invalid schema", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	docs, err := pipeline.Preflight(flag.Args())
	if err != nil {
		logger.Error("preflight failed", "error", err)
		os.Exit(1)
	}

	pages := pdftext.Reader{}
	engine := ocr.NewEngine(ocr.Config{
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)

	classifier := extract.NewClassifier(pages, logger)
	textExtractor := extract.NewTextExtractor(pages, engine, logger)

	fallback := llm.NewFallback(logger)
	var oracle llm.FieldExtractor
	switch {
	case *offline:
		oracle = fallback
		logger.Warn("offline mode, extraction oracle disabled")
	case cfg.Oracle.Provider == "openai":
		oracle = openai.NewClient(openai.Config{
			APIKey:      cfg.Oracle.APIKey,
			BaseURL:     cfg.Oracle.BaseURL,
			Model:       cfg.Oracle.Model,
			Temperature: cfg.Oracle.Temperature,
			Timeout:     cfg.Oracle.Timeout,
		}, logger)
	default:
		oracle = gemini.NewClient(gemini.Config{
			APIKey:      cfg.Oracle.APIKey,
			BaseURL:     cfg.Oracle.BaseURL,
			Model:       cfg.Oracle.Model,
			Temperature: cfg.Oracle.Temperature,
			Timeout:     cfg.Oracle.Timeout,
		}, logger)
	}

	var arch *repository.Archive
	if *archive != "" {
		arch, err = repository.Open(*archive, logger)
		if err != nil {
			logger.Error("failed to open archive", "path", *archive, "error", err)
			os.Exit(1)
		}
	}

	processor := pipeline.NewProcessor(classifier, textExtractor, oracle, fallback, schema, logger)
	batch := pipeline.NewBatch(processor, *workers, arch, logger)

	// os.Exit skips deferred calls, so the archive is closed explicitly on
	// every path out of here.
	result, err := batch.Run(ctx, docs)
	if err != nil {
		logger.Error("batch failed", "error", err)
		closeArchive(arch, logger)
		os.Exit(1)
	}
	if err := batch.WriteArtifacts(result, *csvOut, *jsonOut, *xlsxOut); err != nil {
		logger.Error("failed to write artifacts", "error", err)
		closeArchive(arch, logger)
		os.Exit(1)
	}
	closeArchive(arch, logger)

	degraded := 0
	for _, dr := range result.Documents {
		if dr.ErrKind != "" {
			degraded++
		}
	}

	fmt.Printf("Processed %d document(s), %d row(s)", len(result.Documents), len(result.Rows))
	if degraded > 0 {
		fmt.Printf(", %d degraded", degraded)
	}
	fmt.Printf("\n- CSV:  %s\n- JSON: %s\n", *csvOut, *jsonOut)
	if *xlsxOut != "" {
		fmt.Printf("- XLSX: %s\n", *xlsxOut)
	}
}
