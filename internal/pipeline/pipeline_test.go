package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice2csv/internal/common"
	"invoice2csv/internal/extract"
	"invoice2csv/internal/llm"
)

type stubPages struct {
	texts map[string][]string
	err   error
}

func (s stubPages) PageTexts(path string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.texts[path], nil
}

type stubEngine struct {
	pdfText   string
	imageText string
	err       error
}

func (s stubEngine) ImageText(_ context.Context, _ string) (string, error) {
	return s.imageText, s.err
}

func (s stubEngine) PDFText(_ context.Context, _ string) (string, int, error) {
	return s.pdfText, 1, s.err
}

// stubOracle returns canned fields keyed by source file, or fails for files
// listed in failFor. It records the normalized text it was handed.
type stubOracle struct {
	byFile   map[string]llm.InvoiceFields
	failFor  map[string]error
	seenText map[string]string
}

func (s *stubOracle) ExtractFields(_ context.Context, req llm.ExtractRequest) (llm.InvoiceFields, []byte, error) {
	if s.seenText == nil {
		s.seenText = map[string]string{}
	}
	s.seenText[req.SourceFile] = req.Text
	if err, ok := s.failFor[req.SourceFile]; ok {
		return llm.InvoiceFields{}, nil, err
	}
	f := s.byFile[req.SourceFile]
	if f.Items == nil {
		f.Items = []llm.LineItem{}
	}
	return f, []byte(`{}`), nil
}

func writeInput(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 stub"), 0o644))
	return path
}

func newTestProcessor(pages stubPages, engine stubEngine, oracle llm.FieldExtractor) *Processor {
	classifier := extract.NewClassifier(pages, nil)
	text := extract.NewTextExtractor(pages, engine, nil)
	return NewProcessor(classifier, text, oracle, nil, llm.Full(), nil)
}

func TestProcessDigitalPDF(t *testing.T) {
	path := writeInput(t, "inv.pdf")
	longPage := strings.Repeat("Invoice INV-1 issued to ACME Corp. ", 3)
	pages := stubPages{texts: map[string][]string{path: {longPage}}}
	oracle := &stubOracle{byFile: map[string]llm.InvoiceFields{
		"inv.pdf": {InvoiceNumber: "INV-1", VendorName: "ACME"},
	}}

	p := newTestProcessor(pages, stubEngine{}, oracle)
	doc, err := extract.NewDocument(path)
	require.NoError(t, err)

	res := p.Process(context.Background(), doc)
	assert.Equal(t, extract.Digital, res.Classification)
	assert.Empty(t, res.ErrKind)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "INV-1", res.Rows[0].Values["Invoice Number"])
	assert.Equal(t, "inv.pdf", res.Rows[0].Values["Source File"])

	// the oracle sees normalized text, not the raw page text
	assert.NotContains(t, oracle.seenText["inv.pdf"], "  ")

	// raw text sidecar lands next to the input
	sidecar := strings.TrimSuffix(path, ".pdf") + ".txt"
	b, err := os.ReadFile(sidecar)
	require.NoError(t, err)
	assert.Contains(t, string(b), "INV-1")
}

func TestProcessScannedOCREmptyStillYieldsRow(t *testing.T) {
	path := writeInput(t, "blank.pdf")
	p := newTestProcessor(
		stubPages{texts: map[string][]string{path: {"   "}}}, // below threshold
		stubEngine{pdfText: ""},
		&stubOracle{byFile: map[string]llm.InvoiceFields{"blank.pdf": {}}},
	)
	doc, err := extract.NewDocument(path)
	require.NoError(t, err)

	res := p.Process(context.Background(), doc)
	assert.Equal(t, extract.Scanned, res.Classification)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "", res.Rows[0].Values["Invoice Number"])
	assert.Equal(t, "blank.pdf", res.Rows[0].Values["Source File"])
}

func TestProcessOracleFailureUsesFallback(t *testing.T) {
	path := writeInput(t, "down.pdf")
	oracle := &stubOracle{failFor: map[string]error{
		"down.pdf": common.NewStageError(common.OracleFailed, errors.New("connection refused")),
	}}
	p := newTestProcessor(
		stubPages{texts: map[string][]string{path: {strings.Repeat("x", 60)}}},
		stubEngine{},
		oracle,
	)
	doc, err := extract.NewDocument(path)
	require.NoError(t, err)

	res := p.Process(context.Background(), doc)
	assert.Equal(t, common.OracleFailed, res.ErrKind)
	require.Len(t, res.Rows, 1)
	for _, col := range llm.Full().Columns() {
		if col == llm.SourceFileColumn {
			assert.Equal(t, "down.pdf", res.Rows[0].Values[col])
		} else {
			assert.Equal(t, "", res.Rows[0].Values[col], "column %q", col)
		}
	}
}

func TestProcessExtractionFailureDegrades(t *testing.T) {
	path := writeInput(t, "broken.pdf")
	p := newTestProcessor(
		stubPages{err: errors.New("damaged xref")},
		stubEngine{err: errors.New("tesseract crashed")},
		&stubOracle{byFile: map[string]llm.InvoiceFields{"broken.pdf": {}}},
	)
	doc, err := extract.NewDocument(path)
	require.NoError(t, err)

	res := p.Process(context.Background(), doc)
	assert.Equal(t, extract.Scanned, res.Classification) // classify never fails
	assert.Equal(t, common.ExtractionFailed, res.ErrKind)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "", oracleSeenText(t, p, res)) // oracle got empty text
}

func oracleSeenText(t *testing.T, p *Processor, res DocumentResult) string {
	t.Helper()
	if o, ok := p.oracle.(*stubOracle); ok {
		return o.seenText[filepath.Base(res.Doc.Path)]
	}
	t.Fatal("oracle stub not wired")
	return ""
}

func TestBatchOrderAndDegradation(t *testing.T) {
	dir := t.TempDir()
	names := []string{"a.pdf", "b.pdf", "c.pdf"}
	paths := make([]string, len(names))
	pages := stubPages{texts: map[string][]string{}}
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(paths[i], []byte("%PDF"), 0o644))
		pages.texts[paths[i]] = []string{strings.Repeat("invoice text ", 10)}
	}

	oracle := &stubOracle{
		byFile: map[string]llm.InvoiceFields{
			"a.pdf": {InvoiceNumber: "INV-A"},
			"c.pdf": {InvoiceNumber: "INV-C"},
		},
		failFor: map[string]error{
			"b.pdf": common.NewStageError(common.OracleFailed, errors.New("timeout")),
		},
	}
	p := newTestProcessor(pages, stubEngine{}, oracle)
	batch := NewBatch(p, 1, nil, nil)

	docs, err := Preflight(paths)
	require.NoError(t, err)

	res, err := batch.Run(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, "INV-A", res.Rows[0].Values["Invoice Number"])
	assert.Equal(t, "", res.Rows[1].Values["Invoice Number"])
	assert.Equal(t, "INV-C", res.Rows[2].Values["Invoice Number"])
	assert.Equal(t, common.OracleFailed, res.Documents[1].ErrKind)
	assert.Empty(t, res.Documents[0].ErrKind)
	assert.Empty(t, res.Documents[2].ErrKind)
}

func TestBatchParallelPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	pages := stubPages{texts: map[string][]string{}}
	byFile := map[string]llm.InvoiceFields{}
	var paths []string
	for i := 0; i < 8; i++ {
		name := string(rune('a'+i)) + ".pdf"
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o644))
		pages.texts[path] = []string{strings.Repeat("invoice text ", 10)}
		byFile[name] = llm.InvoiceFields{InvoiceNumber: "INV-" + name}
		paths = append(paths, path)
	}

	p := newTestProcessor(pages, stubEngine{}, &stubOracle{byFile: byFile})
	batch := NewBatch(p, 4, nil, nil)

	docs, err := Preflight(paths)
	require.NoError(t, err)
	res, err := batch.Run(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, res.Rows, 8)
	for i, path := range paths {
		assert.Equal(t, "INV-"+filepath.Base(path), res.Rows[i].Values["Invoice Number"])
	}
}

func TestPreflightMissingFileFailsBatch(t *testing.T) {
	existing := writeInput(t, "ok.pdf")
	_, err := Preflight([]string{existing, "/no/such/file.pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found: /no/such/file.pdf")

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PREFLIGHT_ERROR", appErr.Code)
}

func TestPreflightUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.docx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	_, err := Preflight([]string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notes.docx")
}

func TestWriteArtifacts(t *testing.T) {
	path := writeInput(t, "inv.pdf")
	pages := stubPages{texts: map[string][]string{path: {strings.Repeat("invoice ", 10)}}}
	oracle := &stubOracle{byFile: map[string]llm.InvoiceFields{
		"inv.pdf": {InvoiceNumber: "INV-1", Items: []llm.LineItem{{Description: "Widget"}}},
	}}
	p := newTestProcessor(pages, stubEngine{}, oracle)
	batch := NewBatch(p, 1, nil, nil)

	docs, err := Preflight([]string{path})
	require.NoError(t, err)
	res, err := batch.Run(context.Background(), docs)
	require.NoError(t, err)

	out := t.TempDir()
	csvPath := filepath.Join(out, "rows.csv")
	jsonPath := filepath.Join(out, "rows.json")
	xlsxPath := filepath.Join(out, "rows.xlsx")
	require.NoError(t, batch.WriteArtifacts(res, csvPath, jsonPath, xlsxPath))

	csvBytes, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(csvBytes), "Invoice Number")
	assert.Contains(t, string(csvBytes), "INV-1")

	jsonBytes, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(jsonBytes), `"Invoice Number": "INV-1"`)

	info, err := os.Stat(xlsxPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
