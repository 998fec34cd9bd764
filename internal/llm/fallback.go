package llm

import (
	"context"
	"log/slog"
)

// Fallback is the deterministic degraded extractor: schema-conformant but
// data-empty. Used whenever the oracle path fails so downstream flattening
// always receives a well-formed record. It never errors.
type Fallback struct {
	logger *slog.Logger
}

func NewFallback(logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{logger: logger}
}

func (f *Fallback) ExtractFields(_ context.Context, req ExtractRequest) (InvoiceFields, []byte, error) {
	f.logger.Info("llm.fallback.used", "source_file", req.SourceFile, "text_len", len(req.Text))
	return InvoiceFields{Items: []LineItem{}}, []byte("{}"), nil
}
