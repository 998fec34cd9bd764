// Package gemini implements llm.FieldExtractor against the Google
// Generative Language API (generateContent).
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"invoice2csv/internal/common"
	"invoice2csv/internal/llm"
)

// Config for the Gemini client.
type Config struct {
	APIKey      string        // if empty, falls back to env GOOGLE_API_KEY
	BaseURL     string        // default https://generativelanguage.googleapis.com
	Model       string        // e.g., "gemini-1.5-flash-latest"
	Temperature float32       // 0..2
	Timeout     time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash-latest"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type gmPart struct {
	Text string `json:"text"`
}

type gmContent struct {
	Role  string   `json:"role,omitempty"`
	Parts []gmPart `json:"parts"`
}

type gmGenerationConfig struct {
	Temperature      float32 `json:"temperature"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type gmRequest struct {
	Contents         []gmContent         `json:"contents"`
	GenerationConfig *gmGenerationConfig `json:"generationConfig,omitempty"`
}

type gmResponse struct {
	Candidates []struct {
		Content struct {
			Parts []gmPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// ExtractFields sends one generateContent exchange and decodes the JSON
// payload the model returns.
func (c *Client) ExtractFields(ctx context.Context, req llm.ExtractRequest) (llm.InvoiceFields, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"provider", "gemini",
		"model", c.cfg.Model,
		"text_len", len(req.Text),
		"schema", req.Schema.Name,
		"source_file", req.SourceFile,
	)

	body := gmRequest{
		Contents: []gmContent{
			{Role: "user", Parts: []gmPart{{Text: llm.BuildPrompt(req)}}},
		},
		GenerationConfig: &gmGenerationConfig{
			Temperature:      c.cfg.Temperature,
			ResponseMIMEType: "application/json",
		},
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.Model))

	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.logger.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.InvoiceFields{}, nil, common.NewStageError(common.OracleFailed, fmt.Errorf("gemini call: %w", err))
	}

	var gr gmResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		c.logger.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.InvoiceFields{}, raw, common.NewStageError(common.OracleFailed, fmt.Errorf("decode gemini response: %w", err))
	}
	if len(gr.Candidates) == 0 {
		c.logger.Error("llm.extract.no_candidates",
			"req_id", rid, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.InvoiceFields{}, raw, common.NewStageError(common.OracleFailed, fmt.Errorf("no candidates in gemini response"))
	}

	var content strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		content.WriteString(p.Text)
	}

	fields, cleaned, err := llm.DecodeFields(req.Schema, content.String())
	if err != nil {
		c.logger.Error("llm.extract.parse_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.InvoiceFields{}, cleaned, common.NewStageError(common.ParseFailed, err)
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"invoice_number", fields.InvoiceNumber,
		"vendor", fields.VendorName,
		"total", fields.InvoiceTotal,
		"items", len(fields.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return fields, cleaned, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.logger.Warn("gemini response body close error", "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gemini status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
