package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medbillguard/medbillguard/internal/common"
	"github.com/medbillguard/medbillguard/internal/extract"
)

// OpenAIConfig configures the OpenAI-compatible chat/completions client.
// BaseURL may point at any compatible gateway (OpenAI, OpenRouter, a local
// vLLM endpoint).
type OpenAIConfig struct {
	APIKey      string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL     string        // default https://api.openai.com/v1
	Model       string        // e.g. "gpt-4o-mini"
	Temperature float32       // 0..2
	Timeout     time.Duration // http client timeout
}

// OpenAIClient talks to an OpenAI-compatible endpoint. It serves both the
// vision tier (image input) and the text tier (OCR transcript input).
type OpenAIClient struct {
	cfg  OpenAIConfig
	http *http.Client
	log  *slog.Logger
}

var (
	_ extract.Backend     = (*OpenAIClient)(nil)
	_ extract.TextBackend = (*OpenAIClient)(nil)
)

func NewOpenAIClient(cfg OpenAIConfig, logger *slog.Logger) *OpenAIClient {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}

// Extract sends the bill image to the model and decodes the structured reply.
func (c *OpenAIClient) Extract(ctx context.Context, in extract.Input) (extract.Extraction, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("vision.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"mime_type", in.MimeType,
		"bytes", len(in.Bytes),
	)

	dataURL := "data:" + in.MimeType + ";base64," + base64.StdEncoding.EncodeToString(in.Bytes)
	messages := []map[string]any{
		{"role": "system", "content": buildExtractionPrompt()},
		{"role": "user", "content": []map[string]any{
			{"type": "text", "text": "Extract every line item from this hospital bill image."},
			{"type": "image_url", "image_url": map[string]any{"url": dataURL}},
		}},
	}
	return c.complete(ctx, rid, start, messages)
}

// ExtractText runs the same structured extraction over an OCR transcript.
func (c *OpenAIClient) ExtractText(ctx context.Context, text string) (extract.Extraction, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("vision.extract_text.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"text_len", len(text),
	)

	if len(text) > 12000 {
		text = text[:12000]
	}
	messages := []map[string]any{
		{"role": "system", "content": buildExtractionPrompt()},
		{"role": "user", "content": "OCR transcript of a hospital bill:\n\n" + text},
	}
	return c.complete(ctx, rid, start, messages)
}

func (c *OpenAIClient) complete(ctx context.Context, rid string, start time.Time, messages []map[string]any) (extract.Extraction, error) {
	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages":    messages,
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.log.Error("vision.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return extract.Extraction{}, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("vision.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return extract.Extraction{}, fmt.Errorf("decode completion response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("vision.extract.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return extract.Extraction{}, fmt.Errorf("no choices in completion response")
	}

	ex, isMedical, err := DecodeBill(cc.Choices[0].Message.Content, c.log)
	if err != nil {
		c.log.Error("vision.extract.parse_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return extract.Extraction{}, err
	}
	if !isMedical {
		c.log.Warn("vision.extract.not_medical",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		// surface an empty extraction so the cascade falls through to the
		// OCR path, whose keyword validator makes the final call
		return extract.Extraction{}, fmt.Errorf("model flagged document as non-medical: %w", common.ErrExtraction)
	}

	c.log.Info("vision.extract.ok",
		"req_id", rid,
		"hospital", ex.Header.HospitalName,
		"items", len(ex.Items),
		"confidence", ex.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return ex, nil
}

func (c *OpenAIClient) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.log.Warn("completion response body close error", "error", cerr)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(resp.Body)
		return nil, fmt.Errorf("completion status %d: %s", resp.StatusCode, buf.String())
	}

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	return buf.Bytes(), nil
}
