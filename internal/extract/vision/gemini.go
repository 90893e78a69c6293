package vision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/medbillguard/medbillguard/internal/common"
	"github.com/medbillguard/medbillguard/internal/extract"
)

// GeminiClient implements the vision and text extraction backends using
// Google Gemini.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	log    *slog.Logger
}

var (
	_ extract.Backend     = (*GeminiClient)(nil)
	_ extract.TextBackend = (*GeminiClient)(nil)
)

func NewGeminiClient(ctx context.Context, apiKey, modelName string, logger *slog.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  client.GenerativeModel(modelName),
		log:    logger,
	}, nil
}

// Extract sends the bill image to Gemini and decodes the structured reply.
func (g *GeminiClient) Extract(ctx context.Context, in extract.Input) (extract.Extraction, error) {
	// genai.ImageData takes the format suffix, not the full MIME type
	format := strings.TrimPrefix(in.MimeType, "image/")
	if format == in.MimeType || format == "" {
		format = "png"
	}
	parts := []genai.Part{
		genai.ImageData(format, in.Bytes),
		genai.Text(buildExtractionPrompt() + "\n\nExtract every line item from this hospital bill image."),
	}
	return g.generate(ctx, "gemini.extract", parts)
}

// ExtractText runs the same structured extraction over an OCR transcript.
func (g *GeminiClient) ExtractText(ctx context.Context, text string) (extract.Extraction, error) {
	if len(text) > 12000 {
		text = text[:12000]
	}
	parts := []genai.Part{
		genai.Text(buildExtractionPrompt() + "\n\nOCR transcript of a hospital bill:\n\n" + text),
	}
	return g.generate(ctx, "gemini.extract_text", parts)
}

func (g *GeminiClient) generate(ctx context.Context, event string, parts []genai.Part) (extract.Extraction, error) {
	rid := uuid.New().String()
	start := time.Now()
	g.log.Info(event+".start", "req_id", rid)

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		g.log.Error(event+".error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return extract.Extraction{}, fmt.Errorf("generating content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		g.log.Error(event+".no_candidates",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return extract.Extraction{}, fmt.Errorf("no response from gemini")
	}

	var reply strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			reply.WriteString(string(text))
		}
	}

	ex, isMedical, err := DecodeBill(reply.String(), g.log)
	if err != nil {
		g.log.Error(event+".parse_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return extract.Extraction{}, err
	}
	if !isMedical {
		g.log.Warn(event+".not_medical", "req_id", rid)
		return extract.Extraction{}, fmt.Errorf("model flagged document as non-medical: %w", common.ErrExtraction)
	}

	g.log.Info(event+".ok",
		"req_id", rid,
		"hospital", ex.Header.HospitalName,
		"items", len(ex.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return ex, nil
}

// Close releases the underlying Gemini client.
func (g *GeminiClient) Close() error {
	return g.client.Close()
}
