package invoice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medbillguard/medbillguard/constants"
	"github.com/medbillguard/medbillguard/internal/extract"
)

// Config for the structured-invoice extraction API.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client uploads bill bytes to a structured-invoice extraction service and
// maps its line items onto our extraction model. The service is untrusted:
// every returned line item still passes through the sanitizer downstream.
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

var _ extract.Backend = (*Client)(nil)

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}

// apiResponse mirrors the invoice service's extraction payload.
type apiResponse struct {
	SupplierName  string  `json:"supplierName"`
	Date          string  `json:"date"`
	InvoiceNumber string  `json:"invoiceNumber"`
	TotalAmount   float64 `json:"totalAmount"`
	TotalNet      float64 `json:"totalNet"`
	TotalTax      float64 `json:"totalTax"`
	LineItems     []struct {
		Description string  `json:"description"`
		Quantity    float64 `json:"quantity"`
		UnitPrice   float64 `json:"unitPrice"`
		TotalAmount float64 `json:"totalAmount"`
	} `json:"lineItems"`
}

// Extract uploads the document and converts the response.
func (c *Client) Extract(ctx context.Context, in extract.Input) (extract.Extraction, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("invoice.extract.start",
		"req_id", rid,
		"filename", in.Filename,
		"bytes", len(in.Bytes),
	)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", in.Filename)
	if err != nil {
		return extract.Extraction{}, fmt.Errorf("build multipart form: %w", err)
	}
	if _, err := fw.Write(in.Bytes); err != nil {
		return extract.Extraction{}, fmt.Errorf("write multipart payload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return extract.Extraction{}, fmt.Errorf("finalize multipart form: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/extract"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return extract.Extraction{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("invoice.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return extract.Extraction{}, fmt.Errorf("invoice api http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.log.Warn("invoice response body close error", "error", cerr)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return extract.Extraction{}, fmt.Errorf("read invoice response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error("invoice.extract.bad_status",
			"req_id", rid, "status", resp.StatusCode,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return extract.Extraction{}, fmt.Errorf("invoice api status %d: %s", resp.StatusCode, string(raw))
	}

	var api apiResponse
	if err := json.Unmarshal(raw, &api); err != nil {
		c.log.Error("invoice.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return extract.Extraction{}, fmt.Errorf("decode invoice response: %w", err)
	}

	out := toExtraction(api)
	c.log.Info("invoice.extract.ok",
		"req_id", rid,
		"supplier", api.SupplierName,
		"items", len(out.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func toExtraction(api apiResponse) extract.Extraction {
	out := extract.Extraction{
		Header: extract.BillHeader{
			HospitalName: strings.TrimSpace(api.SupplierName),
			BillNumber:   strings.TrimSpace(api.InvoiceNumber),
			BillDate:     strings.TrimSpace(api.Date),
		},
		Confidence: 0.9, // structured extraction is the most trusted tier
	}
	if api.TotalAmount > 0 {
		t := api.TotalAmount
		out.Totals.GrandTotal = &t
	}
	if api.TotalNet > 0 {
		n := api.TotalNet
		out.Totals.Subtotal = &n
	}
	if api.TotalTax > 0 {
		tx := api.TotalTax
		out.Totals.Tax = &tx
	}

	for _, li := range api.LineItems {
		name := strings.TrimSpace(li.Description)
		if name == "" {
			continue
		}
		qty := int(li.Quantity)
		if qty < 1 {
			qty = 1
		}
		out.Items = append(out.Items, extract.ExtractedItem{
			RawText:     li.Description,
			ItemName:    name,
			Category:    constants.ClassifyItemName(name),
			Quantity:    qty,
			UnitPrice:   li.UnitPrice,
			TotalBilled: li.TotalAmount,
		})
	}
	return out
}
