package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/medbillguard/medbillguard/constants"
)

// Result is the OCR backend contract. Success=false is terminal for the
// whole analysis: there is nothing further down the cascade without text.
type Result struct {
	Success    bool
	Text       string
	Confidence float32 // 0..1
	Message    string  // set when Success is false
	Duration   time.Duration
}

// Backend turns raw bill bytes into text.
type Backend interface {
	Recognize(ctx context.Context, data []byte, filename string) (Result, error)
}

type Config struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI, default 300
	PSM           int // e.g., 6 is good for uniform block of text
	OEM           int // 1 = LSTM; leave 0 to use default
	WorkDir       string
}

// Extractor shells out to tesseract. It satisfies Backend.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = os.TempDir()
	}
	return &Extractor{cfg: cfg, runner: tesseractRunner{logger: logger}, logger: logger}
}

var reBoxNoise = regexp.MustCompile(`[|]{2,}|_{3,}`)

// Recognize writes the bytes to a scratch file and runs tesseract on it.
// A tesseract failure is reported through Result.Success, not the error:
// callers decide whether that is terminal.
func (e *Extractor) Recognize(ctx context.Context, data []byte, filename string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(filename))
	if ext == "" {
		ext = "png"
	}
	e.logger.Debug("ocr.recognize.start", "filename", filename, "bytes", len(data), "ext", ext)

	tmp, err := os.CreateTemp(e.cfg.WorkDir, "bill-*."+ext)
	if err != nil {
		return Result{}, fmt.Errorf("scratch file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return Result{}, fmt.Errorf("write scratch file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, fmt.Errorf("close scratch file: %w", err)
	}

	args := []string{tmp.Name(), "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		msg := strings.TrimSpace(string(errb))
		if msg == "" {
			msg = err.Error()
		}
		e.logger.Error("ocr.recognize.failed", "filename", filename, "error", err)
		return Result{Success: false, Message: msg, Duration: time.Since(start)}, nil
	}

	txt := reBoxNoise.ReplaceAllString(string(out), "")
	txt = strings.TrimSpace(txt)
	if txt == "" {
		return Result{Success: false, Message: "no text recognized", Duration: time.Since(start)}, nil
	}

	conf := heuristicConfidence(txt)
	e.logger.Debug("ocr.recognize.ok", "filename", filename, "text_bytes", len(txt), "confidence", conf)
	return Result{
		Success:    true,
		Text:       txt,
		Confidence: conf,
		Duration:   time.Since(start),
	}, nil
}
