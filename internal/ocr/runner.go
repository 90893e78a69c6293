package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner is the seam between the Extractor and the tesseract binary;
// tests substitute a canned implementation.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type tesseractRunner struct {
	logger *slog.Logger
}

func (r tesseractRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	log := r.logger
	if log == nil {
		log = slog.Default()
	}
	start := time.Now()

	var out, errb bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()

	if err != nil {
		log.Error("ocr.exec.failed",
			"cmd", name,
			"args", strings.Join(args, " "),
			"elapsed_ms", time.Since(start).Milliseconds(),
			"error", err,
			"stderr", clipStderr(errb.String()),
		)
	} else {
		log.Debug("ocr.exec.ok",
			"cmd", name,
			"elapsed_ms", time.Since(start).Milliseconds(),
			"stdout_bytes", out.Len(),
		)
	}
	return out.Bytes(), errb.Bytes(), err
}

// clipStderr keeps tesseract's stderr to a loggable size; warning spam on
// low-quality scans can run to many kilobytes.
func clipStderr(s string) string {
	const max = 8 << 10
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
