// Package textextract converts uploaded bill bytes into plain text.
//
// PDFs go through a structured reader first and fall back to pdftotext when
// the structured pass fails or yields only whitespace. Images go through
// tesseract.
package textextract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/bills-tracker/constants"
	"github.com/joseph-ayodele/bills-tracker/internal/common"
)

// Strategy is one way of turning bytes into text.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, data []byte) (string, error)
}

type Config struct {
	Pdftotext     string
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	MaxPages      int
	Timeout       time.Duration // per strategy; 0 = no limit
}

type Result struct {
	Text       string
	SourceType string // constants.PDF | constants.IMAGE
	Method     string
	Duration   time.Duration
	Warnings   []string
}

type Extractor struct {
	primary  Strategy
	fallback Strategy
	image    Strategy
	timeout  time.Duration
	logger   *slog.Logger
}

// NewExtractor wires the default strategies around runner (nil = exec).
func NewExtractor(cfg Config, runner Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	return NewExtractorWithStrategies(
		StructuredPDF{MaxPages: cfg.MaxPages},
		CommandPDF{Bin: cfg.Pdftotext, Runner: runner},
		ImageOCR{Bin: cfg.Tesseract, Lang: cfg.TesseractLang, TessdataDir: cfg.TessdataDir, Runner: runner},
		cfg.Timeout,
		logger,
	)
}

func NewExtractorWithStrategies(primary, fallback, image Strategy, timeout time.Duration, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{primary: primary, fallback: fallback, image: image, timeout: timeout, logger: logger}
}

// Extract picks a strategy chain from the content (falling back to the file
// name extension). An error is returned only when every applicable strategy failed.
func (e *Extractor) Extract(ctx context.Context, data []byte, fileName string) (Result, error) {
	start := time.Now()
	if len(data) == 0 {
		return Result{}, common.NewAppError("EMPTY_SOURCE", "source file is empty", common.ErrExtraction)
	}

	ext := ""
	if i := strings.LastIndex(fileName, "."); i >= 0 {
		ext = fileName[i:]
	}
	format := constants.SniffFormat(data, ext)

	var res Result
	var err error
	if format == constants.IMAGE {
		res, err = e.extractImage(ctx, data)
	} else {
		res, err = e.extractPDF(ctx, data)
	}
	res.Duration = time.Since(start)

	if err != nil {
		e.logger.Error("extract.failed", "format", format, "bytes", len(data), "error", err, "elapsed_ms", res.Duration.Milliseconds())
		return res, err
	}
	e.logger.Info("extract.ok",
		"format", res.SourceType,
		"method", res.Method,
		"chars", len(res.Text),
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) extractPDF(ctx context.Context, data []byte) (Result, error) {
	res := Result{SourceType: constants.PDF}

	text, err := e.run(ctx, e.primary, data)
	if err == nil && strings.TrimSpace(text) != "" {
		res.Text, res.Method = text, e.primary.Name()
		return res, nil
	}
	primaryErr := err
	if primaryErr != nil {
		e.logger.Warn("extract.primary_failed", "strategy", e.primary.Name(), "error", primaryErr)
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", e.primary.Name(), primaryErr))
	} else {
		e.logger.Warn("extract.primary_empty", "strategy", e.primary.Name())
		res.Warnings = append(res.Warnings, e.primary.Name()+": empty text")
	}

	text, err = e.run(ctx, e.fallback, data)
	if err != nil {
		if primaryErr == nil {
			primaryErr = errors.New("empty text")
		}
		return res, fmt.Errorf("%w: %s: %v; %s: %v", common.ErrExtraction,
			e.primary.Name(), primaryErr, e.fallback.Name(), err)
	}
	res.Text, res.Method = text, e.fallback.Name()
	return res, nil
}

func (e *Extractor) extractImage(ctx context.Context, data []byte) (Result, error) {
	res := Result{SourceType: constants.IMAGE, Method: e.image.Name()}
	text, err := e.run(ctx, e.image, data)
	if err != nil {
		return res, fmt.Errorf("%w: %s: %v", common.ErrExtraction, e.image.Name(), err)
	}
	res.Text = text
	return res, nil
}

func (e *Extractor) run(ctx context.Context, s Strategy, data []byte) (string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	return s.Extract(ctx, data)
}
