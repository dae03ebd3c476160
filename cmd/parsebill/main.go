// Command parsebill extracts the text of a local bill and runs it through the
// configured extraction backend, printing the validated result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/bills-tracker/constants"
	"github.com/joseph-ayodele/bills-tracker/internal/common"
	"github.com/joseph-ayodele/bills-tracker/internal/llm"
	"github.com/joseph-ayodele/bills-tracker/internal/llm/provider"
	"github.com/joseph-ayodele/bills-tracker/internal/resolver"
	"github.com/joseph-ayodele/bills-tracker/internal/textextract"
)

func main() {
	textOnly := flag.Bool("text", false, "print the extracted text and the prompt excerpt, skip the model call")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: parsebill [-text] [-timeout 2m] <file.pdf|png|jpg>")
		os.Exit(2)
	}
	path := flag.Arg(0)
	if _, ok := constants.AllowedExtensions[constants.NormalizeExt(filepath.Ext(path))]; !ok {
		fmt.Fprintf(os.Stderr, "unsupported file type %q (pdf, png, jpg, jpeg)\n", filepath.Ext(path))
		os.Exit(2)
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	logger := common.NewLogger(cfg.Log, os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx, reqID := common.EnsureRequestID(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}

	extractor := textextract.NewExtractor(textextract.Config{
		Pdftotext:     cfg.Extractor.Pdftotext,
		Tesseract:     cfg.Extractor.Tesseract,
		TesseractLang: cfg.Extractor.TesseractLang,
		TessdataDir:   cfg.Extractor.TessdataDir,
		Timeout:       cfg.Extractor.Timeout,
	}, nil, logger)

	fileName := filepath.Base(path)
	res, err := extractor.Extract(ctx, data, fileName)
	if err != nil {
		logger.Error("extract text", "path", path, "error", err)
		os.Exit(1)
	}
	logger.Info("parsebill.text.ok", "req_id", reqID, "method", res.Method, "chars", len(res.Text))

	if *textOnly {
		budget := provider.ServiceConfig(cfg.LLM).Budget
		fmt.Println(res.Text)
		fmt.Println("-----")
		fmt.Println(llm.ExtractRelevantText(res.Text, budget))
		return
	}

	if cfg.LLM.APIKey == "" && cfg.LLM.Provider != "gemini" {
		logger.Error("LLM_API_KEY env var is required")
		os.Exit(2)
	}
	svc, err := provider.NewFieldExtractor(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Error("build extractor", "error", err)
		os.Exit(1)
	}

	parsed, _, err := svc.Extract(ctx, llm.ExtractRequest{Text: res.Text, FileName: fileName, DocumentID: uuid.NewString()})
	if err != nil {
		logger.Error("extract fields", "error", err)
		os.Exit(1)
	}

	out := struct {
		Result   *llm.BillingParseResult `json:"result"`
		Inferred *resolver.Inference     `json:"inferred,omitempty"`
		Method   string                  `json:"textMethod"`
	}{Result: parsed, Method: res.Method}
	if inf, ok := resolver.NewInferrer(logger).InferProviderFromContent(fileName, res.Text); ok {
		out.Inferred = &inf
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("encode", "error", err)
		os.Exit(1)
	}
}
