package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joseph-ayodele/bills-tracker/internal/amqp"
	"github.com/joseph-ayodele/bills-tracker/internal/common"
	"github.com/joseph-ayodele/bills-tracker/internal/export"
	"github.com/joseph-ayodele/bills-tracker/internal/hoa"
	"github.com/joseph-ayodele/bills-tracker/internal/llm/provider"
	"github.com/joseph-ayodele/bills-tracker/internal/pipeline"
	repo "github.com/joseph-ayodele/bills-tracker/internal/repository"
	svc "github.com/joseph-ayodele/bills-tracker/internal/server"
	"github.com/joseph-ayodele/bills-tracker/internal/storage"
	"github.com/joseph-ayodele/bills-tracker/internal/textextract"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		uid      = flag.String("uid", "", "caller user id (required)")
		idsFile  = flag.String("ids", "", "file with one document id per line (default: remaining args)")
		publish  = flag.Bool("publish", false, "publish parse requests to AMQP instead of parsing in-process")
		building = flag.String("building", "", "building code to export a comparison for after parsing")
		unit     = flag.String("unit", "", "unit code to export a comparison for after parsing")
		out      = flag.String("out", "comparison.xlsx", "output XLSX path for -building/-unit")
	)
	flag.Parse()

	if *uid == "" {
		printError("Error: --uid is required\n")
		os.Exit(1)
	}
	ids, err := documentIDs(*idsFile, flag.Args())
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	logger := common.NewLogger(cfg.Log, os.Stdout)
	ctx := context.Background()

	if *publish {
		if err := publishAll(ctx, cfg.AMQP, *uid, ids, logger); err != nil {
			logger.Error("publish failed", "error", err)
			os.Exit(1)
		}
		return
	}

	db, closeDB, err := svc.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer closeDB()

	docsRepo := repo.NewDocumentRepository(db, logger)
	hoaRepo := repo.NewHoaSummaryRepository(db, logger)

	fields, err := provider.NewFieldExtractor(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Error("failed to build extractor", "error", err)
		os.Exit(1)
	}
	extractor := textextract.NewExtractor(textextract.Config{
		Pdftotext:     cfg.Extractor.Pdftotext,
		Tesseract:     cfg.Extractor.Tesseract,
		TesseractLang: cfg.Extractor.TesseractLang,
		TessdataDir:   cfg.Extractor.TessdataDir,
		Timeout:       cfg.Extractor.Timeout,
	}, nil, logger)
	fetcher := &storage.Router{
		HTTP:   storage.NewHTTPFetcher(cfg.Storage.HTTPTimeout, cfg.Storage.MaxBytes),
		Logger: logger,
	}
	processor := pipeline.NewProcessor(docsRepo, fetcher, extractor, fields, hoa.NewAggregator(hoaRepo, logger), logger)

	processed, failures := 0, 0
	for _, id := range ids {
		logger.Info("processing document", "document_id", id)
		doc, err := processor.ParseDocument(ctx, id, *uid)
		if err != nil {
			logger.Error("failed to parse document", "document_id", id, "error", err)
			failures++
			continue
		}
		processed++
		category := ""
		if doc.Category != nil {
			category = *doc.Category
		}
		logger.Info("document parsed", "document_id", id, "category", category, "status", doc.Status)
	}

	if *building != "" && *unit != "" {
		exporter := export.NewService(hoa.NewService(hoaRepo, logger), logger)
		b, err := exporter.ExportComparisonXLSX(ctx, hoa.CompareRequest{UserID: *uid, BuildingCode: *building, UnitCode: *unit})
		if err != nil {
			logger.Error("failed to export comparison", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, b, 0o644); err != nil {
			logger.Error("failed to write output file", "error", err)
			os.Exit(1)
		}
		logger.Info("comparison exported", "output", *out)
	}

	logger.Info("batch processing complete", "documents", len(ids), "processed", processed, "failures", failures)
	if failures > 0 {
		os.Exit(1)
	}
}

func publishAll(ctx context.Context, cfg common.AMQPConfig, uid string, ids []string, logger *slog.Logger) error {
	if cfg.URL == "" {
		return fmt.Errorf("AMQP_URL is required with --publish")
	}
	bus, err := amqp.NewClient(cfg.URL, cfg.Exchange, cfg.Queue, logger)
	if err != nil {
		return err
	}
	defer func() { _ = bus.Close() }()

	for _, id := range ids {
		reqCtx, reqID := common.EnsureRequestID(ctx)
		if err := bus.PublishParseRequest(reqCtx, amqp.NewParseRequestMessage(id, uid, reqID)); err != nil {
			return fmt.Errorf("publish %s: %w", id, err)
		}
	}
	logger.Info("parse requests published", "count", len(ids))
	return nil
}

func documentIDs(path string, args []string) ([]string, error) {
	if path == "" {
		if len(args) == 0 {
			return nil, fmt.Errorf("no document ids given")
		}
		return args, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if id := strings.TrimSpace(sc.Text()); id != "" && !strings.HasPrefix(id, "#") {
			ids = append(ids, id)
		}
	}
	return ids, sc.Err()
}
