package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/joseph-ayodele/bills-tracker/internal/amqp"
	"github.com/joseph-ayodele/bills-tracker/internal/async"
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

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := common.NewLogger(cfg.Log, os.Stdout)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("billsd exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *common.Config, logger *slog.Logger) error {
	db, closeDB, err := svc.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	docsRepo := repo.NewDocumentRepository(db, logger)
	hoaRepo := repo.NewHoaSummaryRepository(db, logger)

	fetcher, closeFetchers, err := newFetcher(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer closeFetchers()

	extractor := textextract.NewExtractor(textextract.Config{
		Pdftotext:     cfg.Extractor.Pdftotext,
		Tesseract:     cfg.Extractor.Tesseract,
		TesseractLang: cfg.Extractor.TesseractLang,
		TessdataDir:   cfg.Extractor.TessdataDir,
		Timeout:       cfg.Extractor.Timeout,
	}, nil, logger)

	fields, err := provider.NewFieldExtractor(ctx, cfg.LLM, logger)
	if err != nil {
		return err
	}

	aggregator := hoa.NewAggregator(hoaRepo, logger)
	processor := pipeline.NewProcessor(docsRepo, fetcher, extractor, fields, aggregator, logger)

	queue := async.NewProcessorQueue(processor, logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.Size),
		async.WithProcessTimeout(cfg.Queue.ProcessTimeout),
	)

	compare := hoa.NewService(hoaRepo, logger)
	exporter := export.NewService(compare, logger)
	api := svc.NewAPI(processor, queue, compare, exporter, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	grpcServer, healthServer := svc.NewHealthServer()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			return err
		}
		logger.Info("grpc health listening", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		svc.WatchDatabase(gctx, healthServer, db, 15*time.Second, logger)
		return nil
	})

	if cfg.AMQP.URL != "" {
		bus, err := amqp.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, logger)
		if err != nil {
			return err
		}
		defer func() { _ = bus.Close() }()

		g.Go(func() error {
			err := bus.ConsumeParseRequests(gctx, func(ctx context.Context, msg *amqp.ParseRequestMessage) error {
				return queue.Enqueue(ctx, async.Job{
					DocumentID:  msg.DocumentID,
					CallerUID:   msg.CallerUID,
					RequestID:   msg.RequestID,
					SubmittedAt: time.Now(),
				})
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("amqp disabled")
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", "error", err)
		}
		grpcServer.GracefulStop()
		queue.Shutdown(shutdownCtx)
		return nil
	})

	return g.Wait()
}

// newFetcher builds the scheme router. S3 is always available through the
// default credential chain; GCS only when a credentials file is configured.
func newFetcher(ctx context.Context, cfg common.StorageConfig, logger *slog.Logger) (*storage.Router, func(), error) {
	router := &storage.Router{
		HTTP:   storage.NewHTTPFetcher(cfg.HTTPTimeout, cfg.MaxBytes),
		Logger: logger,
	}
	closeFn := func() {}

	s3f, err := storage.NewS3Fetcher(ctx, storage.S3Config{
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		logger.Warn("s3 fetcher disabled", "error", err)
	} else {
		router.S3 = s3f
	}

	if cfg.GCSCredentialsFile != "" {
		gcs, err := storage.NewGCSFetcher(ctx, cfg.GCSCredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		router.GCS = gcs
		closeFn = func() { _ = gcs.Close() }
	}
	return router, closeFn, nil
}
