// Package server exposes the parse pipeline and HOA comparisons over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/joseph-ayodele/bills-tracker/internal/async"
	"github.com/joseph-ayodele/bills-tracker/internal/common"
	"github.com/joseph-ayodele/bills-tracker/internal/entity"
	"github.com/joseph-ayodele/bills-tracker/internal/hoa"
)

// UserHeader carries the authenticated caller uid, set by the auth proxy.
const UserHeader = "X-User-ID"

type Parser interface {
	ParseDocument(ctx context.Context, documentID, callerUID string) (*entity.BillDocument, error)
}

type Comparer interface {
	CompareLatest(ctx context.Context, req hoa.CompareRequest) (hoa.ComparisonResult, error)
}

type Exporter interface {
	ExportComparisonXLSX(ctx context.Context, req hoa.CompareRequest) ([]byte, error)
}

// API holds the HTTP handlers. Queue may be nil, which disables async parse.
type API struct {
	parser   Parser
	queue    async.Queue
	comparer Comparer
	exporter Exporter
	logger   *slog.Logger
}

func NewAPI(parser Parser, queue async.Queue, comparer Comparer, exporter Exporter, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{parser: parser, queue: queue, comparer: comparer, exporter: exporter, logger: logger}
}

func (a *API) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/parse", a.handleParse)
	mux.HandleFunc("POST /api/parse/async", a.handleParseAsync)
	mux.HandleFunc("GET /api/hoa/compare", a.handleCompare)
	mux.HandleFunc("GET /api/hoa/compare.xlsx", a.handleCompareXLSX)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return a.withRequestLog(mux)
}

func (a *API) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, reqID := common.EnsureRequestID(r.Context())
		if uid := r.Header.Get(UserHeader); uid != "" {
			ctx = context.WithValue(ctx, common.ContextKeyUserID, uid)
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		rec.Header().Set("X-Request-ID", reqID)

		next.ServeHTTP(rec, r.WithContext(ctx))

		a.logger.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"req_id", reqID,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func callerUID(r *http.Request) (string, error) {
	uid, _ := r.Context().Value(common.ContextKeyUserID).(string)
	if uid == "" {
		return "", errUnauthorized
	}
	return uid, nil
}

var errUnauthorized = errors.New("unauthorized")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeAppError maps err onto a status. Internal details stay in the logs.
func (a *API) writeAppError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if errors.Is(err, errUnauthorized) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	status := common.HTTPStatus(err)
	msg := fallback
	var appErr *common.AppError
	if status < http.StatusInternalServerError && errors.As(err, &appErr) {
		msg = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		a.logger.Error("http.error", "path", r.URL.Path, "req_id", common.RequestIDFromContext(r.Context()), "error", err)
	}
	writeError(w, status, msg)
}
