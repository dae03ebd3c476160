package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/bills-tracker/constants"
	"github.com/joseph-ayodele/bills-tracker/internal/common"
	"github.com/joseph-ayodele/bills-tracker/internal/dbx"
	"github.com/joseph-ayodele/bills-tracker/internal/entity"
)

const documentColumns = `id, user_id, file_name, content_type, pdf_url, storage_url,
	provider, provider_id, provider_name_detected, category, total_amount, amount, currency,
	issue_date, due_date, period_start, period_end, hoa_details,
	status, text_extract, error_message, last_parsed_at, version, created_at, updated_at`

// DocumentRepository provides access to bill documents.
type DocumentRepository interface {
	Create(ctx context.Context, d *entity.BillDocument) error
	Get(ctx context.Context, id string) (*entity.BillDocument, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*entity.BillDocument, error)
	// Update writes the set fields of patch. expectedVersion > 0 enables
	// optimistic locking; a stale version returns common.ErrConflict.
	Update(ctx context.Context, id string, patch entity.DocumentPatch, expectedVersion int64) error
}

type documentRepository struct {
	db     dbx.DBTX
	now    func() time.Time
	logger *slog.Logger
}

func NewDocumentRepository(db dbx.DBTX, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepository{db: db, now: time.Now, logger: logger}
}

func (r *documentRepository) Create(ctx context.Context, d *entity.BillDocument) error {
	now := r.now().UTC()
	if d.Status == "" {
		d.Status = constants.StatusPending
	}
	d.Version = 1
	d.CreatedAt, d.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, `INSERT INTO documents (`+documentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)`,
		d.ID, d.UserID, d.FileName, d.ContentType, d.PDFURL, d.StorageURL,
		d.Provider, d.ProviderID, d.ProviderNameDetected, d.Category, d.TotalAmount, d.Amount, d.Currency,
		d.IssueDate, d.DueDate, d.PeriodStart, d.PeriodEnd, jsonArg(d.HoaDetails),
		string(d.Status), d.TextExtract, d.ErrorMessage, d.LastParsedAt, d.Version, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("documents.create.failed", "document_id", d.ID, "error", err)
		return fmt.Errorf("%w: insert document: %w", common.ErrDatabase, err)
	}
	r.logger.Info("documents.created", "document_id", d.ID, "user_id", d.UserID)
	return nil
}

func (r *documentRepository) Get(ctx context.Context, id string) (*entity.BillDocument, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("DOCUMENT_NOT_FOUND", "document "+id+" not found", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get document: %w", common.ErrDatabase, err)
	}
	return d, nil
}

func (r *documentRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*entity.BillDocument, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+documentColumns+` FROM documents
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.BillDocument
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan document: %w", common.ErrDatabase, err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list documents: %w", common.ErrDatabase, err)
	}
	return out, nil
}

func (r *documentRepository) Update(ctx context.Context, id string, patch entity.DocumentPatch, expectedVersion int64) error {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.TextExtract.Set {
		add("text_extract", patch.TextExtract.Value)
	}
	if patch.Provider.Set {
		add("provider", patch.Provider.Value)
	}
	if patch.ProviderID.Set {
		add("provider_id", patch.ProviderID.Value)
	}
	if patch.ProviderNameDetected.Set {
		add("provider_name_detected", patch.ProviderNameDetected.Value)
	}
	if patch.Category.Set {
		add("category", patch.Category.Value)
	}
	if patch.TotalAmount.Set {
		add("total_amount", patch.TotalAmount.Value)
	}
	if patch.Amount.Set {
		add("amount", patch.Amount.Value)
	}
	if patch.Currency.Set {
		add("currency", patch.Currency.Value)
	}
	if patch.IssueDate.Set {
		add("issue_date", patch.IssueDate.Value)
	}
	if patch.DueDate.Set {
		add("due_date", patch.DueDate.Value)
	}
	if patch.PeriodStart.Set {
		add("period_start", patch.PeriodStart.Value)
	}
	if patch.PeriodEnd.Set {
		add("period_end", patch.PeriodEnd.Value)
	}
	if patch.HoaDetails.Set {
		add("hoa_details", jsonArg(patch.HoaDetails.Value))
	}
	if patch.Status.Set {
		add("status", string(patch.Status.Value))
	}
	if patch.ErrorMessage.Set {
		add("error_message", patch.ErrorMessage.Value)
	}
	if patch.LastParsedAt.Set {
		add("last_parsed_at", patch.LastParsedAt.Value)
	}
	if len(sets) == 0 {
		return nil
	}
	add("updated_at", r.now().UTC())
	sets = append(sets, "version = version + 1")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE documents SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	if expectedVersion > 0 {
		args = append(args, expectedVersion)
		query += fmt.Sprintf(" AND version = $%d", len(args))
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("documents.update.failed", "document_id", id, "error", err)
		return fmt.Errorf("%w: update document: %w", common.ErrDatabase, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: update document: %w", common.ErrDatabase, err)
	}
	if n == 0 {
		if expectedVersion > 0 {
			return common.NewAppError("DOCUMENT_VERSION_CONFLICT",
				fmt.Sprintf("document %s changed since version %d", id, expectedVersion), common.ErrConflict)
		}
		return common.NewAppError("DOCUMENT_NOT_FOUND", "document "+id+" not found", common.ErrNotFound)
	}
	r.logger.Debug("documents.updated", "document_id", id, "columns", len(sets)-2)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(s rowScanner) (*entity.BillDocument, error) {
	var (
		d                                            entity.BillDocument
		provider, providerID, providerName, category sql.NullString
		currency, textExtract, errorMessage          sql.NullString
		totalAmount, amount                          sql.NullFloat64
		issueDate, dueDate, periodStart, periodEnd   sql.NullTime
		lastParsedAt                                 sql.NullTime
		hoaDetails                                   []byte
		status                                       string
	)
	err := s.Scan(
		&d.ID, &d.UserID, &d.FileName, &d.ContentType, &d.PDFURL, &d.StorageURL,
		&provider, &providerID, &providerName, &category, &totalAmount, &amount, &currency,
		&issueDate, &dueDate, &periodStart, &periodEnd, &hoaDetails,
		&status, &textExtract, &errorMessage, &lastParsedAt, &d.Version, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Provider = nullString(provider)
	d.ProviderID = nullString(providerID)
	d.ProviderNameDetected = nullString(providerName)
	d.Category = nullString(category)
	d.Currency = nullString(currency)
	d.TextExtract = nullString(textExtract)
	d.ErrorMessage = nullString(errorMessage)
	d.TotalAmount = nullFloat(totalAmount)
	d.Amount = nullFloat(amount)
	d.IssueDate = nullTime(issueDate)
	d.DueDate = nullTime(dueDate)
	d.PeriodStart = nullTime(periodStart)
	d.PeriodEnd = nullTime(periodEnd)
	d.LastParsedAt = nullTime(lastParsedAt)
	if len(hoaDetails) > 0 {
		d.HoaDetails = json.RawMessage(hoaDetails)
	}
	d.Status = constants.DocumentStatus(status)
	return &d, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}

// jsonArg passes JSONB as text so both pgx and sqlmock see a plain value.
func jsonArg(raw json.RawMessage) any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return string(raw)
}
