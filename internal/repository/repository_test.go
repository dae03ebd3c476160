package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bills-tracker/constants"
	"github.com/joseph-ayodele/bills-tracker/internal/common"
	"github.com/joseph-ayodele/bills-tracker/internal/entity"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var fixedNow = time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func documentRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "file_name", "content_type", "pdf_url", "storage_url",
		"provider", "provider_id", "provider_name_detected", "category", "total_amount", "amount", "currency",
		"issue_date", "due_date", "period_start", "period_end", "hoa_details",
		"status", "text_extract", "error_message", "last_parsed_at", "version", "created_at", "updated_at",
	})
}

func TestDocumentGet(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentRepository(db, nil)

	due := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM documents WHERE id = \$1`).
		WithArgs("doc-1").
		WillReturnRows(documentRow().AddRow(
			"doc-1", "u1", "edesur.pdf", "application/pdf", "https://files/doc-1.pdf", "",
			"Edesur", "edesur", nil, "electricity", 1234.56, 1234.56, "ARS",
			nil, due, nil, nil, nil,
			"parsed", "TOTAL 1234,56", nil, fixedNow, int64(3), fixedNow, fixedNow,
		))

	d, err := repo.Get(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", d.UserID)
	assert.Equal(t, "edesur", *d.ProviderID)
	assert.Nil(t, d.ProviderNameDetected)
	assert.InDelta(t, 1234.56, *d.TotalAmount, 1e-9)
	assert.Nil(t, d.IssueDate)
	assert.Equal(t, due, *d.DueDate)
	assert.Nil(t, d.HoaDetails)
	assert.Equal(t, constants.StatusParsed, d.Status)
	assert.Equal(t, int64(3), d.Version)
	assert.Equal(t, "https://files/doc-1.pdf", d.SourceURL())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentGetNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentRepository(db, nil)

	mock.ExpectQuery(`SELECT .+ FROM documents`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDocumentCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentRepository(db, nil).(*documentRepository)
	repo.now = func() time.Time { return fixedNow }

	mock.ExpectExec(`INSERT INTO documents`).
		WithArgs("doc-9", "u1", "aysa.pdf", "application/pdf", "", "gs://bills/aysa.pdf",
			nil, nil, nil, nil, nil, nil, nil,
			nil, nil, nil, nil, nil,
			"pending", nil, nil, nil, int64(1), fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	d := &entity.BillDocument{ID: "doc-9", UserID: "u1", FileName: "aysa.pdf",
		ContentType: "application/pdf", StorageURL: "gs://bills/aysa.pdf"}
	require.NoError(t, repo.Create(context.Background(), d))
	assert.Equal(t, constants.StatusPending, d.Status)
	assert.Equal(t, int64(1), d.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentUpdateWritesOnlySetFields(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentRepository(db, nil).(*documentRepository)
	repo.now = func() time.Time { return fixedNow }

	mock.ExpectExec(`UPDATE documents SET text_extract = \$1, status = \$2, error_message = \$3, updated_at = \$4, version = version \+ 1 WHERE id = \$5 AND version = \$6`).
		WithArgs("hello", "needs_review", "Failed to parse PDF", fixedNow, "doc-1", int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	patch := entity.DocumentPatch{
		TextExtract:  entity.SetField(ptr("hello")),
		Status:       entity.SetField(constants.StatusNeedsReview),
		ErrorMessage: entity.SetField(ptr(constants.MsgExtractionFailed)),
	}
	require.NoError(t, repo.Update(context.Background(), "doc-1", patch, 2))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentUpdateClearsWithNull(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentRepository(db, nil)

	mock.ExpectExec(`UPDATE documents SET error_message = \$1, updated_at = \$2, version = version \+ 1 WHERE id = \$3$`).
		WithArgs(nil, sqlmock.AnyArg(), "doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	patch := entity.DocumentPatch{ErrorMessage: entity.SetField[*string](nil)}
	require.NoError(t, repo.Update(context.Background(), "doc-1", patch, 0))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentUpdateConflictAndNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentRepository(db, nil)
	patch := entity.DocumentPatch{Status: entity.SetField(constants.StatusParsed)}

	mock.ExpectExec(`UPDATE documents SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Update(context.Background(), "doc-1", patch, 4)
	assert.ErrorIs(t, err, common.ErrConflict)

	mock.ExpectExec(`UPDATE documents SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.Update(context.Background(), "doc-1", patch, 0)
	assert.ErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentUpdateEmptyPatchIsNoop(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentRepository(db, nil)
	require.NoError(t, repo.Update(context.Background(), "doc-1", entity.DocumentPatch{}, 1))
	require.NoError(t, mock.ExpectationsWereMet())
}

func hoaRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "building_code", "building_address", "unit_code", "unit_label", "owner_name",
		"period_key", "period_year", "period_month", "period_label", "total_to_pay_unit", "total_building_expenses",
		"rubros", "rubros_total", "rubros_with_totals", "created_at", "updated_at",
	})
}

func TestHoaSummaryUpsertKeepsCreatedAtOnConflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewHoaSummaryRepository(db, nil)

	mock.ExpectExec(`INSERT INTO hoa_summaries .+ ON CONFLICT \(id\) DO UPDATE SET`).
		WithArgs("u1_B1_U1_2024-05", "u1", "B1", nil, "U1", nil, nil,
			"2024-05", 2024, 5, "05/2024", 100.0, nil,
			`[{"rubroNumber":1,"label":"Sueldos","total":100}]`, 100.0, 1, fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := &entity.HoaSummary{
		ID: "u1_B1_U1_2024-05", UserID: "u1", BuildingCode: "B1", UnitCode: "U1",
		PeriodKey: "2024-05", PeriodYear: 2024, PeriodMonth: 5, PeriodLabel: "05/2024",
		TotalToPayUnit: ptr(100.0),
		Rubros:         []entity.HoaRubro{{RubroNumber: ptr(1), Label: ptr("Sueldos"), Total: ptr(100.0)}},
		RubrosTotal:    ptr(100.0), RubrosWithTotals: 1,
		CreatedAt: fixedNow, UpdatedAt: fixedNow,
	}
	require.NoError(t, repo.Upsert(context.Background(), s))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHoaSummaryListByUnit(t *testing.T) {
	db, mock := newMock(t)
	repo := NewHoaSummaryRepository(db, nil)

	mock.ExpectQuery(`FROM hoa_summaries\s+WHERE user_id = \$1 AND building_code = \$2 AND unit_code = \$3\s+ORDER BY period_key DESC`).
		WithArgs("u1", "B1", "U1").
		WillReturnRows(hoaRows().
			AddRow("u1_B1_U1_2024-05", "u1", "B1", "Av. Siempreviva 742", "U1", "3B", nil,
				"2024-05", 2024, 5, "05/2024", 150.0, nil, `[{"rubroNumber":1,"label":"Sueldos","total":150}]`, 150.0, 1, fixedNow, fixedNow).
			AddRow("u1_B1_U1_2024-04", "u1", "B1", nil, "U1", nil, nil,
				"2024-04", 2024, 4, "04/2024", nil, nil, nil, nil, 0, fixedNow, fixedNow))

	list, err := repo.ListByUnit(context.Background(), "u1", "B1", "U1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2024-05", list[0].PeriodKey)
	assert.Equal(t, "Av. Siempreviva 742", *list[0].BuildingAddress)
	require.Len(t, list[0].Rubros, 1)
	assert.Equal(t, "Sueldos", *list[0].Rubros[0].Label)
	assert.Empty(t, list[1].Rubros)
	assert.Nil(t, list[1].TotalToPayUnit)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHoaSummaryGetNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewHoaSummaryRepository(db, nil)
	mock.ExpectQuery(`FROM hoa_summaries WHERE id = \$1`).WillReturnRows(hoaRows())

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRunMigrationsUsesEmbeddedDir(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	db, _ := newMock(t)
	require.NoError(t, RunMigrations(context.Background(), db))
	assert.Equal(t, ".", gotDir)
}

func TestHoaSummaryInTxWrapsReadAndWrite(t *testing.T) {
	db, mock := newMock(t)
	repo := NewHoaSummaryRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM hoa_summaries WHERE id = \$1`).WithArgs("k").WillReturnRows(hoaRows())
	mock.ExpectCommit()

	err := repo.InTx(context.Background(), func(ctx context.Context) error {
		_, err := repo.Get(ctx, "k")
		assert.ErrorIs(t, err, common.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHoaSummaryInTxRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewHoaSummaryRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := repo.InTx(context.Background(), func(context.Context) error {
		return common.ErrInternal
	})
	assert.ErrorIs(t, err, common.ErrInternal)
	require.NoError(t, mock.ExpectationsWereMet())
}
