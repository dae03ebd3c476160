package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/bills-tracker/internal/common"
	"github.com/joseph-ayodele/bills-tracker/internal/dbx"
	"github.com/joseph-ayodele/bills-tracker/internal/entity"
)

const hoaSummaryColumns = `id, user_id, building_code, building_address, unit_code, unit_label, owner_name,
	period_key, period_year, period_month, period_label, total_to_pay_unit, total_building_expenses,
	rubros, rubros_total, rubros_with_totals, created_at, updated_at`

// HoaSummaryRepository persists per-period HOA aggregates. It satisfies
// hoa.Store, hoa.TxRunner and hoa.Lister.
type HoaSummaryRepository struct {
	db     dbx.DBTX
	logger *slog.Logger
}

func NewHoaSummaryRepository(db dbx.DBTX, logger *slog.Logger) *HoaSummaryRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &HoaSummaryRepository{db: db, logger: logger}
}

func (r *HoaSummaryRepository) conn(ctx context.Context) dbx.DBTX {
	return dbx.Conn(ctx, r.db)
}

// InTx runs fn in a transaction when the repository sits on a *sql.DB and
// ctx is not already inside one; otherwise fn runs directly.
func (r *HoaSummaryRepository) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	db, ok := r.db.(*sql.DB)
	if !ok || dbx.InTx(ctx) {
		return fn(ctx)
	}
	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, _ dbx.DBTX) error {
		return fn(ctx)
	})
}

func (r *HoaSummaryRepository) Get(ctx context.Context, id string) (*entity.HoaSummary, error) {
	row := r.conn(ctx).QueryRowContext(ctx, `SELECT `+hoaSummaryColumns+` FROM hoa_summaries WHERE id = $1`, id)
	s, err := scanHoaSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("HOA_SUMMARY_NOT_FOUND", "hoa summary "+id+" not found", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get hoa summary: %w", common.ErrDatabase, err)
	}
	return s, nil
}

// Upsert inserts or replaces the summary by id. created_at is only written
// on insert.
func (r *HoaSummaryRepository) Upsert(ctx context.Context, s *entity.HoaSummary) error {
	rubros := s.Rubros
	if rubros == nil {
		rubros = []entity.HoaRubro{}
	}
	rubrosJSON, err := json.Marshal(rubros)
	if err != nil {
		return fmt.Errorf("encode rubros: %w", err)
	}

	_, err = r.conn(ctx).ExecContext(ctx, `INSERT INTO hoa_summaries (`+hoaSummaryColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (id) DO UPDATE SET
			building_address = EXCLUDED.building_address,
			unit_label = EXCLUDED.unit_label,
			owner_name = EXCLUDED.owner_name,
			period_label = EXCLUDED.period_label,
			total_to_pay_unit = EXCLUDED.total_to_pay_unit,
			total_building_expenses = EXCLUDED.total_building_expenses,
			rubros = EXCLUDED.rubros,
			rubros_total = EXCLUDED.rubros_total,
			rubros_with_totals = EXCLUDED.rubros_with_totals,
			updated_at = EXCLUDED.updated_at`,
		s.ID, s.UserID, s.BuildingCode, s.BuildingAddress, s.UnitCode, s.UnitLabel, s.OwnerName,
		s.PeriodKey, s.PeriodYear, s.PeriodMonth, s.PeriodLabel, s.TotalToPayUnit, s.TotalBuildingExpenses,
		string(rubrosJSON), s.RubrosTotal, s.RubrosWithTotals, s.CreatedAt.UTC(), s.UpdatedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("hoa_summaries.upsert.failed", "summary_id", s.ID, "error", err)
		return fmt.Errorf("%w: upsert hoa summary: %w", common.ErrDatabase, err)
	}
	return nil
}

// ListByUnit returns a unit's summaries, newest period first.
func (r *HoaSummaryRepository) ListByUnit(ctx context.Context, userID, buildingCode, unitCode string) ([]entity.HoaSummary, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, `SELECT `+hoaSummaryColumns+` FROM hoa_summaries
		WHERE user_id = $1 AND building_code = $2 AND unit_code = $3
		ORDER BY period_key DESC`, userID, buildingCode, unitCode)
	if err != nil {
		return nil, fmt.Errorf("%w: list hoa summaries: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []entity.HoaSummary
	for rows.Next() {
		s, err := scanHoaSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan hoa summary: %w", common.ErrDatabase, err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list hoa summaries: %w", common.ErrDatabase, err)
	}
	return out, nil
}

func scanHoaSummary(sc rowScanner) (*entity.HoaSummary, error) {
	var (
		s                                     entity.HoaSummary
		buildingAddress, unitLabel, ownerName sql.NullString
		totalToPay, totalBuilding, rubrosTotl sql.NullFloat64
		rubros                                []byte
	)
	err := sc.Scan(
		&s.ID, &s.UserID, &s.BuildingCode, &buildingAddress, &s.UnitCode, &unitLabel, &ownerName,
		&s.PeriodKey, &s.PeriodYear, &s.PeriodMonth, &s.PeriodLabel, &totalToPay, &totalBuilding,
		&rubros, &rubrosTotl, &s.RubrosWithTotals, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.BuildingAddress = nullString(buildingAddress)
	s.UnitLabel = nullString(unitLabel)
	s.OwnerName = nullString(ownerName)
	s.TotalToPayUnit = nullFloat(totalToPay)
	s.TotalBuildingExpenses = nullFloat(totalBuilding)
	s.RubrosTotal = nullFloat(rubrosTotl)
	s.Rubros = []entity.HoaRubro{}
	if len(rubros) > 0 {
		if err := json.Unmarshal(rubros, &s.Rubros); err != nil {
			return nil, fmt.Errorf("decode rubros: %w", err)
		}
	}
	return &s, nil
}
