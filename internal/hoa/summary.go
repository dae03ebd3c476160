package hoa

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/bills-tracker/internal/common"
	"github.com/joseph-ayodele/bills-tracker/internal/entity"
)

// Store persists summaries keyed by their composite id.
type Store interface {
	Get(ctx context.Context, id string) (*entity.HoaSummary, error)
	Upsert(ctx context.Context, s *entity.HoaSummary) error
}

// TxRunner is implemented by stores that can make the read-merge-write of
// Upsert atomic.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SummaryID builds {userId}_{buildingCode}_{unitCode}_{periodKey}.
func SummaryID(userID, buildingCode, unitCode, periodKey string) string {
	return userID + "_" + buildingCode + "_" + unitCode + "_" + periodKey
}

type Aggregator struct {
	store  Store
	now    func() time.Time
	logger *slog.Logger
}

func NewAggregator(store Store, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{store: store, now: time.Now, logger: logger}
}

func (a *Aggregator) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if tr, ok := a.store.(TxRunner); ok {
		return tr.InTx(ctx, fn)
	}
	return fn(ctx)
}

// Upsert builds the summary for userID from details and merges it into the
// store. It returns (nil, nil) without writing when the user, building, unit
// or period is missing.
func (a *Aggregator) Upsert(ctx context.Context, userID string, details any) (*entity.HoaSummary, error) {
	d := NormalizeHoaDetails(details)
	if userID == "" || d == nil || d.BuildingCode == nil || d.UnitCode == nil || d.PeriodKey == nil {
		a.logger.Debug("hoa.summary.skipped", "user_id", userID, "has_details", d != nil)
		return nil, nil
	}

	now := a.now().UTC()
	totals := CalculateHoaTotals(d.Rubros)
	s := &entity.HoaSummary{
		ID:                    SummaryID(userID, *d.BuildingCode, *d.UnitCode, *d.PeriodKey),
		UserID:                userID,
		BuildingCode:          *d.BuildingCode,
		BuildingAddress:       d.BuildingAddress,
		UnitCode:              *d.UnitCode,
		UnitLabel:             d.UnitLabel,
		OwnerName:             d.OwnerName,
		PeriodKey:             *d.PeriodKey,
		PeriodYear:            *d.PeriodYear,
		PeriodMonth:           *d.PeriodMonth,
		PeriodLabel:           *d.PeriodLabel,
		TotalToPayUnit:        d.TotalToPayUnit,
		TotalBuildingExpenses: d.TotalBuildingExpenses,
		Rubros:                d.Rubros,
		RubrosTotal:           totals.RubrosTotal,
		RubrosWithTotals:      totals.RubrosWithTotals,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	var existing *entity.HoaSummary
	err := a.inTx(ctx, func(ctx context.Context) error {
		prev, err := a.store.Get(ctx, s.ID)
		switch {
		case err == nil && prev != nil:
			existing = prev
			s.CreatedAt = prev.CreatedAt
		case err != nil && !errors.Is(err, common.ErrNotFound):
			return common.WrapError(err, "load hoa summary")
		}
		if err := a.store.Upsert(ctx, s); err != nil {
			a.logger.Error("hoa.summary.upsert_failed", "summary_id", s.ID, "error", err)
			return common.WrapError(err, "upsert hoa summary")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.logger.Info("hoa.summary.upserted",
		"summary_id", s.ID,
		"rubros", len(s.Rubros),
		"rubros_with_totals", s.RubrosWithTotals,
		"created", existing == nil,
	)
	return s, nil
}
