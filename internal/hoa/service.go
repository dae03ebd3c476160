package hoa

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/bills-tracker/internal/common"
	"github.com/joseph-ayodele/bills-tracker/internal/entity"
)

// Lister reads the summaries of one unit, newest period first.
type Lister interface {
	ListByUnit(ctx context.Context, userID, buildingCode, unitCode string) ([]entity.HoaSummary, error)
}

type Service struct {
	summaries Lister
	logger    *slog.Logger
}

func NewService(summaries Lister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{summaries: summaries, logger: logger}
}

type CompareRequest struct {
	UserID       string
	BuildingCode string
	UnitCode     string
	Current      string // period key; empty = newest
	Previous     string // period key; empty = the period before Current
}

// CompareLatest compares two periods of one unit. Without explicit period
// keys it compares the newest summary with the one before it; a unit with a
// single period compares against nothing.
func (s *Service) CompareLatest(ctx context.Context, req CompareRequest) (ComparisonResult, error) {
	v := common.NewValidator()
	v.Field("userId", req.UserID, common.Required)
	v.Field("buildingCode", req.BuildingCode, common.Required)
	v.Field("unitCode", req.UnitCode, common.Required)
	if v.HasErrors() {
		return ComparisonResult{}, common.NewAppError("INVALID_COMPARE_REQUEST", v.ErrorMessage(), common.ErrInvalidInput)
	}

	list, err := s.summaries.ListByUnit(ctx, req.UserID, req.BuildingCode, req.UnitCode)
	if err != nil {
		return ComparisonResult{}, common.WrapError(err, "list hoa summaries")
	}
	if len(list) == 0 {
		return ComparisonResult{}, common.NewAppError("HOA_SUMMARY_NOT_FOUND", "no summaries for unit", common.ErrNotFound)
	}

	curIdx := 0
	if req.Current != "" {
		curIdx = indexOfPeriod(list, req.Current)
		if curIdx < 0 {
			return ComparisonResult{}, common.NewAppError("HOA_SUMMARY_NOT_FOUND", "no summary for period "+req.Current, common.ErrNotFound)
		}
	}
	current := &list[curIdx]

	var previous *entity.HoaSummary
	switch {
	case req.Previous != "":
		i := indexOfPeriod(list, req.Previous)
		if i < 0 {
			return ComparisonResult{}, common.NewAppError("HOA_SUMMARY_NOT_FOUND", "no summary for period "+req.Previous, common.ErrNotFound)
		}
		previous = &list[i]
	case curIdx+1 < len(list):
		previous = &list[curIdx+1]
	}

	res := CompareHoaSummaries(current, previous)
	s.logger.Info("hoa.compare.ok",
		"user_id", req.UserID,
		"building", req.BuildingCode,
		"unit", req.UnitCode,
		"current", current.PeriodKey,
		"has_previous", previous != nil,
		"diffs", len(res.RubroDiffs),
	)
	return res, nil
}

func indexOfPeriod(list []entity.HoaSummary, key string) int {
	for i := range list {
		if list[i].PeriodKey == key {
			return i
		}
	}
	return -1
}
