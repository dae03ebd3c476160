package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bills-tracker/internal/common"
	"github.com/joseph-ayodele/bills-tracker/internal/entity"
	"github.com/joseph-ayodele/bills-tracker/internal/hoa"
)

type stubComparer struct {
	res hoa.ComparisonResult
	err error
	got hoa.CompareRequest
}

func (s *stubComparer) CompareLatest(_ context.Context, req hoa.CompareRequest) (hoa.ComparisonResult, error) {
	s.got = req
	return s.res, s.err
}

func f64(v float64) *float64 { return &v }
func ip(v int) *int          { return &v }
func sp(v string) *string    { return &v }

func TestExportComparisonXLSX(t *testing.T) {
	prev := &entity.HoaSummary{PeriodKey: "2024-04", PeriodLabel: "04/2024", TotalToPayUnit: f64(1000),
		Rubros: []entity.HoaRubro{{RubroNumber: ip(1), Label: sp("Remuneraciones al personal"), Total: f64(100)}}}
	cur := &entity.HoaSummary{PeriodKey: "2024-05", PeriodLabel: "05/2024", TotalToPayUnit: f64(1200),
		Rubros: []entity.HoaRubro{
			{RubroNumber: ip(1), Label: sp("Remuneraciones al personal y cargas sociales (Rubro 1)"), Total: f64(120)},
			{Label: sp("Seguros"), Total: f64(30)},
		}}
	cmp := &stubComparer{res: hoa.CompareHoaSummaries(cur, prev)}
	svc := NewService(cmp, nil)

	req := hoa.CompareRequest{UserID: "u1", BuildingCode: "B1", UnitCode: "U1"}
	b, err := svc.ExportComparisonXLSX(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, req, cmp.got)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, []string{"Current period", "05/2024", "1200"}, rows[0])
	assert.Equal(t, "Rubro", rows[3][0])
	// sorted by |diff|: seguros (+30, new) before rubro 1 (+20)
	assert.Equal(t, "Seguros", rows[4][1])
	assert.Equal(t, "new", rows[4][6])
	assert.Equal(t, "increased", rows[5][6])
	assert.Equal(t, "20", rows[5][4])
	assert.Equal(t, "20", rows[5][5])
}

func TestExportPropagatesCompareErrors(t *testing.T) {
	svc := NewService(&stubComparer{err: common.ErrNotFound}, nil)
	_, err := svc.ExportComparisonXLSX(context.Background(), hoa.CompareRequest{})
	assert.ErrorIs(t, err, common.ErrNotFound)
}
