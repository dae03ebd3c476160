package hoa

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/bills-tracker/internal/entity"
)

type DiffStatus string

const (
	StatusNew       DiffStatus = "new"
	StatusRemoved   DiffStatus = "removed"
	StatusIncreased DiffStatus = "increased"
	StatusDecreased DiffStatus = "decreased"
	StatusUnchanged DiffStatus = "unchanged"
)

const unlabeled = "Sin etiqueta"

var epsilon = decimal.NewFromFloat(0.01)

// RubroDiff is computed on read and never stored.
type RubroDiff struct {
	RubroKey      string     `json:"rubroKey"`
	Label         string     `json:"label"`
	CurrentTotal  *float64   `json:"currentTotal"`
	PreviousTotal *float64   `json:"previousTotal"`
	DiffAmount    float64    `json:"diffAmount"`
	DiffPercent   *float64   `json:"diffPercent"`
	Status        DiffStatus `json:"status"`
}

type ComparisonResult struct {
	Current    *entity.HoaSummary `json:"current"`
	Previous   *entity.HoaSummary `json:"previous"`
	RubroDiffs []RubroDiff        `json:"rubroDiffs"`
}

// CompareHoaSummaries diffs two periods. Rubros match on rubroNumber, or on
// the lowercased label when the number is missing. Results are sorted by
// absolute difference, largest first.
func CompareHoaSummaries(current, previous *entity.HoaSummary) ComparisonResult {
	curMap, curKeys := rubroMap(current)
	prevMap, prevKeys := rubroMap(previous)

	keys := curKeys
	for _, k := range prevKeys {
		if _, ok := curMap[k]; !ok {
			keys = append(keys, k)
		}
	}

	diffs := make([]RubroDiff, 0, len(keys))
	for _, k := range keys {
		cur, inCur := curMap[k]
		prev, inPrev := prevMap[k]

		label := unlabeled
		switch {
		case inCur && cur.Label != nil:
			label = *cur.Label
		case inPrev && prev.Label != nil:
			label = *prev.Label
		}
		var number *int
		if inCur && cur.RubroNumber != nil {
			number = cur.RubroNumber
		} else if inPrev {
			number = prev.RubroNumber
		}

		var curTotal, prevTotal *float64
		if inCur {
			curTotal = cur.Total
		}
		if inPrev {
			prevTotal = prev.Total
		}
		cv, pv := decimalOrZero(curTotal), decimalOrZero(prevTotal)
		diff := cv.Sub(pv)

		var status DiffStatus
		switch {
		case inCur && !inPrev:
			status = StatusNew
		case !inCur && inPrev:
			status = StatusRemoved
		case diff.Abs().LessThanOrEqual(epsilon):
			status = StatusUnchanged
		case cv.GreaterThan(pv):
			status = StatusIncreased
		default:
			status = StatusDecreased
		}

		var pct *float64
		if pv.GreaterThan(epsilon) {
			p := diff.Div(pv).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
			pct = &p
		}

		diffs = append(diffs, RubroDiff{
			RubroKey:      rubroKey(number, label),
			Label:         label,
			CurrentTotal:  curTotal,
			PreviousTotal: prevTotal,
			DiffAmount:    diff.InexactFloat64(),
			DiffPercent:   pct,
			Status:        status,
		})
	}

	sort.SliceStable(diffs, func(i, j int) bool {
		return abs(diffs[i].DiffAmount) > abs(diffs[j].DiffAmount)
	})

	return ComparisonResult{Current: current, Previous: previous, RubroDiffs: diffs}
}

// rubroMap indexes rubros by identity key; the first occurrence of a key wins.
func rubroMap(s *entity.HoaSummary) (map[string]entity.HoaRubro, []string) {
	m := make(map[string]entity.HoaRubro)
	var order []string
	if s == nil {
		return m, order
	}
	for _, r := range s.Rubros {
		label := ""
		if r.Label != nil {
			label = *r.Label
		}
		k := rubroKey(r.RubroNumber, label)
		if _, ok := m[k]; ok {
			continue
		}
		m[k] = r
		order = append(order, k)
	}
	return m, order
}

func rubroKey(number *int, label string) string {
	if number != nil {
		return strconv.Itoa(*number) + "::"
	}
	return "na::" + strings.ToLower(strings.TrimSpace(label))
}

func decimalOrZero(f *float64) decimal.Decimal {
	if f == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*f)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
