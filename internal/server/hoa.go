package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/joseph-ayodele/bills-tracker/internal/hoa"
)

func compareRequest(r *http.Request, uid string) hoa.CompareRequest {
	q := r.URL.Query()
	return hoa.CompareRequest{
		UserID:       uid,
		BuildingCode: strings.TrimSpace(q.Get("buildingCode")),
		UnitCode:     strings.TrimSpace(q.Get("unitCode")),
		Current:      strings.TrimSpace(q.Get("current")),
		Previous:     strings.TrimSpace(q.Get("previous")),
	}
}

func (a *API) handleCompare(w http.ResponseWriter, r *http.Request) {
	uid, err := callerUID(r)
	if err != nil {
		a.writeAppError(w, r, err, "")
		return
	}
	res, err := a.comparer.CompareLatest(r.Context(), compareRequest(r, uid))
	if err != nil {
		a.writeAppError(w, r, err, "Failed to compare HOA summaries")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleCompareXLSX(w http.ResponseWriter, r *http.Request) {
	uid, err := callerUID(r)
	if err != nil {
		a.writeAppError(w, r, err, "")
		return
	}
	req := compareRequest(r, uid)
	xlsx, err := a.exporter.ExportComparisonXLSX(r.Context(), req)
	if err != nil {
		a.writeAppError(w, r, err, "Failed to export comparison")
		return
	}
	name := fmt.Sprintf("hoa_%s_%s.xlsx", req.BuildingCode, req.UnitCode)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(xlsx)
}
