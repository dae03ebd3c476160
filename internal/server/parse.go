package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/joseph-ayodele/bills-tracker/internal/async"
	"github.com/joseph-ayodele/bills-tracker/internal/common"
)

type parseRequest struct {
	DocumentID string `json:"documentId"`
}

func decodeParseRequest(r *http.Request) (string, error) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", common.NewAppError("INVALID_BODY", "Invalid JSON body", common.ErrInvalidInput)
	}
	id := strings.TrimSpace(req.DocumentID)
	if id == "" {
		return "", common.NewAppError("MISSING_DOCUMENT_ID", "Missing documentId", common.ErrInvalidInput)
	}
	return id, nil
}

// handleParse runs the parse inline and returns the refreshed document.
func (a *API) handleParse(w http.ResponseWriter, r *http.Request) {
	uid, err := callerUID(r)
	if err != nil {
		a.writeAppError(w, r, err, "")
		return
	}
	id, err := decodeParseRequest(r)
	if err != nil {
		a.writeAppError(w, r, err, "")
		return
	}

	doc, err := a.parser.ParseDocument(r.Context(), id, uid)
	if err != nil {
		a.writeAppError(w, r, err, "Failed to parse document")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleParseAsync enqueues the parse and returns immediately.
func (a *API) handleParseAsync(w http.ResponseWriter, r *http.Request) {
	uid, err := callerUID(r)
	if err != nil {
		a.writeAppError(w, r, err, "")
		return
	}
	if a.queue == nil {
		writeError(w, http.StatusServiceUnavailable, "Async parsing is disabled")
		return
	}
	id, err := decodeParseRequest(r)
	if err != nil {
		a.writeAppError(w, r, err, "")
		return
	}

	job := async.Job{
		DocumentID:  id,
		CallerUID:   uid,
		SubmittedAt: time.Now(),
		RequestID:   common.RequestIDFromContext(r.Context()),
	}
	if err := a.queue.Enqueue(r.Context(), job); err != nil {
		a.writeAppError(w, r, err, "Failed to enqueue document")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"documentId": id, "status": "queued"})
}
