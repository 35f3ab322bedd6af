package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/blue-code/FlexPlay/internal/history"
	"github.com/blue-code/FlexPlay/internal/logging"
)

// GetHistory returns play history, newest first.
// GET /api/history
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.hist.List(r.Context())
	if err != nil {
		logging.Error("list history: %v", err)
		writeJSONError(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, entries)
}

// RecordHistory upserts a play-history entry.
// POST /api/history
func (h *Handlers) RecordHistory(w http.ResponseWriter, r *http.Request) {
	var entry history.Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if entry.Filename == "" {
		writeJSONError(w, "filename is required", http.StatusBadRequest)
		return
	}

	if err := h.hist.Record(r.Context(), entry); err != nil {
		logging.Error("record history: %v", err)
		writeJSONError(w, "failed to record history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{"success": true})
}
