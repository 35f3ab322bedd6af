package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/blue-code/FlexPlay/internal/artifacts"
	"github.com/blue-code/FlexPlay/internal/editor"
	"github.com/blue-code/FlexPlay/internal/ffmpeg"
	"github.com/blue-code/FlexPlay/internal/library"
	"github.com/blue-code/FlexPlay/internal/logging"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Encoding errors are logged since we cannot recover from them here.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		logging.Error("failed to encode JSON error response: %v", err)
	}
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrNotFound),
		errors.Is(err, artifacts.ErrSegmentNotFound),
		errors.Is(err, editor.ErrTaskNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, library.ErrInvalidPath),
		errors.Is(err, editor.ErrNoRanges),
		errors.Is(err, editor.ErrInvalidRange),
		errors.Is(err, editor.ErrAllRemoved):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ffmpeg.ErrDisabled),
		errors.Is(err, editor.ErrEditsDisabled):
		writeJSONError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
	}
}

// assetFromRequest resolves the {folder}/{filename} route variables.
func (h *Handlers) assetFromRequest(r *http.Request) (library.Asset, error) {
	vars := mux.Vars(r)
	return h.lib.Find(vars["folder"], vars["filename"])
}
