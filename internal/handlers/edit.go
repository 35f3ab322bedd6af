package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/blue-code/FlexPlay/internal/editor"
)

// editRequest is the /api/edit request body.
type editRequest struct {
	Folder   string         `json:"folder"`
	Filename string         `json:"filename"`
	Segments []editor.Range `json:"segments"`
}

// SubmitEdit starts a segment-removal edit task for a video.
// POST /api/edit
func (h *Handlers) SubmitEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Filename == "" {
		writeJSONError(w, "filename is required", http.StatusBadRequest)
		return
	}

	asset, err := h.lib.Find(req.Folder, req.Filename)
	if err != nil {
		writeError(w, err)
		return
	}

	taskID, err := h.pipeline.Submit(asset, req.Segments)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]string{
		"taskId":  taskID,
		"message": "edit task started",
	})
}

// GetEditStatus reports the state of an edit task.
// GET /api/edit/status/{id}
func (h *Handlers) GetEditStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.pipeline.Status(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status)
}
