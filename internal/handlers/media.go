package handlers

import (
	"net/http"
	"os"
	"strings"

	"github.com/blue-code/FlexPlay/internal/library"
	"github.com/blue-code/FlexPlay/internal/logging"
	"github.com/blue-code/FlexPlay/internal/mediatypes"
)

// folderSummary is the /api/folders response element.
type folderSummary struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// ListFolders returns the configured folders with their video counts.
// GET /api/folders
func (h *Handlers) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders := h.lib.Folders()
	summaries := make([]folderSummary, 0, len(folders))
	for _, f := range folders {
		summaries = append(summaries, folderSummary{
			Name:  f.Name,
			Path:  f.Path,
			Count: h.lib.Count(f.Name),
		})
	}
	writeJSON(w, summaries)
}

// ListVideos returns all video assets, optionally filtered by folder.
// GET /api/videos?folders=a,b
func (h *Handlers) ListVideos(w http.ResponseWriter, r *http.Request) {
	var filter []string
	if param := r.URL.Query().Get("folders"); param != "" {
		filter = strings.Split(param, ",")
	}

	assets := h.lib.List(filter)
	if assets == nil {
		assets = []library.Asset{}
	}
	writeJSON(w, assets)
}

// StreamVideo serves the source file with Range support.
// GET /api/video/{folder}/{filename}
func (h *Handlers) StreamVideo(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assetFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	h.serveFile(w, r, asset.Path, mediatypes.GetMimeType(asset.Name))
}

// DeleteVideo removes the source file, its derived artifacts and its
// play history.
// DELETE /api/video/{folder}/{filename}
func (h *Handlers) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assetFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := os.Remove(asset.Path); err != nil {
		logging.Error("delete %s/%s: %v", asset.Folder, asset.Name, err)
		writeJSONError(w, "failed to delete video", http.StatusInternalServerError)
		return
	}

	h.store.InvalidateAsset(asset)
	if err := h.hist.Remove(r.Context(), asset.Folder, asset.Name); err != nil {
		logging.Warn("remove history for %s/%s: %v", asset.Folder, asset.Name, err)
	}

	logging.Info("deleted %s/%s", asset.Folder, asset.Name)
	writeJSON(w, map[string]interface{}{"success": true})
}

// serveFile streams a file with Range support via http.ServeContent.
func (h *Handlers) serveFile(w http.ResponseWriter, r *http.Request, path, contentType string) {
	f, err := os.Open(path)
	if err != nil {
		writeJSONError(w, "file not accessible", http.StatusNotFound)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("close %s: %v", path, err)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		writeJSONError(w, "file not accessible", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
