package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/blue-code/FlexPlay/internal/logging"
)

// GetTranscode resolves the browser-compatible rendition of a video,
// rebuilding it synchronously on miss or staleness, and serves it with
// Range support.
// GET /api/transcode/{folder}/{filename}
func (h *Handlers) GetTranscode(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assetFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	path, err := h.store.ResolveTranscode(r.Context(), asset)
	if err != nil {
		logging.Error("transcode %s/%s: %v", asset.Folder, asset.Name, err)
		writeError(w, err)
		return
	}
	h.serveFile(w, r, path, "video/mp4")
}

// GetHLSPlaylist resolves the asset's HLS bundle and serves its playlist.
// GET /api/hls/{folder}/{filename}/playlist.m3u8
func (h *Handlers) GetHLSPlaylist(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assetFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	playlist, err := h.store.ResolveHLS(r.Context(), asset)
	if err != nil {
		logging.Error("hls %s/%s: %v", asset.Folder, asset.Name, err)
		writeError(w, err)
		return
	}
	h.serveFile(w, r, playlist, "application/vnd.apple.mpegurl")
}

// GetHLSSegment serves one transport-stream segment of an existing
// bundle. Segments are only ever generated alongside their playlist, so
// a missing segment is a plain 404, never a rebuild.
// GET /api/hls/{folder}/{filename}/{segment}
func (h *Handlers) GetHLSSegment(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assetFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	path, err := h.store.HLSSegment(asset, mux.Vars(r)["segment"])
	if err != nil {
		writeError(w, err)
		return
	}
	h.serveFile(w, r, path, "video/mp2t")
}

// GetThumbnail serves the asset's thumbnail when available. A miss
// schedules background generation and answers 202; a stale thumbnail is
// served while its replacement is generated.
// GET /api/thumbnail/{folder}/{filename}
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assetFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := h.store.ResolveThumbnail(asset)
	if err != nil {
		writeError(w, err)
		return
	}

	if res.Path == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		writeJSON(w, map[string]interface{}{"pending": true})
		return
	}
	if res.Pending {
		w.Header().Set("X-Thumbnail-Pending", "true")
	}
	h.serveFile(w, r, res.Path, "image/jpeg")
}

// GetProbe returns probed stream metadata for a video.
// GET /api/probe/{folder}/{filename}
func (h *Handlers) GetProbe(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assetFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	probe, err := h.store.ResolveProbe(r.Context(), asset)
	if err != nil {
		logging.Error("probe %s/%s: %v", asset.Folder, asset.Name, err)
		writeError(w, err)
		return
	}
	writeJSON(w, probe)
}

// RunCacheSweep triggers an eviction sweep and reports what it freed.
// POST /api/cache/sweep
func (h *Handlers) RunCacheSweep(w http.ResponseWriter, r *http.Request) {
	result := h.sweep.Sweep()
	writeJSON(w, result)
}
