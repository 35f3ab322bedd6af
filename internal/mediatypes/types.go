package mediatypes

import (
	"mime"
	"path/filepath"
	"strings"
)

// VideoExtensions maps file extensions to whether they are recognized
// video formats. The set is intentionally broad: anything ffmpeg can
// usually open is worth listing, since incompatible containers are
// transcoded on demand anyway.
var VideoExtensions = map[string]bool{
	".mp4": true, ".m4v": true, ".mov": true, ".qt": true,
	".avi": true, ".mkv": true, ".webm": true,
	".flv": true, ".f4v": true,
	".wmv": true, ".asf": true,
	".mpg": true, ".mpeg": true, ".mpe": true,
	".m2v": true, ".m4p": true,
	".ts": true, ".mts": true, ".m2ts": true,
	".3gp": true, ".3g2": true,
	".ogv": true, ".ogg": true, ".ogm": true,
	".vob": true, ".rm": true, ".rmvb": true,
	".divx": true, ".mxf": true,
	".mod": true, ".tod": true, ".dat": true,
	".dv": true, ".amv": true,
}

// MimeTypes maps video file extensions to their MIME types. Extensions
// not listed here fall back to the mime package and finally to
// application/octet-stream.
var MimeTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".f4v":  "video/mp4",
	".mov":  "video/quicktime",
	".qt":   "video/quicktime",
	".avi":  "video/x-msvideo",
	".divx": "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".flv":  "video/x-flv",
	".wmv":  "video/x-ms-wmv",
	".asf":  "video/x-ms-asf",
	".mpg":  "video/mpeg",
	".mpeg": "video/mpeg",
	".mpe":  "video/mpeg",
	".m2v":  "video/mpeg",
	".vob":  "video/mpeg",
	".ts":   "video/mp2t",
	".mts":  "video/mp2t",
	".m2ts": "video/mp2t",
	".3gp":  "video/3gpp",
	".3g2":  "video/3gpp2",
	".ogv":  "video/ogg",
	".ogg":  "video/ogg",
	".ogm":  "video/ogg",
	".rm":   "application/vnd.rn-realmedia",
	".rmvb": "application/vnd.rn-realmedia-vbr",
	".dv":   "video/x-dv",
	".mxf":  "application/mxf",
}

// IsVideo returns true if the filename has a recognized video extension.
func IsVideo(name string) bool {
	return VideoExtensions[Ext(name)]
}

// Ext returns the lowercased extension of name including the leading dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// GetMimeType returns the MIME type for a filename based on its extension.
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(name string) string {
	ext := Ext(name)
	if mt, ok := MimeTypes[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return "application/octet-stream"
}
