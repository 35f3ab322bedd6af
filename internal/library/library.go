package library

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/blue-code/FlexPlay/internal/logging"
	"github.com/blue-code/FlexPlay/internal/mediatypes"
)

// ErrNotFound is returned when a referenced asset does not exist in any
// configured folder.
var ErrNotFound = errors.New("video not found")

// ErrInvalidPath is returned when a requested filename escapes its folder.
var ErrInvalidPath = errors.New("invalid file path")

// Folder is one configured library folder.
type Folder struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// Asset is a source video file identified by (folder, filename).
type Asset struct {
	Folder    string    `json:"folder"`
	Name      string    `json:"name"`
	Path      string    `json:"-"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"modified"`
	Extension string    `json:"extension"`
}

// Library lists and resolves video assets across an ordered set of
// configured folders. It holds no mutable state; the filesystem is the
// source of truth.
type Library struct {
	folders []Folder
}

// New creates a Library over the given folders. Folders that do not
// exist are kept (they may appear later, e.g. a mount) but logged.
func New(folders []Folder) *Library {
	for _, f := range folders {
		if _, err := os.Stat(f.Path); err != nil {
			logging.Warn("library folder %q not accessible: %v", f.Name, err)
		}
	}
	return &Library{folders: folders}
}

// Folders returns the configured folders in order.
func (l *Library) Folders() []Folder {
	return l.folders
}

// FolderPaths returns the configured folder paths in order.
func (l *Library) FolderPaths() []string {
	paths := make([]string, 0, len(l.folders))
	for _, f := range l.folders {
		paths = append(paths, f.Path)
	}
	return paths
}

// List returns all video assets, newest modification first. folderFilter
// narrows the result to the named folders; nil or empty means all.
func (l *Library) List(folderFilter []string) []Asset {
	wanted := make(map[string]bool, len(folderFilter))
	for _, name := range folderFilter {
		if name != "" {
			wanted[name] = true
		}
	}

	var assets []Asset
	for _, folder := range l.folders {
		if len(wanted) > 0 && !wanted[folder.Name] {
			continue
		}
		assets = append(assets, l.scanFolder(folder)...)
	}

	sort.Slice(assets, func(i, j int) bool {
		return assets[i].ModTime.After(assets[j].ModTime)
	})
	return assets
}

// Count returns the number of video files in one configured folder.
func (l *Library) Count(folderName string) int {
	for _, folder := range l.folders {
		if folder.Name == folderName {
			return len(l.scanFolder(folder))
		}
	}
	return 0
}

// scanFolder lists video files directly inside a folder (non-recursive).
func (l *Library) scanFolder(folder Folder) []Asset {
	entries, err := os.ReadDir(folder.Path)
	if err != nil {
		logging.Debug("scan %q: %v", folder.Path, err)
		return nil
	}

	var assets []Asset
	for _, entry := range entries {
		if entry.IsDir() || !mediatypes.IsVideo(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			logging.Debug("stat %q: %v", entry.Name(), err)
			continue
		}
		assets = append(assets, Asset{
			Folder:    folder.Name,
			Name:      entry.Name(),
			Path:      filepath.Join(folder.Path, entry.Name()),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			Extension: mediatypes.Ext(entry.Name()),
		})
	}
	return assets
}

// Find resolves (folder, filename) to an Asset. The filename is URL
// decoded and confined to the folder; traversal attempts return
// ErrInvalidPath.
func (l *Library) Find(folderName, filename string) (Asset, error) {
	for _, folder := range l.folders {
		if folder.Name != folderName {
			continue
		}
		return l.findIn(folder, filename)
	}
	return Asset{}, fmt.Errorf("folder %q: %w", folderName, ErrNotFound)
}

// FindAnywhere resolves a filename by searching every configured folder
// in order, matching the original single-namespace lookup behavior.
func (l *Library) FindAnywhere(filename string) (Asset, error) {
	for _, folder := range l.folders {
		asset, err := l.findIn(folder, filename)
		if err == nil {
			return asset, nil
		}
	}
	return Asset{}, ErrNotFound
}

func (l *Library) findIn(folder Folder, filename string) (Asset, error) {
	path, err := SafeJoin(folder.Path, filename)
	if err != nil {
		return Asset{}, err
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Asset{}, ErrNotFound
	}

	return Asset{
		Folder:    folder.Name,
		Name:      filepath.Base(path),
		Path:      path,
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		Extension: mediatypes.Ext(path),
	}, nil
}

// SafeJoin joins a URL-encoded filename onto base, rejecting any result
// that would escape the base directory.
func SafeJoin(base, filename string) (string, error) {
	if decoded, err := url.PathUnescape(filename); err == nil {
		filename = decoded
	}

	// Strip directory components entirely; assets live flat in a folder.
	filename = filepath.Base(filename)
	if filename == "." || filename == ".." || filename == string(filepath.Separator) {
		return "", ErrInvalidPath
	}

	baseAbs, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolve base path: %w", err)
	}
	joined, err := filepath.Abs(filepath.Join(baseAbs, filename))
	if err != nil {
		return "", fmt.Errorf("resolve file path: %w", err)
	}

	if joined != baseAbs && !strings.HasPrefix(joined, baseAbs+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return joined, nil
}
