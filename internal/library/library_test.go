package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestLibrary(t *testing.T) (*Library, string, string) {
	t.Helper()
	moviesDir := t.TempDir()
	showsDir := t.TempDir()

	writeFile(t, moviesDir, "old.mp4")
	writeFile(t, moviesDir, "new.mkv")
	writeFile(t, moviesDir, "notes.txt") // not a video
	writeFile(t, showsDir, "episode.mp4")
	if err := os.Mkdir(filepath.Join(moviesDir, "subdir.mp4"), 0o755); err != nil {
		t.Fatal(err)
	}

	// Make the ordering unambiguous.
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(filepath.Join(moviesDir, "old.mp4"), old, old); err != nil {
		t.Fatal(err)
	}

	lib := New([]Folder{
		{Name: "movies", Path: moviesDir},
		{Name: "shows", Path: showsDir},
	})
	return lib, moviesDir, showsDir
}

func TestListAllFolders(t *testing.T) {
	lib, _, _ := newTestLibrary(t)

	assets := lib.List(nil)
	if len(assets) != 3 {
		t.Fatalf("List(nil) returned %d assets, want 3: %+v", len(assets), assets)
	}

	// Newest first.
	for i := 1; i < len(assets); i++ {
		if assets[i].ModTime.After(assets[i-1].ModTime) {
			t.Errorf("assets out of order at %d: %s before %s", i, assets[i-1].Name, assets[i].Name)
		}
	}
	if assets[len(assets)-1].Name != "old.mp4" {
		t.Errorf("oldest asset = %q, want old.mp4", assets[len(assets)-1].Name)
	}
}

func TestListFiltered(t *testing.T) {
	lib, _, _ := newTestLibrary(t)

	assets := lib.List([]string{"shows"})
	if len(assets) != 1 || assets[0].Name != "episode.mp4" {
		t.Errorf("List(shows) = %+v, want just episode.mp4", assets)
	}

	if got := lib.List([]string{"nonexistent"}); len(got) != 0 {
		t.Errorf("List(nonexistent) = %+v, want empty", got)
	}

	// Empty names in the filter are ignored, not treated as a folder.
	if got := lib.List([]string{""}); len(got) != 3 {
		t.Errorf("List([\"\"]) returned %d assets, want all 3", len(got))
	}
}

func TestCount(t *testing.T) {
	lib, _, _ := newTestLibrary(t)

	if got := lib.Count("movies"); got != 2 {
		t.Errorf("Count(movies) = %d, want 2", got)
	}
	if got := lib.Count("missing"); got != 0 {
		t.Errorf("Count(missing) = %d, want 0", got)
	}
}

func TestFind(t *testing.T) {
	lib, moviesDir, _ := newTestLibrary(t)

	asset, err := lib.Find("movies", "old.mp4")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if asset.Folder != "movies" || asset.Name != "old.mp4" || asset.Extension != ".mp4" {
		t.Errorf("asset = %+v", asset)
	}
	if asset.Path != filepath.Join(moviesDir, "old.mp4") {
		t.Errorf("path = %q", asset.Path)
	}

	if _, err := lib.Find("movies", "missing.mp4"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find(missing file) err = %v, want ErrNotFound", err)
	}
	if _, err := lib.Find("badfolder", "old.mp4"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find(bad folder) err = %v, want ErrNotFound", err)
	}
}

func TestFindURLEncodedName(t *testing.T) {
	lib, moviesDir, _ := newTestLibrary(t)
	writeFile(t, moviesDir, "my movie.mp4")

	asset, err := lib.Find("movies", "my%20movie.mp4")
	if err != nil {
		t.Fatalf("Find(encoded): %v", err)
	}
	if asset.Name != "my movie.mp4" {
		t.Errorf("name = %q", asset.Name)
	}
}

func TestFindAnywhere(t *testing.T) {
	lib, _, _ := newTestLibrary(t)

	asset, err := lib.FindAnywhere("episode.mp4")
	if err != nil {
		t.Fatalf("FindAnywhere: %v", err)
	}
	if asset.Folder != "shows" {
		t.Errorf("folder = %q, want shows", asset.Folder)
	}

	if _, err := lib.FindAnywhere("ghost.mp4"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindAnywhere(missing) err = %v, want ErrNotFound", err)
	}
}

func TestSafeJoin(t *testing.T) {
	base := t.TempDir()

	got, err := SafeJoin(base, "clip.mp4")
	if err != nil {
		t.Fatalf("SafeJoin: %v", err)
	}
	if got != filepath.Join(base, "clip.mp4") {
		t.Errorf("SafeJoin = %q", got)
	}

	// Directory components are stripped, never followed.
	got, err = SafeJoin(base, "../../etc/passwd")
	if err != nil {
		t.Fatalf("SafeJoin(traversal): %v", err)
	}
	if got != filepath.Join(base, "passwd") {
		t.Errorf("SafeJoin(traversal) = %q", got)
	}

	for _, bad := range []string{".", "..", "%2e%2e"} {
		if _, err := SafeJoin(base, bad); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("SafeJoin(%q) err = %v, want ErrInvalidPath", bad, err)
		}
	}
}
