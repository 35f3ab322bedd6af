package mediatypes

import "testing"

func TestIsVideo(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"movie.mp4", true},
		{"MOVIE.MP4", true},
		{"show.mkv", true},
		{"clip.webm", true},
		{"old.avi", true},
		{"tape.m2ts", true},
		{"notes.txt", false},
		{"image.jpg", false},
		{"archive.tar.gz", false},
		{"noextension", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsVideo(tt.name); got != tt.want {
			t.Errorf("IsVideo(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestExt(t *testing.T) {
	if got := Ext("Some.Movie.MKV"); got != ".mkv" {
		t.Errorf("Ext() = %q, want .mkv", got)
	}
	if got := Ext("noext"); got != "" {
		t.Errorf("Ext(noext) = %q, want empty", got)
	}
}

func TestGetMimeType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"movie.mp4", "video/mp4"},
		{"show.MKV", "video/x-matroska"},
		{"seg.ts", "video/mp2t"},
		{"mystery.xyz123", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := GetMimeType(tt.name); got != tt.want {
			t.Errorf("GetMimeType(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
