package workers

import "testing"

func TestSlots(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		fallback int
		limit    int
		want     int
	}{
		{"Unset", "", 2, 8, 2},
		{"Override", "4", 2, 8, 4},
		{"OverrideCapped", "100", 2, 8, 8},
		{"Invalid", "lots", 2, 8, 2},
		{"Zero", "0", 2, 8, 2},
		{"Negative", "-3", 2, 8, 2},
		{"NoCap", "100", 2, 0, 100},
		{"FallbackFloor", "", 0, 8, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_WORKERS", tt.env)
			if got := Slots("TEST_WORKERS", tt.fallback, tt.limit); got != tt.want {
				t.Errorf("Slots(%q, %d, %d) = %d, want %d", tt.env, tt.fallback, tt.limit, got, tt.want)
			}
		})
	}
}
