package version

import "testing"

func TestIsNewer(t *testing.T) {
	tests := []struct {
		name     string
		latest   string
		current  string
		expected bool
	}{
		{"same version", "0.1.0", "0.1.0", false},
		{"patch upgrade", "0.1.1", "0.1.0", true},
		{"patch downgrade", "0.0.9", "0.1.0", false},
		{"minor upgrade", "0.2.0", "0.1.5", true},
		{"major upgrade", "1.0.0", "0.9.9", true},
		{"multi-digit patch", "0.0.100", "0.0.99", true},
		{"different lengths ahead", "1.0", "0.9.9", true},
		{"different lengths behind", "0.9.9", "1.0", false},
		{"dev suffix ahead", "0.2.0-dev", "0.1.0", true},
		{"pre-release same base", "0.1.0-alpha", "0.1.0", false},
		{"build metadata", "0.2.0+build123", "0.1.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNewer(tt.latest, tt.current); got != tt.expected {
				t.Errorf("isNewer(%q, %q) = %v, want %v", tt.latest, tt.current, got, tt.expected)
			}
		})
	}
}
