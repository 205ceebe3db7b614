package infrastructure

import (
	"testing"
	"time"
)

func TestPrintedDuration(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Duration
	}{
		{"whole seconds", "213", 213 * time.Second},
		{"fractional seconds", "213.5", 213*time.Second + 500*time.Millisecond},
		{"live placeholder", "NA", 0},
		{"empty", "", 0},
		{"garbage", "abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := printedDuration(tt.input); got != tt.want {
				t.Errorf("printedDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPrintedString(t *testing.T) {
	if got := printedString("NA"); got != "" {
		t.Errorf("expected NA to normalize to empty, got %q", got)
	}
	if got := printedString("Uploader"); got != "Uploader" {
		t.Errorf("expected passthrough, got %q", got)
	}
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://www.youtube.com/watch?v=abc", true},
		{"http://example.com/song", true},
		{"never gonna give you up", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isURL(tt.input); got != tt.want {
			t.Errorf("isURL(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
