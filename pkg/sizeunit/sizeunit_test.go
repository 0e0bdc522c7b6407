package sizeunit

import (
	"math"
	"testing"
)

func TestParseToGB(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"plain gigabytes", "118.5 GB", 118.5},
		{"megabytes", "891 MB", 891.0 / 1024},
		{"kilobytes", "500 KB", 500.0 / (1024 * 1024)},
		{"decimal comma", "1,5 GB", 1.5},
		{"lowercase unit", "2.3 gb", 2.3},
		{"mixed case megabytes", "730 Mb", 730.0 / 1024},
		{"no unit defaults to GB", "42", 42},
		{"empty string", "", 0},
		{"no numeric token", "unknown", 0},
		{"unit glued to number", "118.5GB", 118.5},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := ParseToGB(tc.input)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("ParseToGB(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  string
	}{
		{"whole number", 500, "500.0 GB"},
		{"rounds half up", 0.25, "0.3 GB"},
		{"rounds down", 1.24, "1.2 GB"},
		{"zero", 0, "0.0 GB"},
		{"nan treated as zero", math.NaN(), "0.0 GB"},
		{"infinity treated as zero", math.Inf(1), "0.0 GB"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := Format(tc.input); got != tc.want {
				t.Fatalf("Format(%v) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestEstimateInstallSize(t *testing.T) {
	if got := EstimateInstallSize("530 MB"); got != "0.6 GB" {
		t.Fatalf("EstimateInstallSize(530 MB) = %q, want %q", got, "0.6 GB")
	}

	// The helper must stay consistent with parse + overhead + format.
	for _, s := range []string{"118.5 GB", "891 MB", "12 KB", "1,5 GB", "", "unknown"} {
		want := Format(ParseToGB(s) * InstallOverhead)
		if got := EstimateInstallSize(s); got != want {
			t.Fatalf("EstimateInstallSize(%q) = %q, want %q", s, got, want)
		}
	}
}
