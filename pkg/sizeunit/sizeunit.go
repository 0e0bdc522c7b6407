package sizeunit

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// InstallOverhead is the multiplier applied to a catalog size to estimate the
// real install footprint on disk.
const InstallOverhead = 1.25

var numericToken = regexp.MustCompile(`\d+(\.\d+)?`)

// ParseToGB parses a human-written size string ("118.5 GB", "891 MB", "1,5 GB")
// into gigabytes. Unit detection is substring-based and case-insensitive.
// Unparseable input is worth 0 GB, never an error.
func ParseToGB(sizeStr string) float64 {
	if sizeStr == "" {
		return 0
	}

	s := strings.ToUpper(strings.ReplaceAll(sizeStr, ",", "."))
	token := numericToken.FindString(s)
	if token == "" {
		return 0
	}
	num, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0
	}

	if strings.Contains(s, "MB") {
		return num / 1024
	}
	if strings.Contains(s, "KB") {
		return num / (1024 * 1024)
	}
	return num
}

// Format renders a gigabyte value as "<n>.<d> GB" with exactly one decimal
// digit, rounding half up. Non-finite values render as 0.
func Format(gb float64) string {
	if math.IsNaN(gb) || math.IsInf(gb, 0) {
		gb = 0
	}
	rounded := math.Round(gb*10) / 10
	return strconv.FormatFloat(rounded, 'f', 1, 64) + " GB"
}

// EstimateInstallSize converts a raw catalog size string into the formatted
// estimated install size, e.g. "530 MB" -> "0.6 GB".
func EstimateInstallSize(sizeStr string) string {
	return Format(ParseToGB(sizeStr) * InstallOverhead)
}
