// Package export derives shareable order artifacts (plain text and a PNG
// table) from the current selection.
package export

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/wdgames/gameshelf/pkg/catalog"
	"github.com/wdgames/gameshelf/pkg/plan"
	"github.com/wdgames/gameshelf/pkg/sizeunit"
)

// ErrCapacityExceeded blocks exports while the selection does not fit the
// drive. The user deselects and retries; nothing fatal about it.
var ErrCapacityExceeded = errors.New("export: selection exceeds drive capacity")

const (
	orderHeader    = "Daftar Game Pesanan"
	emptySelection = "(Belum ada game yang dipilih)"
)

// Row is one line of the tabular summary.
type Row struct {
	N         int
	Title     string
	SizeLabel string
}

// GuardCapacity refuses export artifacts for an overcommitted budget.
// Callers check this before composing anything.
func GuardCapacity(b plan.Budget) error {
	if b.UsedGB > b.CapacityGB {
		return ErrCapacityExceeded
	}
	return nil
}

// SummaryRows builds the tabular summary in selection order.
func SummaryRows(selection []*catalog.Entry) []Row {
	rows := make([]Row, 0, len(selection))
	for i, e := range selection {
		title := e.Title
		if title == "" {
			title = "Untitled"
		}
		rows = append(rows, Row{
			N:         i + 1,
			Title:     title,
			SizeLabel: e.EstimatedSizeLabel(),
		})
	}
	return rows
}

// TotalEstimatedGB sums the install footprint of the selection.
func TotalEstimatedGB(selection []*catalog.Entry) float64 {
	var total float64
	for _, e := range selection {
		total += e.EstimatedSizeGB
	}
	return total
}

// Trailing version/build parentheticals only: (v2.31), (Build 1491.50),
// (B_20231875 + Co-op). Edition names and other parentheticals stay.
var versionSuffix = regexp.MustCompile(`\s*\((?:\s*(?:[vV]\s*\d|build\b|Build\b|B_\d|b_\d)[^)]*)\)\s*$`)

// NormalizeTitle strips trailing version suffixes, repeatedly, so a title
// like "Game (v1.0) (Build 5)" collapses to "Game".
func NormalizeTitle(title string) string {
	t := strings.TrimSpace(title)
	for versionSuffix.MatchString(t) {
		t = strings.TrimSpace(versionSuffix.ReplaceAllString(t, ""))
	}
	return t
}

// BuildOrderText produces the copy-to-clipboard order report.
func BuildOrderText(selection []*catalog.Entry, totalGB float64) string {
	if len(selection) == 0 {
		return orderHeader + "\n\n" + emptySelection
	}

	lines := []string{orderHeader, ""}
	for i, e := range selection {
		title := e.Title
		if title == "" {
			title = "Untitled"
		}
		lines = append(lines, strconv.Itoa(i+1)+". "+NormalizeTitle(title))
	}
	lines = append(lines, "", "Total Size: "+sizeunit.Format(totalGB))
	return strings.Join(lines, "\n")
}
