package catalog

import (
	"github.com/wdgames/gameshelf/pkg/sizeunit"
)

// GameSizeKey is the game_info key holding the human-written size string.
const GameSizeKey = "Game Size"

// Entry is a single game in the catalog.
//
// ID is an opaque identity assigned by the Store when the entry is created
// (document load or admin add). It is stable for the lifetime of the store:
// filtering, prepending and deleting never reassign it. Everything that needs
// to reference an entry (selection, editor state, API routes) keys off ID.
//
// SizeGB and EstimatedSizeGB are derived from GameInfo and are never
// serialized back into the catalog document.
type Entry struct {
	ID        uint64
	Title     string
	BannerURL string

	// Nil means "no data". An empty map is normalized to nil on the way in
	// so the serialized document never carries {}.
	SystemRequirements map[string]string
	GameInfo           map[string]any

	SizeGB          float64
	EstimatedSizeGB float64
}

// RefreshSize recomputes the derived size fields from GameInfo.
// Missing or unparseable sizes degrade to a zero footprint.
func (e *Entry) RefreshSize() {
	var raw string
	if v, ok := e.GameInfo[GameSizeKey]; ok {
		if s, ok := v.(string); ok {
			raw = s
		}
	}
	e.SizeGB = sizeunit.ParseToGB(raw)
	e.EstimatedSizeGB = e.SizeGB * sizeunit.InstallOverhead
}

// EstimatedSizeLabel is the formatted install-footprint estimate shown next
// to the entry everywhere (list, plan, export rows).
func (e *Entry) EstimatedSizeLabel() string {
	return sizeunit.Format(e.EstimatedSizeGB)
}

func (e *Entry) normalize() {
	if len(e.SystemRequirements) == 0 {
		e.SystemRequirements = nil
	}
	if len(e.GameInfo) == 0 {
		e.GameInfo = nil
	}
	e.RefreshSize()
}
