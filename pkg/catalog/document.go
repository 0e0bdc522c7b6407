package catalog

import (
	"encoding/json"
	"fmt"
)

// rawEntry mirrors one record of the external catalog document. Absent
// optional mappings are serialized as null, matching what the original
// document carries.
type rawEntry struct {
	Title              string            `json:"title"`
	BannerURL          string            `json:"banner_url"`
	SystemRequirements map[string]string `json:"system_requirements"`
	GameInfo           map[string]any    `json:"game_info"`
}

// DecodeDocument parses the catalog document (a JSON array of entries) into
// entries without identities. The Store assigns IDs on Load.
func DecodeDocument(doc []byte) ([]*Entry, error) {
	var raws []rawEntry
	if err := json.Unmarshal(doc, &raws); err != nil {
		return nil, fmt.Errorf("decode catalog document: %w", err)
	}

	entries := make([]*Entry, 0, len(raws))
	for _, r := range raws {
		e := &Entry{
			Title:              r.Title,
			BannerURL:          r.BannerURL,
			SystemRequirements: r.SystemRequirements,
			GameInfo:           r.GameInfo,
		}
		e.normalize()
		entries = append(entries, e)
	}
	return entries, nil
}

// EncodeDocument serializes entries back into the external document shape,
// dropping identities and derived size fields. Indented with two spaces like
// the document the original admin panel committed.
func EncodeDocument(entries []*Entry) ([]byte, error) {
	raws := make([]rawEntry, 0, len(entries))
	for _, e := range entries {
		raws = append(raws, rawEntry{
			Title:              e.Title,
			BannerURL:          e.BannerURL,
			SystemRequirements: e.SystemRequirements,
			GameInfo:           e.GameInfo,
		})
	}

	doc, err := json.MarshalIndent(raws, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode catalog document: %w", err)
	}
	return doc, nil
}
