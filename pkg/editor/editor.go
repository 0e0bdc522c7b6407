// Package editor implements the admin-side CRUD over catalog entries. It
// validates form drafts, upserts them into the store and produces the
// document the catalog repository persists.
package editor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wdgames/gameshelf/pkg/catalog"
)

// Draft is the admin form: two required text fields and two optional JSON
// textareas holding flat key/value objects.
type Draft struct {
	Title        string
	BannerURL    string
	Requirements string
	Info         string
}

// ValidationError points at the offending form field so the caller can
// highlight it and leave the draft editable.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks a draft without touching the store.
func Validate(d Draft) error {
	_, err := buildEntry(d)
	return err
}

// buildEntry validates the draft and converts it to an entry. Empty parsed
// mappings come out as nil, never {}.
func buildEntry(d Draft) (*catalog.Entry, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	banner := strings.TrimSpace(d.BannerURL)
	if banner == "" {
		return nil, &ValidationError{Field: "banner", Reason: "must not be empty"}
	}

	reqs, err := parseRequirements(d.Requirements)
	if err != nil {
		return nil, err
	}
	info, err := parseInfo(d.Info)
	if err != nil {
		return nil, err
	}

	return &catalog.Entry{
		Title:              title,
		BannerURL:          banner,
		SystemRequirements: reqs,
		GameInfo:           info,
	}, nil
}

func parseRequirements(text string) (map[string]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return nil, &ValidationError{Field: "requirements", Reason: "must be a flat JSON object of strings"}
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}

func parseInfo(text string) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return nil, &ValidationError{Field: "info", Reason: "must be a flat JSON object"}
	}
	for k, v := range m {
		switch v.(type) {
		case string, bool, float64, nil:
		default:
			return nil, &ValidationError{Field: "info", Reason: fmt.Sprintf("value of %q must be a scalar", k)}
		}
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}

// Editor wraps a store with admin semantics: prepend on add, in-place edit,
// and invalidation of the remembered editing target on delete.
type Editor struct {
	store     *catalog.Store
	editingID uint64 // 0 = nothing open
}

func New(store *catalog.Store) *Editor {
	return &Editor{store: store}
}

func (ed *Editor) Store() *catalog.Store {
	return ed.store
}

// SetEditing remembers which entry the admin form currently targets.
func (ed *Editor) SetEditing(id uint64) {
	ed.editingID = id
}

func (ed *Editor) Editing() (uint64, bool) {
	return ed.editingID, ed.editingID != 0
}

// Upsert applies a draft: id 0 adds a new entry (prepended, fresh identity),
// any other id edits that entry in place.
func (ed *Editor) Upsert(id uint64, d Draft) (*catalog.Entry, error) {
	e, err := buildEntry(d)
	if err != nil {
		return nil, err
	}

	if id == 0 {
		return ed.store.Add(e), nil
	}
	if err := ed.store.Update(id, e); err != nil {
		return nil, err
	}
	updated, _ := ed.store.Get(id)
	return updated, nil
}

// Delete removes the entry and drops any stale editing reference to it.
func (ed *Editor) Delete(id uint64) error {
	if err := ed.store.Remove(id); err != nil {
		return err
	}
	if ed.editingID == id {
		ed.editingID = 0
	}
	return nil
}

// Serialize produces the persistable document for the catalog repository.
func (ed *Editor) Serialize() ([]byte, error) {
	return ed.store.Serialize()
}
