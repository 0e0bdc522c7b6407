package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

const sampleDoc = `[
  {
    "title": "Elden Ring (v1.10)",
    "banner_url": "https://img.example/elden.jpg",
    "system_requirements": {"OS": "Windows 10", "RAM": "12 GB"},
    "game_info": {"Game Size": "60 GB", "Pre-Installed": true}
  },
  {
    "title": "Stardew Valley",
    "banner_url": "https://img.example/stardew.jpg",
    "system_requirements": null,
    "game_info": {"Game Size": "891 MB"}
  },
  {
    "title": "Mystery Game",
    "banner_url": "https://img.example/mystery.jpg",
    "system_requirements": {},
    "game_info": null
  }
]`

func loadSample(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	if err := s.Load([]byte(sampleDoc)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return s
}

func TestLoadAssignsIdentityAndSizes(t *testing.T) {
	s := loadSample(t)

	if s.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", s.Len())
	}

	entries := s.Entries()
	for i, e := range entries {
		if e.ID == 0 {
			t.Fatalf("entry %d has no identity", i)
		}
		got, ok := s.Get(e.ID)
		if !ok || got != e {
			t.Fatalf("entry %d does not resolve through its identity", i)
		}
	}

	if entries[0].SizeGB != 60 {
		t.Errorf("SizeGB = %v, want 60", entries[0].SizeGB)
	}
	if entries[0].EstimatedSizeGB != 75 {
		t.Errorf("EstimatedSizeGB = %v, want 75", entries[0].EstimatedSizeGB)
	}
	if entries[2].SizeGB != 0 || entries[2].EstimatedSizeGB != 0 {
		t.Errorf("entry without game_info must have zero footprint, got %v/%v",
			entries[2].SizeGB, entries[2].EstimatedSizeGB)
	}

	// Empty mapping normalizes to absent.
	if entries[2].SystemRequirements != nil {
		t.Errorf("empty system_requirements must normalize to nil, got %v", entries[2].SystemRequirements)
	}
}

func TestFilter(t *testing.T) {
	s := loadSample(t)

	t.Run("empty query returns authoritative list", func(t *testing.T) {
		for _, q := range []string{"", "   ", "\t"} {
			got := s.Filter(q)
			if !reflect.DeepEqual(got, s.Entries()) {
				t.Fatalf("Filter(%q) must equal the authoritative list", q)
			}
			if len(got) > 0 && &got[0] != &s.Entries()[0] {
				t.Fatalf("Filter(%q) must return the list itself, not a copy", q)
			}
		}
	})

	t.Run("case-folded substring match", func(t *testing.T) {
		got := s.Filter("STARDEW")
		if len(got) != 1 || got[0].Title != "Stardew Valley" {
			t.Fatalf("unexpected result: %+v", got)
		}
	})

	t.Run("preserves order", func(t *testing.T) {
		got := s.Filter("e")
		var titles []string
		for _, e := range got {
			titles = append(titles, e.Title)
		}
		want := []string{"Elden Ring (v1.10)", "Stardew Valley", "Mystery Game"}
		if !reflect.DeepEqual(titles, want) {
			t.Fatalf("got %v, want %v", titles, want)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		if got := s.Filter("zzzzz"); len(got) != 0 {
			t.Fatalf("expected empty view, got %d entries", len(got))
		}
	})
}

func TestAddPrependsWithStableIdentities(t *testing.T) {
	s := loadSample(t)

	before := make(map[uint64]string)
	for _, e := range s.Entries() {
		before[e.ID] = e.Title
	}

	added := s.Add(&Entry{
		Title:     "New Game",
		BannerURL: "https://img.example/new.jpg",
		GameInfo:  map[string]any{GameSizeKey: "10 GB"},
	})

	if s.Entries()[0] != added {
		t.Fatal("Add must prepend the new entry")
	}
	if added.EstimatedSizeGB != 12.5 {
		t.Errorf("derived size not computed on Add: %v", added.EstimatedSizeGB)
	}

	// Every pre-existing identity still resolves to the same entry.
	for id, title := range before {
		e, ok := s.Get(id)
		if !ok || e.Title != title {
			t.Fatalf("identity %d no longer resolves to %q", id, title)
		}
	}
}

func TestUpdateAndRemove(t *testing.T) {
	s := loadSample(t)
	target := s.Entries()[1]

	err := s.Update(target.ID, &Entry{
		Title:     "Stardew Valley (v1.6)",
		BannerURL: target.BannerURL,
		GameInfo:  map[string]any{GameSizeKey: "1.2 GB"},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got, _ := s.Get(target.ID); got.Title != "Stardew Valley (v1.6)" || got.SizeGB != 1.2 {
		t.Fatalf("Update did not apply in place: %+v", got)
	}

	if err := s.Update(9999, &Entry{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update(unknown) = %v, want ErrNotFound", err)
	}

	if err := s.Remove(target.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok := s.Get(target.ID); ok {
		t.Fatal("removed entry still resolves")
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 entries after remove, got %d", s.Len())
	}
	if err := s.Remove(target.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double Remove = %v, want ErrNotFound", err)
	}
}

func TestSerializeDropsDerivedFields(t *testing.T) {
	s := loadSample(t)
	doc, err := s.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	var decoded []map[string]json.RawMessage
	if err := json.Unmarshal(doc, &decoded); err != nil {
		t.Fatalf("serialized document is not valid JSON: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("expected 3 records, got %d", len(decoded))
	}

	for i, rec := range decoded {
		for _, forbidden := range []string{"ID", "id", "SizeGB", "EstimatedSizeGB", "_index", "_sizeGB"} {
			if _, ok := rec[forbidden]; ok {
				t.Fatalf("record %d leaks derived field %q", i, forbidden)
			}
		}
		for _, required := range []string{"title", "banner_url", "system_requirements", "game_info"} {
			if _, ok := rec[required]; !ok {
				t.Fatalf("record %d missing field %q", i, required)
			}
		}
	}

	// game_info booleans survive the round trip.
	var info map[string]any
	if err := json.Unmarshal(decoded[0]["game_info"], &info); err != nil {
		t.Fatal(err)
	}
	if v, ok := info["Pre-Installed"].(bool); !ok || !v {
		t.Fatalf("boolean game_info value lost: %v", info["Pre-Installed"])
	}
}

func TestPageSlice(t *testing.T) {
	var view []*Entry
	for i := 0; i < 120; i++ {
		view = append(view, &Entry{ID: uint64(i + 1), Title: fmt.Sprintf("Game %03d", i)})
	}

	tests := []struct {
		page     int
		wantLen  int
		wantMore bool
	}{
		{1, 50, true},
		{2, 50, true},
		{3, 20, false},
		{4, 0, false},
	}

	for _, tc := range tests {
		slice, more := PageSlice(view, tc.page, PageSize)
		if len(slice) != tc.wantLen || more != tc.wantMore {
			t.Fatalf("page %d: got len=%d more=%v, want len=%d more=%v",
				tc.page, len(slice), more, tc.wantLen, tc.wantMore)
		}
	}

	// Page content lines up with the view order.
	slice, _ := PageSlice(view, 2, PageSize)
	if slice[0].Title != "Game 050" || !strings.HasPrefix(slice[49].Title, "Game 099") {
		t.Fatalf("page 2 boundaries wrong: %s .. %s", slice[0].Title, slice[49].Title)
	}
}

func TestCursor(t *testing.T) {
	c := NewCursor()
	if c.Page() != 1 {
		t.Fatalf("new cursor page = %d, want 1", c.Page())
	}
	c.Advance()
	c.Advance()
	if c.Page() != 3 {
		t.Fatalf("after two advances page = %d, want 3", c.Page())
	}
	c.Reset()
	if c.Page() != 1 {
		t.Fatalf("after reset page = %d, want 1", c.Page())
	}
}
