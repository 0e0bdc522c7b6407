package editor

import (
	"errors"
	"testing"

	"github.com/wdgames/gameshelf/pkg/catalog"
)

func validDraft() Draft {
	return Draft{
		Title:     "Some Game",
		BannerURL: "https://img.example/banner.jpg",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Draft)
		wantField string
	}{
		{"valid minimal", func(d *Draft) {}, ""},
		{"empty title", func(d *Draft) { d.Title = "   " }, "title"},
		{"empty banner", func(d *Draft) { d.BannerURL = "" }, "banner"},
		{"valid requirements", func(d *Draft) { d.Requirements = `{"OS": "Windows 10"}` }, ""},
		{"empty requirements text ok", func(d *Draft) { d.Requirements = "  " }, ""},
		{"broken requirements json", func(d *Draft) { d.Requirements = `{"OS": ` }, "requirements"},
		{"non-object requirements", func(d *Draft) { d.Requirements = `["a"]` }, "requirements"},
		{"nested requirements", func(d *Draft) { d.Requirements = `{"OS": {"min": "7"}}` }, "requirements"},
		{"valid info with bool", func(d *Draft) { d.Info = `{"Game Size": "10 GB", "Pre-Installed": true}` }, ""},
		{"broken info json", func(d *Draft) { d.Info = `not json` }, "info"},
		{"nested info", func(d *Draft) { d.Info = `{"Links": {"a": "b"}}` }, "info"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			d := validDraft()
			tc.mutate(&d)
			err := Validate(d)

			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid draft, got %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.wantField {
				t.Fatalf("Field = %q, want %q", verr.Field, tc.wantField)
			}
		})
	}
}

func TestUpsertNewPrepends(t *testing.T) {
	store := catalog.NewStore()
	if err := store.Load([]byte(`[{"title":"Old","banner_url":"x","system_requirements":null,"game_info":null}]`)); err != nil {
		t.Fatal(err)
	}
	ed := New(store)

	d := validDraft()
	d.Info = `{"Game Size": "4 GB"}`
	e, err := ed.Upsert(0, d)
	if err != nil {
		t.Fatalf("Upsert(new) failed: %v", err)
	}

	if store.Entries()[0] != e {
		t.Fatal("new entry must be prepended")
	}
	if e.ID == 0 {
		t.Fatal("new entry has no identity")
	}
	if e.EstimatedSizeGB != 5 {
		t.Fatalf("derived size = %v, want 5", e.EstimatedSizeGB)
	}
}

func TestUpsertEditKeepsIdentityAndPosition(t *testing.T) {
	store := catalog.NewStore()
	doc := `[
		{"title":"A","banner_url":"x","system_requirements":null,"game_info":null},
		{"title":"B","banner_url":"y","system_requirements":null,"game_info":null}
	]`
	if err := store.Load([]byte(doc)); err != nil {
		t.Fatal(err)
	}
	ed := New(store)
	target := store.Entries()[1]

	d := Draft{Title: "B Remastered", BannerURL: "y2", Info: `{}`}
	e, err := ed.Upsert(target.ID, d)
	if err != nil {
		t.Fatalf("Upsert(edit) failed: %v", err)
	}

	if e.ID != target.ID {
		t.Fatalf("identity changed: %d -> %d", target.ID, e.ID)
	}
	if store.Entries()[1] != e {
		t.Fatal("edited entry moved position")
	}
	if e.GameInfo != nil {
		t.Fatal("empty info object must normalize to absent")
	}
}

func TestUpsertUnknownID(t *testing.T) {
	ed := New(catalog.NewStore())
	if _, err := ed.Upsert(123, validDraft()); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteInvalidatesEditingReference(t *testing.T) {
	store := catalog.NewStore()
	if err := store.Load([]byte(`[{"title":"A","banner_url":"x","system_requirements":null,"game_info":null}]`)); err != nil {
		t.Fatal(err)
	}
	ed := New(store)
	id := store.Entries()[0].ID

	ed.SetEditing(id)
	if err := ed.Delete(id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, open := ed.Editing(); open {
		t.Fatal("editing reference must be invalidated by delete")
	}
	if err := ed.Delete(id); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("double delete = %v, want ErrNotFound", err)
	}
}
