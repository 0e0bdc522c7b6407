package plan

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/wdgames/gameshelf/pkg/catalog"
)

// storeWithSizes builds a store whose entries have the given raw sizes in GB.
func storeWithSizes(t *testing.T, sizes ...float64) *catalog.Store {
	t.Helper()
	doc := "["
	for i, gb := range sizes {
		if i > 0 {
			doc += ","
		}
		doc += fmt.Sprintf(`{"title":"Game %d","banner_url":"https://img.example/%d.jpg","system_requirements":null,"game_info":{"Game Size":"%v GB"}}`, i+1, i+1, gb)
	}
	doc += "]"

	s := catalog.NewStore()
	if err := s.Load([]byte(doc)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return s
}

func TestToggleIsItsOwnInverse(t *testing.T) {
	store := storeWithSizes(t, 10, 20, 30)
	p := New(500)

	first := store.Entries()[0].ID
	second := store.Entries()[1].ID
	p.Add(first)
	before := p.IDs()

	p.Toggle(second)
	p.Toggle(second)

	if !reflect.DeepEqual(p.IDs(), before) {
		t.Fatalf("toggle twice changed the selection: %v -> %v", before, p.IDs())
	}
	if p.Contains(second) {
		t.Fatal("entry still selected after double toggle")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	p := New(500)
	p.Remove(42)
	p.Add(42)
	p.Remove(42)
	p.Remove(42)
	if p.Len() != 0 {
		t.Fatalf("expected empty plan, got %d", p.Len())
	}
}

func TestSelectedPreservesInsertionOrderAndPurgesStale(t *testing.T) {
	store := storeWithSizes(t, 10, 20, 30)
	entries := store.Entries()
	p := New(500)

	// Select in an order different from catalog order.
	p.Add(entries[2].ID)
	p.Add(entries[0].ID)
	p.Add(entries[1].ID)

	var titles []string
	for _, e := range p.Selected(store) {
		titles = append(titles, e.Title)
	}
	if want := []string{"Game 3", "Game 1", "Game 2"}; !reflect.DeepEqual(titles, want) {
		t.Fatalf("selection order = %v, want %v", titles, want)
	}

	// Deleting an entry leaves a dangling ID; Selected must drop it.
	if err := store.Remove(entries[0].ID); err != nil {
		t.Fatal(err)
	}
	selected := p.Selected(store)
	if len(selected) != 2 {
		t.Fatalf("expected 2 live entries, got %d", len(selected))
	}
	if p.Contains(entries[0].ID) {
		t.Fatal("stale ID not purged from plan")
	}
}

func TestNoDanglingSelectionAcrossMutations(t *testing.T) {
	store := storeWithSizes(t, 5, 10, 15, 20)
	p := New(500)
	for _, e := range store.Entries() {
		p.Add(e.ID)
	}

	// Interleave adds and removes and verify the invariant after each step.
	steps := []func(){
		func() { store.Add(&catalog.Entry{Title: "Fresh", BannerURL: "x"}) },
		func() { _ = store.Remove(store.Entries()[2].ID) },
		func() { store.Add(&catalog.Entry{Title: "Fresher", BannerURL: "y"}) },
		func() { _ = store.Remove(store.Entries()[0].ID) },
	}
	for i, step := range steps {
		step()
		for _, e := range p.Selected(store) {
			if _, ok := store.Get(e.ID); !ok {
				t.Fatalf("step %d: selection resolved a dead entry %d", i, e.ID)
			}
		}
	}
}

func TestRecomputeClassification(t *testing.T) {
	tests := []struct {
		name      string
		sizes     []float64 // raw sizes; estimated = raw * 1.25
		capacity  float64
		wantUsed  float64
		wantState BudgetState
	}{
		// 344 GB raw -> 430 GB estimated: 86% of 500.
		{"warning above 85 percent", []float64{344}, 500, 430, StateWarning},
		// 408 GB raw -> 510 GB estimated: overcommitted.
		{"over capacity", []float64{408}, 500, 510, StateOver},
		// 80 GB raw -> 100 GB estimated.
		{"comfortably ok", []float64{80}, 500, 100, StateOK},
		{"empty selection", nil, 500, 0, StateOK},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			store := storeWithSizes(t, tc.sizes...)
			p := New(tc.capacity)
			for _, e := range store.Entries() {
				p.Add(e.ID)
			}

			b := p.Recompute(store)
			if b.UsedGB != tc.wantUsed {
				t.Errorf("UsedGB = %v, want %v", b.UsedGB, tc.wantUsed)
			}
			if b.State != tc.wantState {
				t.Errorf("State = %v, want %v", b.State, tc.wantState)
			}
			if b.RemainingGB != tc.capacity-tc.wantUsed {
				t.Errorf("RemainingGB = %v, want %v", b.RemainingGB, tc.capacity-tc.wantUsed)
			}
		})
	}
}

func TestRecomputePercentClamped(t *testing.T) {
	store := storeWithSizes(t, 800) // estimated 1000 GB
	p := New(500)
	p.Add(store.Entries()[0].ID)

	b := p.Recompute(store)
	if b.Percent != 100 {
		t.Fatalf("Percent = %v, want clamp to 100", b.Percent)
	}
	if b.State != StateOver {
		t.Fatalf("State = %v, want over", b.State)
	}
}

func TestNewDefaultsCapacity(t *testing.T) {
	if p := New(0); p.CapacityGB != DefaultCapacityGB {
		t.Fatalf("capacity = %v, want default %v", p.CapacityGB, DefaultCapacityGB)
	}
}
