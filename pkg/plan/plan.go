// Package plan tracks which catalog entries are selected for an HDD order and
// how the selection measures up against the drive's capacity.
package plan

import (
	"math"

	"github.com/wdgames/gameshelf/pkg/catalog"
)

// BudgetState classifies how full the drive would be.
type BudgetState string

const (
	// StateOK means at least 15% of the capacity remains free.
	StateOK BudgetState = "ok"
	// StateWarning means the drive is over 85% full but not overcommitted.
	StateWarning BudgetState = "warning"
	// StateOver means the selection no longer fits.
	StateOver BudgetState = "over"
)

// DefaultCapacityGB matches the smallest drive the storefront offers.
const DefaultCapacityGB = 500

// Budget is a derived snapshot; recompute it after any mutation.
type Budget struct {
	CapacityGB  float64
	UsedGB      float64
	RemainingGB float64
	// Percent is clamped to [0,100] for display even when overcommitted.
	Percent float64
	State   BudgetState
	Count   int
}

// Plan is the selection set plus the capacity it is planned against.
// Selection order is insertion order; toggling an entry off and on again
// moves it to the end.
type Plan struct {
	ids        []uint64
	member     map[uint64]struct{}
	CapacityGB float64
}

func New(capacityGB float64) *Plan {
	if capacityGB <= 0 {
		capacityGB = DefaultCapacityGB
	}
	return &Plan{
		member:     make(map[uint64]struct{}),
		CapacityGB: capacityGB,
	}
}

// Toggle adds the entry if absent and removes it if present.
func (p *Plan) Toggle(id uint64) {
	if p.Contains(id) {
		p.Remove(id)
		return
	}
	p.member[id] = struct{}{}
	p.ids = append(p.ids, id)
}

// Add is an idempotent insert.
func (p *Plan) Add(id uint64) {
	if !p.Contains(id) {
		p.Toggle(id)
	}
}

// Remove is an idempotent delete.
func (p *Plan) Remove(id uint64) {
	if !p.Contains(id) {
		return
	}
	delete(p.member, id)
	for i, v := range p.ids {
		if v == id {
			p.ids = append(p.ids[:i], p.ids[i+1:]...)
			break
		}
	}
}

func (p *Plan) Contains(id uint64) bool {
	_, ok := p.member[id]
	return ok
}

func (p *Plan) Clear() {
	p.ids = nil
	p.member = make(map[uint64]struct{})
}

func (p *Plan) Len() int {
	return len(p.ids)
}

// IDs returns the selection in insertion order.
func (p *Plan) IDs() []uint64 {
	out := make([]uint64, len(p.ids))
	copy(out, p.ids)
	return out
}

// Selected resolves the selection against the store in insertion order.
// IDs whose entry was deleted are dropped from the plan as a side effect, so
// a stale selection never contributes phantom gigabytes.
func (p *Plan) Selected(store *catalog.Store) []*catalog.Entry {
	var (
		out   []*catalog.Entry
		stale []uint64
	)
	for _, id := range p.ids {
		if e, ok := store.Get(id); ok {
			out = append(out, e)
		} else {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		p.Remove(id)
	}
	return out
}

// Recompute derives the budget snapshot from the live selection.
func (p *Plan) Recompute(store *catalog.Store) Budget {
	var used float64
	selected := p.Selected(store)
	for _, e := range selected {
		if !math.IsNaN(e.EstimatedSizeGB) && !math.IsInf(e.EstimatedSizeGB, 0) {
			used += e.EstimatedSizeGB
		}
	}

	remaining := p.CapacityGB - used
	percent := 0.0
	if p.CapacityGB > 0 {
		percent = used / p.CapacityGB * 100
	}
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}

	state := StateOK
	switch {
	case remaining < 0:
		state = StateOver
	case remaining < p.CapacityGB*0.15:
		state = StateWarning
	}

	return Budget{
		CapacityGB:  p.CapacityGB,
		UsedGB:      used,
		RemainingGB: remaining,
		Percent:     percent,
		State:       state,
		Count:       len(selected),
	}
}
