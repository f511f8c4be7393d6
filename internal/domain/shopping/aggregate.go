package shopping

import (
	"math"
	"sort"
	"strings"

	"household/internal/domain/inventory"
	"household/internal/domain/meal"
)

// Key identifies one physical ingredient across meals, pantry and the
// manual list. Units are never converted: flour|cups and flour|g differ.
type Key struct {
	Name string
	Unit string
}

// NormalizeKey lowercases and trims both parts; an empty unit becomes "unit".
func NormalizeKey(name, unit string) Key {
	unit = strings.ToLower(strings.TrimSpace(unit))
	if unit == "" {
		unit = DefaultUnit
	}
	return Key{Name: strings.ToLower(strings.TrimSpace(name)), Unit: unit}
}

func (k Key) String() string {
	return k.Name + "|" + k.Unit
}

func (k Key) less(o Key) bool {
	if k.Name != o.Name {
		return k.Name < o.Name
	}
	return k.Unit < o.Unit
}

type ledgerEntry struct {
	name     string
	unit     string
	quantity float64
}

// ledger accumulates quantities per key. The display spelling is the
// first one seen.
type ledger struct {
	keys    []Key
	entries map[Key]*ledgerEntry
}

func newLedger() *ledger {
	return &ledger{entries: make(map[Key]*ledgerEntry)}
}

func (l *ledger) add(name, unit string, quantity float64) {
	key := NormalizeKey(name, unit)
	if key.Name == "" {
		return
	}

	e, ok := l.entries[key]
	if !ok {
		displayUnit := strings.TrimSpace(unit)
		if displayUnit == "" {
			displayUnit = DefaultUnit
		}
		e = &ledgerEntry{name: strings.TrimSpace(name), unit: displayUnit}
		l.entries[key] = e
		l.keys = append(l.keys, key)
	}
	e.quantity += quantity
}

func (l *ledger) quantity(key Key) float64 {
	if e, ok := l.entries[key]; ok {
		return e.quantity
	}
	return 0
}

func (l *ledger) has(key Key) bool {
	_, ok := l.entries[key]
	return ok
}

// Inputs is one consistent snapshot of the three sources.
type Inputs struct {
	UserID    string
	Meals     []*meal.Meal
	Inventory []*inventory.Item
	Manual    []*Entry
}

// ingredientQuantity treats a missing, zero or non-numeric amount as 1.
func ingredientQuantity(q *float64) float64 {
	if q == nil || *q == 0 || math.IsNaN(*q) {
		return 1
	}
	return *q
}

// Aggregate derives the shopping list: meal demand minus pantry supply,
// merged with the manual entries. Output is sorted by normalized key.
func Aggregate(in Inputs) []CombinedEntry {
	required := newLedger()
	for _, m := range in.Meals {
		if m == nil {
			continue
		}
		for _, ing := range m.Ingredients {
			required.add(ing.Name, ing.Unit, ingredientQuantity(ing.Quantity))
		}
	}

	available := newLedger()
	for _, item := range in.Inventory {
		if item == nil {
			continue
		}
		available.add(item.Name, item.Unit, item.Quantity)
	}

	auto := newLedger()
	for _, key := range required.keys {
		remaining := required.quantity(key) - available.quantity(key)
		if remaining > 0 {
			e := required.entries[key]
			auto.add(e.name, e.unit, round2(remaining))
		}
	}

	manual := newLedger()
	combined := newLedger()
	for _, key := range auto.keys {
		e := auto.entries[key]
		combined.add(e.name, e.unit, e.quantity)
	}
	for _, entry := range in.Manual {
		if entry == nil {
			continue
		}
		manual.add(entry.Name, entry.Unit, entry.Quantity)
		combined.add(entry.Name, entry.Unit, entry.Quantity)
	}

	out := make([]CombinedEntry, 0, len(combined.keys))
	for _, key := range combined.keys {
		e := combined.entries[key]
		out = append(out, CombinedEntry{
			ID:       "combined-" + key.String(),
			UserID:   in.UserID,
			Name:     e.name,
			Quantity: round2(e.quantity),
			Unit:     e.unit,
			Source:   sourceOf(auto.has(key), manual.has(key)),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return NormalizeKey(out[i].Name, out[i].Unit).less(NormalizeKey(out[j].Name, out[j].Unit))
	})
	return out
}

func sourceOf(auto, manual bool) Source {
	switch {
	case auto && manual:
		return SourceMixed
	case auto:
		return SourceAuto
	default:
		return SourceManual
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
