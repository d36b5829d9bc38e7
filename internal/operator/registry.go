package operator

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/roach88/qengine/internal/ir"
)

type registryKey struct {
	name  string
	field ir.Kind
}

type registryEntry struct {
	desc       Descriptor
	valueKinds mapset.Set[ir.Kind]
}

// Registry maps (operator name, field kind) to an implementation.
//
// Register is not safe for concurrent use; every other method is, once
// registration has finished.
type Registry struct {
	entries map[registryKey]*registryEntry
	byName  map[string]mapset.Set[ir.Kind]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[registryKey]*registryEntry),
		byName:  make(map[string]mapset.Set[ir.Kind]),
	}
}

// Register records d.Impl for every field kind in d.FieldKinds.
//
// A later registration for the same (name, field kind) replaces the
// implementation; value kinds accumulate.
func (r *Registry) Register(d Descriptor) error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("operator name is required")
	}
	if d.Impl == nil {
		return fmt.Errorf("operator %s: implementation is required", d.Name)
	}
	if len(d.FieldKinds) == 0 || len(d.ValueKinds) == 0 {
		return fmt.Errorf("operator %s: at least one field kind and one value kind are required", d.Name)
	}
	for _, k := range append(append([]ir.Kind{}, d.FieldKinds...), d.ValueKinds...) {
		if !k.Valid() {
			return fmt.Errorf("operator %s: invalid kind %s", d.Name, k)
		}
	}

	for _, field := range d.FieldKinds {
		key := registryKey{name: d.Name, field: field}
		values := mapset.NewThreadUnsafeSet(d.ValueKinds...)
		if prev, ok := r.entries[key]; ok {
			slog.Debug("operator replaced", "operator", d.Name, "field_kind", field)
			values = values.Union(prev.valueKinds)
		}
		r.entries[key] = &registryEntry{desc: d, valueKinds: values}
	}

	union, ok := r.byName[d.Name]
	if !ok {
		union = mapset.NewThreadUnsafeSet[ir.Kind]()
		r.byName[d.Name] = union
	}
	union.Append(d.ValueKinds...)

	slog.Debug("operator registered",
		"operator", d.Name,
		"field_kinds", d.FieldKinds,
		"value_kinds", d.ValueKinds,
	)
	return nil
}

// MustRegister is Register for static registration lists.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Get returns the operator for (name, field) if value is among the value
// kinds recorded for that pair. An empty name is never found.
func (r *Registry) Get(name string, field, value ir.Kind) (Operator, bool) {
	e, ok := r.entries[registryKey{name: name, field: field}]
	if !ok || !e.valueKinds.Contains(value) {
		return nil, false
	}
	return e.desc.Impl, true
}

// Lookup returns the descriptor registered for (name, field).
func (r *Registry) Lookup(name string, field ir.Kind) (Descriptor, bool) {
	e, ok := r.entries[registryKey{name: name, field: field}]
	if !ok {
		return Descriptor{}, false
	}
	return e.desc, true
}

// SupportedValueTypes returns the union of value kinds registered under name
// across all field kinds. The set is empty for unknown names.
func (r *Registry) SupportedValueTypes(name string) mapset.Set[ir.Kind] {
	union, ok := r.byName[name]
	if !ok {
		return mapset.NewThreadUnsafeSet[ir.Kind]()
	}
	return union.Clone()
}

// OperatorByName returns some implementation registered under name.
// It picks the entry with the lowest field kind so the answer is stable.
func (r *Registry) OperatorByName(name string) (Operator, bool) {
	for _, k := range ir.Kinds() {
		if e, ok := r.entries[registryKey{name: name, field: k}]; ok {
			return e.desc.Impl, true
		}
	}
	return nil, false
}

// Names returns every registered operator name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entry is one (name, field kind) registration as listed by Entries.
type Entry struct {
	Name        string
	FieldKind   ir.Kind
	ValueKinds  []ir.Kind
	Nullary     bool
	Description string
}

// Entries lists every registration sorted by name, then field kind name.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for key, e := range r.entries {
		out = append(out, Entry{
			Name:        key.name,
			FieldKind:   key.field,
			ValueKinds:  sortedKinds(e.valueKinds),
			Nullary:     e.desc.Nullary,
			Description: e.desc.Description,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].FieldKind.String() < out[j].FieldKind.String()
	})
	return out
}

// sortedKinds orders a kind set by canonical name.
func sortedKinds(s mapset.Set[ir.Kind]) []ir.Kind {
	kinds := s.ToSlice()
	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i].String() < kinds[j].String()
	})
	return kinds
}
