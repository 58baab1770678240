// Package progression implements an ordered sequence of identifiers.
//
// A Progression records the traversal order of an owning collection. It is
// not safe for concurrent use, owners serialize access with their own lock.
package progression

import (
	"reflect"
	"sort"

	"github.com/google/uuid"
	"github.com/viant/fluxmesh/errs"
	"github.com/viant/fluxmesh/model/id"
)

// Keyed is implemented by collections exposing ordered identifiers
type Keyed interface {
	Keys() []id.ID
}

// Progression represents an ordered list of identifiers
type Progression struct {
	Name  string  `json:"name,omitempty" yaml:"name,omitempty"`
	Order []id.ID `json:"order" yaml:"order"`
}

// New creates a progression from any supported references
func New(refs ...interface{}) (*Progression, error) {
	order, err := Flatten(refs...)
	if err != nil {
		return nil, err
	}
	return &Progression{Order: order}, nil
}

// Len returns progression size
func (p *Progression) Len() int {
	return len(p.Order)
}

// IDs returns a copy of the order
func (p *Progression) IDs() []id.ID {
	ret := make([]id.ID, len(p.Order))
	copy(ret, p.Order)
	return ret
}

// At returns identifier at index
func (p *Progression) At(index int) (id.ID, error) {
	if index < 0 {
		index += len(p.Order)
	}
	if index < 0 || index >= len(p.Order) {
		return id.Nil, errs.Lookup("index %d out of range [0,%d)", index, len(p.Order))
	}
	return p.Order[index], nil
}

// Index returns the position of the first occurrence of ref or -1
func (p *Progression) Index(ref interface{}) int {
	target, err := id.Of(ref)
	if err != nil {
		return -1
	}
	for i, candidate := range p.Order {
		if candidate == target {
			return i
		}
	}
	return -1
}

// Contains returns true if every supplied reference is present
func (p *Progression) Contains(refs ...interface{}) bool {
	ids, err := Flatten(refs...)
	if err != nil || len(ids) == 0 {
		return false
	}
	for _, candidate := range ids {
		if p.Index(candidate) == -1 {
			return false
		}
	}
	return true
}

// Append adds references to the end
func (p *Progression) Append(refs ...interface{}) error {
	ids, err := Flatten(refs...)
	if err != nil {
		return err
	}
	p.Order = append(p.Order, ids...)
	return nil
}

// Insert adds references at index, negative index counts from the end
func (p *Progression) Insert(index int, refs ...interface{}) error {
	ids, err := Flatten(refs...)
	if err != nil {
		return err
	}
	if index < 0 {
		index += len(p.Order) + 1
	}
	if index < 0 || index > len(p.Order) {
		return errs.Lookup("index %d out of range [0,%d]", index, len(p.Order))
	}
	updated := make([]id.ID, 0, len(p.Order)+len(ids))
	updated = append(updated, p.Order[:index]...)
	updated = append(updated, ids...)
	updated = append(updated, p.Order[index:]...)
	p.Order = updated
	return nil
}

// Remove removes the first occurrence of each reference. A reference given n
// times removes the first n occurrences; if any is missing nothing is removed.
func (p *Progression) Remove(refs ...interface{}) error {
	ids, err := Flatten(refs...)
	if err != nil {
		return err
	}
	requested := make(map[id.ID]int, len(ids))
	for _, candidate := range ids {
		requested[candidate]++
	}
	present := make(map[id.ID]int, len(requested))
	for _, candidate := range p.Order {
		if _, ok := requested[candidate]; ok {
			present[candidate]++
		}
	}
	for _, candidate := range ids {
		if present[candidate] < requested[candidate] {
			return errs.Lookup("item %v not found in progression", candidate)
		}
	}
	kept := make([]id.ID, 0, len(p.Order)-len(ids))
	for _, candidate := range p.Order {
		if requested[candidate] > 0 {
			requested[candidate]--
			continue
		}
		kept = append(kept, candidate)
	}
	p.Order = kept
	return nil
}

// PopLeft removes and returns the first identifier
func (p *Progression) PopLeft() (id.ID, error) {
	if len(p.Order) == 0 {
		return id.Nil, errs.Lookup("progression is empty")
	}
	ret := p.Order[0]
	p.Order[0] = id.Nil
	p.Order = p.Order[1:]
	return ret, nil
}

// Include appends references that are not yet present, preserving first-seen order.
func (p *Progression) Include(refs ...interface{}) error {
	ids, err := Flatten(refs...)
	if err != nil {
		return err
	}
	for _, candidate := range ids {
		if p.Index(candidate) == -1 {
			p.Order = append(p.Order, candidate)
		}
	}
	return nil
}

// Exclude removes every occurrence of the references; absent ones are ignored.
func (p *Progression) Exclude(refs ...interface{}) error {
	ids, err := Flatten(refs...)
	if err != nil {
		return err
	}
	excluded := make(map[id.ID]bool, len(ids))
	for _, candidate := range ids {
		excluded[candidate] = true
	}
	kept := p.Order[:0]
	for _, candidate := range p.Order {
		if !excluded[candidate] {
			kept = append(kept, candidate)
		}
	}
	p.Order = kept
	return nil
}

// Clear removes all identifiers
func (p *Progression) Clear() {
	p.Order = nil
}

// Clone returns a copy
func (p *Progression) Clone() *Progression {
	return &Progression{Name: p.Name, Order: p.IDs()}
}

// Flatten resolves heterogeneous references into identifiers. Supported
// inputs are entities, identifiers, ID strings, Keyed collections, slices
// and maps (keys, in canonical string order) nested to any depth.
func Flatten(refs ...interface{}) ([]id.ID, error) {
	var ret []id.ID
	for _, ref := range refs {
		var err error
		if ret, err = flatten(ref, ret); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func flatten(ref interface{}, ret []id.ID) ([]id.ID, error) {
	switch actual := ref.(type) {
	case id.ID:
		return appendID(ret, actual)
	case string, uuid.UUID:
		return appendID(ret, actual)
	case id.Identifier:
		return appendID(ret, actual)
	case *Progression:
		return append(ret, actual.Order...), nil
	case Keyed:
		return append(ret, actual.Keys()...), nil
	case []id.ID:
		return append(ret, actual...), nil
	case nil:
		return nil, errs.Validation("nil reference")
	}
	value := reflect.ValueOf(ref)
	switch value.Kind() {
	case reflect.Slice, reflect.Array:
		var err error
		for i := 0; i < value.Len(); i++ {
			if ret, err = flatten(value.Index(i).Interface(), ret); err != nil {
				return nil, err
			}
		}
		return ret, nil
	case reflect.Map:
		keys := value.MapKeys()
		resolved := make([]id.ID, 0, len(keys))
		for _, key := range keys {
			next, err := flatten(key.Interface(), nil)
			if err != nil {
				return nil, err
			}
			resolved = append(resolved, next...)
		}
		sort.Slice(resolved, func(i, j int) bool { return resolved[i].String() < resolved[j].String() })
		return append(ret, resolved...), nil
	}
	return appendID(ret, ref)
}

func appendID(ret []id.ID, ref interface{}) ([]id.ID, error) {
	value, err := id.Of(ref)
	if err != nil {
		return nil, err
	}
	return append(ret, value), nil
}
