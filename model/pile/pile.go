// Package pile implements an identifier-keyed collection that preserves an
// explicit order.
//
// Every mutator comes in two forms sharing one lock: a blocking form
// (Include) and a context-aware form (IncludeContext) that gives up when the
// context is done. Iteration always follows the pile order.
package pile

import (
	"context"
	"reflect"

	"github.com/viant/fluxmesh/errs"
	"github.com/viant/fluxmesh/internal/lock"
	"github.com/viant/fluxmesh/model/element"
	"github.com/viant/fluxmesh/model/id"
	"github.com/viant/fluxmesh/model/progression"
)

// Pile represents an ordered collection of entities
type Pile[T element.Entity] struct {
	options
	mux   *lock.Mutex
	items map[id.ID]T
	order *progression.Progression
}

// New creates an empty pile
func New[T element.Entity](opts ...Option) (*Pile[T], error) {
	ret := &Pile[T]{
		mux:   lock.New(),
		items: make(map[id.ID]T),
		order: &progression.Progression{},
	}
	for _, opt := range opts {
		opt(&ret.options)
	}
	for _, itemType := range ret.itemTypes {
		if itemType == nil {
			return nil, errs.Configuration("pile: nil item type constraint")
		}
	}
	return ret, nil
}

// From creates a pile holding items
func From[T element.Entity](items []T, opts ...Option) (*Pile[T], error) {
	ret, err := New[T](opts...)
	if err != nil {
		return nil, err
	}
	if err = ret.Include(items...); err != nil {
		return nil, err
	}
	return ret, nil
}

// StrictType returns true when exact type match is required
func (p *Pile[T]) StrictType() bool {
	return p.strictType
}

// ItemTypes returns item type constraints
func (p *Pile[T]) ItemTypes() []reflect.Type {
	return p.itemTypes
}

func (p *Pile[T]) lockContext(ctx context.Context) (func(), error) {
	if err := p.mux.LockContext(ctx); err != nil {
		return nil, err
	}
	return p.mux.Unlock, nil
}

// Len returns number of items
func (p *Pile[T]) Len() int {
	p.mux.Lock()
	defer p.mux.Unlock()
	return len(p.items)
}

// Keys returns identifiers in pile order
func (p *Pile[T]) Keys() []id.ID {
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.order.IDs()
}

// Values returns items in pile order
func (p *Pile[T]) Values() []T {
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.values()
}

func (p *Pile[T]) values() []T {
	ret := make([]T, 0, len(p.order.Order))
	for _, key := range p.order.Order {
		ret = append(ret, p.items[key])
	}
	return ret
}

// Range calls fn for each item in order until fn returns false. It iterates
// over a snapshot, so fn may mutate the pile.
func (p *Pile[T]) Range(fn func(item T) bool) {
	for _, item := range p.Values() {
		if !fn(item) {
			return
		}
	}
}

// Contains returns true when all references are present
func (p *Pile[T]) Contains(refs ...interface{}) bool {
	ids, err := progression.Flatten(refs...)
	if err != nil || len(ids) == 0 {
		return false
	}
	p.mux.Lock()
	defer p.mux.Unlock()
	for _, key := range ids {
		if _, ok := p.items[key]; !ok {
			return false
		}
	}
	return true
}

// Get returns an item by reference
func (p *Pile[T]) Get(ref interface{}) (T, error) {
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.get(ref)
}

// GetContext returns an item by reference
func (p *Pile[T]) GetContext(ctx context.Context, ref interface{}) (T, error) {
	var zero T
	unlock, err := p.lockContext(ctx)
	if err != nil {
		return zero, err
	}
	defer unlock()
	return p.get(ref)
}

func (p *Pile[T]) get(ref interface{}) (T, error) {
	var zero T
	key, err := id.Of(ref)
	if err != nil {
		return zero, err
	}
	item, ok := p.items[key]
	if !ok {
		return zero, errs.Lookup("item %v not found", key)
	}
	return item, nil
}

// At returns an item by position, negative index counts from the end
func (p *Pile[T]) At(index int) (T, error) {
	var zero T
	p.mux.Lock()
	defer p.mux.Unlock()
	key, err := p.order.At(index)
	if err != nil {
		return zero, err
	}
	return p.items[key], nil
}

// Include adds new items; already present identifiers are ignored.
func (p *Pile[T]) Include(items ...T) error {
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.include(items)
}

// IncludeContext is the context-aware form of Include
func (p *Pile[T]) IncludeContext(ctx context.Context, items ...T) error {
	unlock, err := p.lockContext(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	return p.include(items)
}

func (p *Pile[T]) include(items []T) error {
	if err := p.validate(items); err != nil {
		return err
	}
	for _, item := range items {
		key := item.Identity()
		if _, ok := p.items[key]; ok {
			continue
		}
		p.items[key] = item
		p.order.Order = append(p.order.Order, key)
	}
	return nil
}

// Exclude removes items; every reference has to be present or nothing is removed.
func (p *Pile[T]) Exclude(refs ...interface{}) error {
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.exclude(refs)
}

// ExcludeContext is the context-aware form of Exclude
func (p *Pile[T]) ExcludeContext(ctx context.Context, refs ...interface{}) error {
	unlock, err := p.lockContext(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	return p.exclude(refs)
}

func (p *Pile[T]) exclude(refs []interface{}) error {
	ids, err := progression.Flatten(refs...)
	if err != nil {
		return err
	}
	for _, key := range ids {
		if _, ok := p.items[key]; !ok {
			return errs.Lookup("item %v not found", key)
		}
	}
	for _, key := range ids {
		delete(p.items, key)
	}
	return p.order.Exclude(ids)
}

// Update replaces present items in place and includes the rest
func (p *Pile[T]) Update(items ...T) error {
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.update(items)
}

// UpdateContext is the context-aware form of Update
func (p *Pile[T]) UpdateContext(ctx context.Context, items ...T) error {
	unlock, err := p.lockContext(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	return p.update(items)
}

func (p *Pile[T]) update(items []T) error {
	if err := p.validate(items); err != nil {
		return err
	}
	for _, item := range items {
		key := item.Identity()
		if _, ok := p.items[key]; !ok {
			p.order.Order = append(p.order.Order, key)
		}
		p.items[key] = item
	}
	return nil
}

// Append adds a new item at the end, it fails if the item is already present.
func (p *Pile[T]) Append(item T) error {
	return p.Insert(-1, item)
}

// AppendContext is the context-aware form of Append
func (p *Pile[T]) AppendContext(ctx context.Context, item T) error {
	return p.InsertContext(ctx, -1, item)
}

// Insert adds a new item at index, negative index counts from the end.
func (p *Pile[T]) Insert(index int, item T) error {
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.insert(index, item)
}

// InsertContext is the context-aware form of Insert
func (p *Pile[T]) InsertContext(ctx context.Context, index int, item T) error {
	unlock, err := p.lockContext(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	return p.insert(index, item)
}

func (p *Pile[T]) insert(index int, item T) error {
	if err := p.validate([]T{item}); err != nil {
		return err
	}
	key := item.Identity()
	if _, ok := p.items[key]; ok {
		return errs.Validation("item %v already exists", key)
	}
	if err := p.order.Insert(index, key); err != nil {
		return err
	}
	p.items[key] = item
	return nil
}

// Pop removes and returns an item
func (p *Pile[T]) Pop(ref interface{}) (T, error) {
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.pop(ref)
}

// PopContext is the context-aware form of Pop
func (p *Pile[T]) PopContext(ctx context.Context, ref interface{}) (T, error) {
	var zero T
	unlock, err := p.lockContext(ctx)
	if err != nil {
		return zero, err
	}
	defer unlock()
	return p.pop(ref)
}

func (p *Pile[T]) pop(ref interface{}) (T, error) {
	item, err := p.get(ref)
	if err != nil {
		return item, err
	}
	key := item.Identity()
	delete(p.items, key)
	return item, p.order.Remove(key)
}

// PopLeft removes and returns the first item
func (p *Pile[T]) PopLeft() (T, error) {
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.popLeft()
}

// PopLeftContext is the context-aware form of PopLeft
func (p *Pile[T]) PopLeftContext(ctx context.Context) (T, error) {
	var zero T
	unlock, err := p.lockContext(ctx)
	if err != nil {
		return zero, err
	}
	defer unlock()
	return p.popLeft()
}

func (p *Pile[T]) popLeft() (T, error) {
	var zero T
	key, err := p.order.PopLeft()
	if err != nil {
		return zero, errs.Lookup("pile is empty")
	}
	item := p.items[key]
	delete(p.items, key)
	return item, nil
}

// Clear removes all items
func (p *Pile[T]) Clear() {
	p.mux.Lock()
	defer p.mux.Unlock()
	p.clear()
}

// ClearContext is the context-aware form of Clear
func (p *Pile[T]) ClearContext(ctx context.Context) error {
	unlock, err := p.lockContext(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	p.clear()
	return nil
}

func (p *Pile[T]) clear() {
	p.items = make(map[id.ID]T)
	p.order.Clear()
}

// Filter returns a new pile with items matching predicate, in order.
func (p *Pile[T]) Filter(predicate func(item T) bool) *Pile[T] {
	ret := p.derive()
	for _, item := range p.Values() {
		if predicate(item) {
			ret.items[item.Identity()] = item
			ret.order.Order = append(ret.order.Order, item.Identity())
		}
	}
	return ret
}

// derive creates an empty pile sharing options
func (p *Pile[T]) derive() *Pile[T] {
	return &Pile[T]{
		options: p.options,
		mux:     lock.New(),
		items:   make(map[id.ID]T),
		order:   &progression.Progression{},
	}
}
