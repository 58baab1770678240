package pile

// Union returns items of both piles, p order first
func (p *Pile[T]) Union(other *Pile[T]) (*Pile[T], error) {
	ret := p.derive()
	if err := ret.include(p.Values()); err != nil {
		return nil, err
	}
	if err := ret.include(other.Values()); err != nil {
		return nil, err
	}
	return ret, nil
}

// Intersection returns items of p also present in other
func (p *Pile[T]) Intersection(other *Pile[T]) *Pile[T] {
	return p.Filter(func(item T) bool { return other.Contains(item.Identity()) })
}

// Difference returns items of p absent from other
func (p *Pile[T]) Difference(other *Pile[T]) *Pile[T] {
	return p.Filter(func(item T) bool { return !other.Contains(item.Identity()) })
}

// SymmetricDifference returns items present in exactly one of the piles
func (p *Pile[T]) SymmetricDifference(other *Pile[T]) (*Pile[T], error) {
	ret := p.Difference(other)
	if err := ret.include(other.Difference(p).Values()); err != nil {
		return nil, err
	}
	return ret, nil
}
