package pile

import (
	"reflect"

	"github.com/viant/fluxmesh/errs"
)

func (p *Pile[T]) validate(items []T) error {
	for _, item := range items {
		value := reflect.ValueOf(item)
		if !value.IsValid() || (value.Kind() == reflect.Ptr && value.IsNil()) {
			return errs.Validation("nil item")
		}
		if item.Identity().IsNil() {
			return errs.Validation("item %T has no identifier", item)
		}
		if len(p.itemTypes) == 0 {
			continue
		}
		if !p.accepts(value.Type()) {
			expected := make([]string, 0, len(p.itemTypes))
			for _, itemType := range p.itemTypes {
				expected = append(expected, itemType.String())
			}
			return &errs.TypeError{Item: item, Expected: expected, Strict: p.strictType}
		}
	}
	return nil
}

func (p *Pile[T]) accepts(rType reflect.Type) bool {
	for _, constraint := range p.itemTypes {
		if matches(rType, constraint, p.strictType) {
			return true
		}
	}
	return false
}

// matches treats T and *T as the same type for struct constraints.
func matches(rType, constraint reflect.Type, strict bool) bool {
	if rType == constraint || deref(rType) == deref(constraint) && constraint.Kind() != reflect.Interface {
		return true
	}
	if strict {
		return false
	}
	if constraint.Kind() == reflect.Interface {
		return rType.Implements(constraint)
	}
	if rType.AssignableTo(constraint) {
		return true
	}
	return embeds(deref(rType), deref(constraint), map[reflect.Type]bool{})
}

func embeds(rType, target reflect.Type, visited map[reflect.Type]bool) bool {
	if rType == target {
		return true
	}
	if rType.Kind() != reflect.Struct || visited[rType] {
		return false
	}
	visited[rType] = true
	for i := 0; i < rType.NumField(); i++ {
		field := rType.Field(i)
		if field.Anonymous && embeds(deref(field.Type), target, visited) {
			return true
		}
	}
	return false
}

func deref(rType reflect.Type) reflect.Type {
	if rType.Kind() == reflect.Ptr {
		return rType.Elem()
	}
	return rType
}
