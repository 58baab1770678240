package pile

import (
	"reflect"

	"github.com/viant/afs"
	"github.com/viant/fluxmesh/model/pile/adapter"
)

type options struct {
	itemTypes  []reflect.Type
	strictType bool
	adapters   *adapter.Registry
	fs         afs.Service
}

// Option represents pile option
type Option func(o *options)

// WithItemTypes restricts accepted item types
func WithItemTypes(types ...reflect.Type) Option {
	return func(o *options) {
		o.itemTypes = append(o.itemTypes, types...)
	}
}

// WithStrictType requires exact item type match instead of subtype match
func WithStrictType(strict bool) Option {
	return func(o *options) {
		o.strictType = strict
	}
}

// WithAdapters sets export adapters registry
func WithAdapters(registry *adapter.Registry) Option {
	return func(o *options) {
		o.adapters = registry
	}
}

// WithFs sets file system used by Dump and Load
func WithFs(fs afs.Service) Option {
	return func(o *options) {
		o.fs = fs
	}
}
